package port

// OrderIDGenerator issues identifiers for confirmed orders.
type OrderIDGenerator interface {
	NewOrderID() string
}
