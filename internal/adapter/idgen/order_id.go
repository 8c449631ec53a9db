package idgen

import (
	"strings"

	"github.com/google/uuid"
)

const orderIDPrefix = "ORD-"

// OrderIDLength is the fixed length of every generated order id.
const OrderIDLength = len(orderIDPrefix) + 36

// UUIDv7 issues order ids made of a millisecond timestamp followed by random
// bits, so ids sort by creation time and collide only with negligible
// probability. Uniqueness is not checked against any store.
type UUIDv7 struct{}

func (UUIDv7) NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return orderIDPrefix + strings.ToUpper(id.String())
}
