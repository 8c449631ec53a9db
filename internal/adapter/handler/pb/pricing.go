package pb

type Part struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

func (x *Part) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Part) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *Part) GetUnitPrice() float64 {
	if x != nil {
		return x.UnitPrice
	}
	return 0
}

type LineItem struct {
	Part     *Part `json:"part"`
	Quantity int32 `json:"quantity"`
}

func (x *LineItem) GetPart() *Part {
	if x != nil {
		return x.Part
	}
	return nil
}

func (x *LineItem) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

type QuoteRequest struct {
	Items []*LineItem `json:"items"`
}

func (x *QuoteRequest) GetItems() []*LineItem {
	if x != nil {
		return x.Items
	}
	return nil
}

type QuoteResponse struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type PurchaseRequest struct {
	Items         []*LineItem `json:"items"`
	DeclaredTotal float64     `json:"declaredTotal"`
}

func (x *PurchaseRequest) GetItems() []*LineItem {
	if x != nil {
		return x.Items
	}
	return nil
}

func (x *PurchaseRequest) GetDeclaredTotal() float64 {
	if x != nil {
		return x.DeclaredTotal
	}
	return 0
}

type Order struct {
	OrderId        string      `json:"orderId"`
	Status         string      `json:"status"`
	TotalAmount    float64     `json:"totalAmount"`
	CreatedAt      string      `json:"createdAt"`
	PurchasedItems []*LineItem `json:"purchasedItems"`
	Subtotal       float64     `json:"subtotal"`
	Shipping       float64     `json:"shipping"`
}

func (x *Order) GetOrderId() string {
	if x != nil {
		return x.OrderId
	}
	return ""
}

func (x *Order) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}
