package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// IsTerminal reports whether no further payment signal may move the order.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

type Order struct {
	ID                   string      `db:"id"`
	OutletID             int64       `db:"outlet_id"`
	OutletName           string      `db:"outlet_name"`
	CustomerName         string      `db:"customer_name"`
	CustomerPhone        string      `db:"customer_phone"`
	Note                 string      `db:"note"`
	Total                int64       `db:"total"`
	Status               OrderStatus `db:"status"`
	PaymentType          string      `db:"payment_type"`
	PaymentTransactionID string      `db:"payment_transaction_id"`
	PosReference         string      `db:"pos_reference"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
	Items                []OrderItem `db:"-"`
}

// IsRecorded reports whether the sale already reached the point of sale.
func (o Order) IsRecorded() bool {
	return o.Status == OrderStatusPaid && o.PosReference != ""
}

type OrderItem struct {
	OrderID      string `db:"order_id"`
	ProductID    int64  `db:"product_id"`
	VariantID    int64  `db:"variant_id"`
	ProductName  string `db:"product_name"`
	VariantName  string `db:"variant_name"`
	Price        int64  `db:"price"`
	Quantity     int64  `db:"quantity"`
	CategoryID   int64  `db:"category_id"`
	CategoryName string `db:"category_name"`
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * i.Quantity
}

// OrderPatch carries the optional fields merged by a status update. Nil
// fields are left untouched.
type OrderPatch struct {
	PaymentType          *string
	PaymentTransactionID *string
	PosReference         *string
}

func (p OrderPatch) Apply(order *Order) {
	if p.PaymentType != nil {
		order.PaymentType = *p.PaymentType
	}
	if p.PaymentTransactionID != nil {
		order.PaymentTransactionID = *p.PaymentTransactionID
	}
	if p.PosReference != nil {
		order.PosReference = *p.PosReference
	}
}

func CalculateTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Clone returns a copy that shares no slice memory with o.
func (o Order) Clone() Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
