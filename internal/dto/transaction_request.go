package dto

import "github.com/shopspring/decimal"

// OrderItemRequest is a cart line as sent by the storefront. Price is decoded
// as a decimal so fractional amounts can be rejected instead of truncated.
type OrderItemRequest struct {
	ID           int64           `json:"id"`
	VariantID    int64           `json:"variant_id"`
	Name         string          `json:"name"`
	VariantName  string          `json:"variant_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Category     string          `json:"category"`
}

type TransactionRequest struct {
	OutletID      int64              `json:"outlet_id"`
	OutletName    string             `json:"outlet_name"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Note          string             `json:"note"`
	Items         []OrderItemRequest `json:"items"`
	// Total is accepted for compatibility and never used.
	Total *decimal.Decimal `json:"total,omitempty"`
}

type CashierOrderRequest struct {
	OutletID      int64              `json:"outlet_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerNote  string             `json:"customer_note"`
	Items         []OrderItemRequest `json:"items"`
}

type RecordPaymentRequest struct {
	OrderID     string `json:"order_id"`
	PaymentType string `json:"payment_type"`
}

type OrderFilterRequest struct {
	Status     string `query:"status"`
	Unrecorded bool   `query:"unrecorded"`
}
