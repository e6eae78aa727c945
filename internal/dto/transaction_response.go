package dto

import "time"

type TransactionResponse struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Total       int64  `json:"total"`
}

type OrderItemResponse struct {
	ProductID   int64  `json:"id"`
	VariantID   int64  `json:"variant_id"`
	Name        string `json:"name"`
	VariantName string `json:"variant_name"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
}

type OrderStatusResponse struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	CustomerName     string              `json:"customer_name"`
	OutletName       string              `json:"outlet_name"`
	Total            int64               `json:"total"`
	PaymentType      string              `json:"payment_type,omitempty"`
	PosReference     string              `json:"moka_receipt_no,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	CreatedAtDisplay string              `json:"created_at_display"`
}

// OrderResponse is the operator view of an order, including reconciliation
// metadata that is not shown to customers.
type OrderResponse struct {
	OrderStatusResponse
	OutletID             int64     `json:"outlet_id"`
	CustomerPhone        string    `json:"customer_phone"`
	Note                 string    `json:"note"`
	PaymentTransactionID string    `json:"payment_transaction_id,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type RecordPaymentResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	Outcome      string `json:"outcome"`
	PosReference string `json:"moka_receipt_no,omitempty"`
}

type CashierOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type OutletsResponse struct {
	Outlets interface{} `json:"outlets"`
}

type ProductsResponse struct {
	Products interface{} `json:"products"`
}
