package posgateway

import "github.com/shopspring/decimal"

type mokaMeta struct {
	Code         int    `json:"code"`
	ErrorMessage string `json:"error_message"`
	ErrorType    string `json:"error_type"`
}

type mokaErrorResponse struct {
	Meta mokaMeta `json:"meta"`
}

type profileResponse struct {
	OutletIDs   []int64  `json:"outlet_ids"`
	OutletNames []string `json:"outlet_names"`
}

type itemsResponse struct {
	Data *struct {
		Items []mokaItem `json:"items"`
	} `json:"data"`
	Items []mokaItem `json:"items"`
}

type mokaItem struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     *mokaCategory     `json:"category"`
	Image        *mokaImage        `json:"image"`
	ItemVariants []mokaItemVariant `json:"item_variants"`
}

type mokaCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type mokaImage struct {
	URL string `json:"url"`
}

type mokaItemVariant struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	InStock decimal.Decimal `json:"in_stock"`
}

type checkoutRequest struct {
	Checkout checkoutPayload `json:"checkout"`
}

type checkoutPayload struct {
	Note            string         `json:"note"`
	ClientCreatedAt string         `json:"client_created_at"`
	TotalGrossSales int64          `json:"total_gross_sales"`
	TotalNetSales   int64          `json:"total_net_sales"`
	TotalCollected  int64          `json:"total_collected"`
	AmountPay       int64          `json:"amount_pay"`
	Items           []checkoutItem `json:"items"`
}

type checkoutItem struct {
	Quantity        int64  `json:"quantity"`
	ItemID          int64  `json:"item_id"`
	ItemName        string `json:"item_name"`
	ItemVariantID   int64  `json:"item_variant_id"`
	ItemVariantName string `json:"item_variant_name"`
	CategoryID      int64  `json:"category_id"`
	CategoryName    string `json:"category_name"`
	ClientPrice     int64  `json:"client_price"`
	GrossSales      int64  `json:"gross_sales"`
	NetSales        int64  `json:"net_sales"`
}

type checkoutResponse struct {
	Data struct {
		UUID           string `json:"uuid"`
		ReceiptNo      string `json:"receipt_no"`
		TotalCollected int64  `json:"total_collected"`
	} `json:"data"`
}

type advancedOrderRequest struct {
	CustomerName          string              `json:"customer_name"`
	CustomerPhoneNumber   string              `json:"customer_phone_number"`
	CustomerAddressDetail string              `json:"customer_address_detail"`
	CustomerCity          string              `json:"customer_city"`
	SalesTypeName         string              `json:"sales_type_name"`
	ClientCreatedAt       string              `json:"client_created_at"`
	ApplicationOrderID    string              `json:"application_order_id"`
	PaymentType           string              `json:"payment_type"`
	Note                  string              `json:"note"`
	DiscountAmount        *int64              `json:"discount_amount"`
	OrderItems            []advancedOrderItem `json:"order_items"`
}

type advancedOrderItem struct {
	ItemID             int64         `json:"item_id"`
	ItemName           string        `json:"item_name"`
	Quantity           int64         `json:"quantity"`
	ItemVariantID      int64         `json:"item_variant_id"`
	ItemVariantName    string        `json:"item_variant_name"`
	Note               string        `json:"note"`
	ItemPriceLibrary   int64         `json:"item_price_library"`
	CategoryID         int64         `json:"category_id"`
	CategoryName       string        `json:"category_name"`
	ItemModifiers      []interface{} `json:"item_modifiers"`
	ItemDiscountAmount *int64        `json:"item_discount_amount"`
}

type advancedOrderResponse struct {
	Data struct {
		ID                 int64  `json:"id"`
		UUID               string `json:"uuid"`
		ApplicationOrderID string `json:"application_order_id"`
		Status             string `json:"status"`
	} `json:"data"`
}
