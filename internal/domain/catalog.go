package domain

type Outlet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	Stock       int64   `json:"stock"`
	VariantID   int64   `json:"variant_id"`
	VariantName string  `json:"variant_name"`
	CategoryID  int64   `json:"category_id"`
}

type Customer struct {
	Name  string
	Phone string
}

// PosOrderRef identifies an order sent to the cashier app.
type PosOrderRef struct {
	ApplicationOrderID string
	UUID               string
	Status             string
}

// PosReceiptRef identifies a completed sale recorded at the point of sale.
type PosReceiptRef struct {
	ReceiptNo string
	UUID      string
}
