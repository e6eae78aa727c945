package dto

// PaymentNotification is the Midtrans HTTP notification body, and also the
// shape returned by a Core API status check. Fields absent from a payload stay
// empty; an empty status classifies as unknown.
type PaymentNotification struct {
	TransactionType string `json:"transaction_type"`
	TransactionTime string `json:"transaction_time"`
	// TransactionStatus is capture, settlement, pending, deny, cancel, expire
	// or failure.
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusMessage     string `json:"status_message"`
	// StatusCode is the gateway's HTTP-like code as a string ("200", "201",
	// "404"). It is part of the signed payload.
	StatusCode string `json:"status_code"`
	// SignatureKey is hex sha512 of order_id + status_code + gross_amount +
	// server key.
	SignatureKey   string `json:"signature_key"`
	SettlementTime string `json:"settlement_time"`
	PaymentType    string `json:"payment_type"`
	OrderID        string `json:"order_id"`
	MerchantID     string `json:"merchant_id"`
	Issuer         string `json:"issuer"`
	// GrossAmount keeps the exact string Midtrans signed, e.g. "30000.00".
	// It must not be parsed and reformatted before verification.
	GrossAmount string `json:"gross_amount"`
	// FraudStatus is accept, challenge or deny; only set for card captures.
	FraudStatus string `json:"fraud_status"`
	Currency    string `json:"currency"`
	Acquirer    string `json:"acquirer"`
}
