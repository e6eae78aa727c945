package dto

import "time"

const (
	EventOrderCreated       = "order_created"
	EventOrderPaid          = "order_paid"
	EventOrderFailed        = "order_failed"
	EventPosRecorded        = "pos_recorded"
	EventPosRecordingFailed = "pos_recording_failed"
)

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type OrderEvent struct {
	OrderID      string    `json:"order_id"`
	OutletID     int64     `json:"outlet_id"`
	Status       string    `json:"status"`
	Total        int64     `json:"total"`
	PaymentType  string    `json:"payment_type,omitempty"`
	PosReference string    `json:"pos_reference,omitempty"`
	Error        string    `json:"error,omitempty"`
	Source       string    `json:"source,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
