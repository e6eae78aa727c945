package domain

type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomePending PaymentOutcome = "pending"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
	PaymentOutcomeUnknown PaymentOutcome = "unknown"
)

// PaymentSignal is what every reconciliation trigger is reduced to before it
// reaches the order state machine.
type PaymentSignal struct {
	Source        string
	Outcome       PaymentOutcome
	PaymentType   string
	TransactionID string
}

const (
	SignalSourceWebhook = "webhook"
	SignalSourceClient  = "client"
	SignalSourcePoll    = "poll"
	SignalSourceRetry   = "retry"
)

type ReconciliationOutcome string

const (
	ReconciliationRecorded        ReconciliationOutcome = "recorded"
	ReconciliationAlreadyRecorded ReconciliationOutcome = "already_recorded"
	ReconciliationPartialFailure  ReconciliationOutcome = "pos_recording_failed"
	ReconciliationMarkedPending   ReconciliationOutcome = "pending"
	ReconciliationMarkedFailed    ReconciliationOutcome = "failed"
	ReconciliationIgnoredTerminal ReconciliationOutcome = "ignored_terminal"
	ReconciliationIgnoredUnknown  ReconciliationOutcome = "ignored_unknown"
)

// ReconciliationResult is the explicit outcome of one reconciliation. A POS
// failure is reported here as PosError instead of being returned as an error.
type ReconciliationResult struct {
	OrderID      string
	Status       OrderStatus
	Outcome      ReconciliationOutcome
	PosReference string
	PosError     error
}

// PaymentSession is the hosted checkout handed back to the customer.
type PaymentSession struct {
	Token       string
	RedirectURL string
}
