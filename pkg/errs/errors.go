package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer     = http.StatusInternalServerError
	ErrStatusClient             = http.StatusBadRequest
	ErrStatusUnauthorized       = http.StatusUnauthorized
	ErrStatusNotFound           = http.StatusNotFound
	ErrStatusConflict           = http.StatusConflict
	ErrStatusBadGateway         = http.StatusBadGateway
	ErrStatusServiceUnavailable = http.StatusServiceUnavailable
)

var (
	ErrInternalServer       = errors.New("Internal server error")
	ErrClient               = errors.New("Bad request")
	ErrValidation           = errors.New("Validation error")
	ErrUnauthorized         = errors.New("Unauthorized access")
	ErrNotFound             = errors.New("Resource not found")
	ErrOrderNotFound        = errors.New("Order not found")
	ErrDuplicateOrder       = errors.New("Order already exists")
	ErrSignatureInvalid     = errors.New("Invalid signature")
	ErrUpstreamRejected     = errors.New("Upstream service rejected the request")
	ErrUpstreamUnavailable  = errors.New("Upstream service is unavailable")
	ErrPaymentSessionFailed = errors.New("Failed to create payment session")
	ErrPosRecordingFailed   = errors.New("Failed to record sale to point of sale")
	ErrConflict             = errors.New("Conflicting record found")
)

type errorEntry struct {
	err    error
	status int
}

// errorMap is ordered by lookup priority: a wrapped error matches the first
// sentinel in the chain that appears here.
var errorMap = []errorEntry{
	{ErrValidation, ErrStatusClient},
	{ErrClient, ErrStatusClient},
	{ErrSignatureInvalid, ErrStatusUnauthorized},
	{ErrUnauthorized, ErrStatusUnauthorized},
	{ErrOrderNotFound, ErrStatusNotFound},
	{ErrNotFound, ErrStatusNotFound},
	{ErrConflict, ErrStatusConflict},
	{ErrPaymentSessionFailed, ErrStatusBadGateway},
	{ErrPosRecordingFailed, ErrStatusBadGateway},
	{ErrUpstreamRejected, ErrStatusBadGateway},
	{ErrUpstreamUnavailable, ErrStatusServiceUnavailable},
	{ErrDuplicateOrder, ErrStatusInternalServer},
	{ErrInternalServer, ErrStatusInternalServer},
}

func GetErrorStatusCode(err error) int {
	return classify(err).status
}

// PublicError returns the sentinel a caller is allowed to see. Vendor detail
// wrapped around it stays in the logs.
func PublicError(err error) error {
	return classify(err).err
}

func classify(err error) errorEntry {
	for _, entry := range errorMap {
		if errors.Is(err, entry.err) {
			return entry
		}
	}
	return errorMap[len(errorMap)-1]
}
