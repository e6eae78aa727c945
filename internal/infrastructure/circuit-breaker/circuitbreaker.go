package circuitbreaker

import (
	"errors"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// CreateCircuitBreaker trips after at least three calls with a failure ratio
// of 60% or more. Rejections by the upstream (4xx) count as successful calls:
// the upstream answered, the request was just wrong.
func CreateCircuitBreaker(name string, openTimeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = openTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errs.ErrUpstreamRejected)
	}
	st.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
		log.Warn().Str("component", "CircuitBreaker").Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("state changed")
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](st)

	return cb
}

// IsOpen reports whether err was produced by the breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
