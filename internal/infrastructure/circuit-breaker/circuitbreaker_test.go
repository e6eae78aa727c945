package circuitbreaker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerTripsOnUpstreamFailures(t *testing.T) {
	cb := CreateCircuitBreaker("moka-test", time.Minute)
	failure := func() ([]byte, error) { return nil, errs.ErrUpstreamUnavailable }

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(failure)
		assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	}

	_, err := cb.Execute(func() ([]byte, error) { return []byte("ok"), nil })
	assert.True(t, IsOpen(err))
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreakerIgnoresRejections(t *testing.T) {
	cb := CreateCircuitBreaker("moka-test", time.Minute)
	rejection := func() ([]byte, error) {
		return nil, fmt.Errorf("moka: invalid outlet: %w", errs.ErrUpstreamRejected)
	}

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(rejection)
		assert.ErrorIs(t, err, errs.ErrUpstreamRejected)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, IsOpen(errors.New("other")))
}
