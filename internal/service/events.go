package service

import (
	"context"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/rs/zerolog/log"
)

type logEventPublisher struct{}

// CreateLogEventPublisher returns a publisher that only logs events. It is
// used when no broker is configured.
func CreateLogEventPublisher() EventPublisher {
	return logEventPublisher{}
}

func (logEventPublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	log.Ctx(ctx).Info().Str("component", "EventPublisher").Str("key", key).Str("event_type", msg.EventType).Interface("data", msg.Data).Msg("event")
	return nil
}

func orderEvent(eventType string, order domain.Order, source string, cause error, at time.Time) dto.KafkaMessage {
	data := dto.OrderEvent{
		OrderID:      order.ID,
		OutletID:     order.OutletID,
		Status:       string(order.Status),
		Total:        order.Total,
		PaymentType:  order.PaymentType,
		PosReference: order.PosReference,
		Source:       source,
		OccurredAt:   at,
	}
	if cause != nil {
		data.Error = cause.Error()
	}

	return dto.KafkaMessage{
		EventType: eventType,
		Data:      data,
	}
}

// publish never fails the caller. Events describe state that is already
// stored.
func (s *OrderServiceImpl) publish(ctx context.Context, events []dto.KafkaMessage) {
	for _, event := range events {
		data, _ := event.Data.(dto.OrderEvent)
		if err := s.publisher.Publish(ctx, data.OrderID, event); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "publish").Str("event_type", event.EventType).Str("order_id", data.OrderID).Msg("")
		}
	}
}
