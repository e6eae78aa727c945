package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/repository"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/rs/zerolog/log"
)

const (
	defaultClientPaymentType = "online"
	backgroundBatchSize      = 100
)

// HandlePaymentNotification applies a webhook push. The signature is checked
// before the order is looked up. A failed point of sale recording is reported
// in the result, not as an error, so the webhook is still acknowledged.
func (s *OrderServiceImpl) HandlePaymentNotification(ctx context.Context, req dto.PaymentNotification) (result domain.ReconciliationResult, err error) {
	if !s.payment.VerifyNotification(req) {
		log.Ctx(ctx).Warn().Str("component", "HandlePaymentNotification").Str("order_id", req.OrderID).Msg("rejected notification with invalid signature")
		return result, errs.ErrSignatureInvalid
	}

	return s.reconcile(ctx, req.OrderID, domain.PaymentSignal{
		Source:        domain.SignalSourceWebhook,
		Outcome:       s.payment.Classify(req),
		PaymentType:   req.PaymentType,
		TransactionID: req.TransactionID,
	})
}

// RecordPayment is called by the storefront right after the customer saw a
// successful payment. Unless verification is disabled, the payment status is
// taken from the gateway, not from the caller.
func (s *OrderServiceImpl) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (resp dto.RecordPaymentResponse, err error) {
	if err = requireOrderID(req.OrderID); err != nil {
		return resp, err
	}

	order, err := s.repository.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return resp, err
	}
	if order.IsRecorded() {
		return recordPaymentResponse(domain.ReconciliationResult{
			OrderID:      order.ID,
			Status:       order.Status,
			Outcome:      domain.ReconciliationAlreadyRecorded,
			PosReference: order.PosReference,
		}), nil
	}

	signal := domain.PaymentSignal{
		Source:      domain.SignalSourceClient,
		Outcome:     domain.PaymentOutcomeSuccess,
		PaymentType: valueOr(req.PaymentType, defaultClientPaymentType),
	}

	if s.config.MidtransConfig.VerifyRecordedPayments {
		notification, err := s.payment.CheckStatus(ctx, req.OrderID)
		switch {
		case errors.Is(err, errs.ErrUpstreamRejected):
			// The gateway does not know the transaction yet.
			log.Ctx(ctx).Warn().Err(err).Str("component", "RecordPayment").Str("order_id", req.OrderID).Msg("")
			signal.Outcome = domain.PaymentOutcomeUnknown
		case err != nil:
			log.Ctx(ctx).Error().Err(err).Str("component", "RecordPayment").Str("order_id", req.OrderID).Msg("")
			return resp, err
		default:
			signal.Outcome = s.payment.Classify(notification)
			signal.PaymentType = valueOr(notification.PaymentType, signal.PaymentType)
			signal.TransactionID = notification.TransactionID
		}
	}

	result, err := s.reconcile(ctx, req.OrderID, signal)
	if err != nil {
		return resp, err
	}

	return recordPaymentResponse(result), nil
}

// RetryOrderPosRecording records the sale of a paid order whose earlier
// recording attempt failed.
func (s *OrderServiceImpl) RetryOrderPosRecording(ctx context.Context, id string) (result domain.ReconciliationResult, err error) {
	if err = requireOrderID(id); err != nil {
		return result, err
	}

	return s.reconcile(ctx, id, domain.PaymentSignal{
		Source:  domain.SignalSourceRetry,
		Outcome: domain.PaymentOutcomeSuccess,
	})
}

// SyncPendingPayments asks the gateway about orders that stayed pending for a
// while, for deployments where webhooks do not arrive.
func (s *OrderServiceImpl) SyncPendingPayments(ctx context.Context) {
	logger := log.With().Str("component", "SyncPendingPayments").Logger()
	ctx = logger.WithContext(ctx)

	orders, err := s.repository.GetOrders(ctx, repository.OrderFilter{
		Status:        domain.OrderStatusPending,
		CreatedBefore: s.now().Add(-s.config.SchedulerConfig.PendingMinAge),
		Limit:         backgroundBatchSize,
	})
	if err != nil {
		logger.Error().Err(err).Msg("")
		return
	}

	for _, order := range orders {
		if ctx.Err() != nil {
			return
		}

		notification, err := s.payment.CheckStatus(ctx, order.ID)
		if err != nil {
			logger.Warn().Err(err).Str("order_id", order.ID).Msg("status check failed")
			continue
		}

		result, err := s.reconcile(ctx, order.ID, domain.PaymentSignal{
			Source:        domain.SignalSourcePoll,
			Outcome:       s.payment.Classify(notification),
			PaymentType:   notification.PaymentType,
			TransactionID: notification.TransactionID,
		})
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.ID).Msg("")
			continue
		}
		logger.Info().Str("order_id", order.ID).Str("outcome", string(result.Outcome)).Msg("synced")
	}
}

// RetryPosRecording retries point of sale recording for paid orders that
// still have no reference.
func (s *OrderServiceImpl) RetryPosRecording(ctx context.Context) {
	logger := log.With().Str("component", "RetryPosRecording").Logger()
	ctx = logger.WithContext(ctx)

	orders, err := s.repository.GetOrders(ctx, repository.OrderFilter{
		Status:        domain.OrderStatusPaid,
		Unrecorded:    true,
		CreatedBefore: s.now().Add(-s.config.SchedulerConfig.PosRetryGracePeriod),
		Limit:         backgroundBatchSize,
	})
	if err != nil {
		logger.Error().Err(err).Msg("")
		return
	}

	for _, order := range orders {
		if ctx.Err() != nil {
			return
		}

		result, err := s.RetryOrderPosRecording(ctx, order.ID)
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.ID).Msg("")
			continue
		}
		logger.Info().Str("order_id", order.ID).Str("outcome", string(result.Outcome)).Msg("retried")
	}
}

// reconcile is the single transition function every payment signal goes
// through. It runs under the order lock, so concurrent signals for one order
// are applied one after another and the sale is recorded at most once.
func (s *OrderServiceImpl) reconcile(ctx context.Context, orderID string, signal domain.PaymentSignal) (result domain.ReconciliationResult, err error) {
	var events []dto.KafkaMessage

	err = s.repository.WithOrderLock(ctx, orderID, func(ctx context.Context, repo repository.OrderRepository) error {
		order, err := repo.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		result, events, err = s.transition(ctx, repo, order, signal)
		return err
	})
	if err != nil {
		return result, err
	}

	s.metrics.observeReconciliation(signal.Source, result.Outcome)
	s.publish(ctx, events)

	log.Ctx(ctx).Info().
		Str("component", "reconcile").
		Str("order_id", orderID).
		Str("source", signal.Source).
		Str("signal", string(signal.Outcome)).
		Str("status", string(result.Status)).
		Str("outcome", string(result.Outcome)).
		Msg("reconciled")

	return result, nil
}

func (s *OrderServiceImpl) transition(ctx context.Context, repo repository.OrderRepository, order domain.Order, signal domain.PaymentSignal) (result domain.ReconciliationResult, events []dto.KafkaMessage, err error) {
	result = domain.ReconciliationResult{
		OrderID:      order.ID,
		Status:       order.Status,
		PosReference: order.PosReference,
	}

	if order.IsRecorded() {
		result.Outcome = domain.ReconciliationAlreadyRecorded
		return result, nil, nil
	}

	switch order.Status {
	case domain.OrderStatusFailed:
		if signal.Outcome == domain.PaymentOutcomeSuccess {
			log.Ctx(ctx).Warn().Str("component", "reconcile").Str("order_id", order.ID).Str("source", signal.Source).Msg("ignoring success for failed order")
		}
		if signal.Source == domain.SignalSourceRetry {
			return result, nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, errs.ErrConflict)
		}
		result.Outcome = domain.ReconciliationIgnoredTerminal
		return result, nil, nil

	case domain.OrderStatusPaid:
		// Paid without a reference: only an explicit retry records again.
		if signal.Source != domain.SignalSourceRetry {
			result.Outcome = domain.ReconciliationPartialFailure
			return result, nil, nil
		}
		return s.recordSale(ctx, repo, order, signal)
	}

	if signal.Source == domain.SignalSourceRetry {
		return result, nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, errs.ErrConflict)
	}

	patch := domain.OrderPatch{}
	if signal.PaymentType != "" {
		patch.PaymentType = &signal.PaymentType
	}

	switch signal.Outcome {
	case domain.PaymentOutcomeSuccess:
		if signal.TransactionID != "" {
			patch.PaymentTransactionID = &signal.TransactionID
		}
		order, err = repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPaid, patch)
		if err != nil {
			return result, nil, err
		}
		events = append(events, orderEvent(dto.EventOrderPaid, order, signal.Source, nil, s.now()))

		recorded, recordEvents, err := s.recordSale(ctx, repo, order, signal)
		return recorded, append(events, recordEvents...), err

	case domain.PaymentOutcomePending:
		order, err = repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, patch)
		if err != nil {
			return result, nil, err
		}
		result.Status = order.Status
		result.Outcome = domain.ReconciliationMarkedPending
		return result, nil, nil

	case domain.PaymentOutcomeFailed:
		order, err = repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusFailed, patch)
		if err != nil {
			return result, nil, err
		}
		result.Status = order.Status
		result.Outcome = domain.ReconciliationMarkedFailed
		return result, []dto.KafkaMessage{orderEvent(dto.EventOrderFailed, order, signal.Source, nil, s.now())}, nil
	}

	result.Outcome = domain.ReconciliationIgnoredUnknown
	return result, nil, nil
}

// recordSale sends a paid order to the point of sale. The caller holds the
// order lock. A point of sale failure leaves the order paid without a
// reference and is returned as a partial failure outcome.
func (s *OrderServiceImpl) recordSale(ctx context.Context, repo repository.OrderRepository, order domain.Order, signal domain.PaymentSignal) (result domain.ReconciliationResult, events []dto.KafkaMessage, err error) {
	result = domain.ReconciliationResult{
		OrderID: order.ID,
		Status:  order.Status,
	}

	reference, posErr := s.submitSale(ctx, order)
	if posErr != nil {
		log.Ctx(ctx).Error().Err(posErr).Str("component", "recordSale").Str("order_id", order.ID).Msg("payment captured but point of sale recording failed")
		s.metrics.posRecordingFailed()

		result.Outcome = domain.ReconciliationPartialFailure
		result.PosError = fmt.Errorf("%w: %w", errs.ErrPosRecordingFailed, posErr)
		return result, []dto.KafkaMessage{orderEvent(dto.EventPosRecordingFailed, order, signal.Source, posErr, s.now())}, nil
	}

	// The sale exists at the point of sale from here on, so a store failure
	// must not undo the paid transition.
	stored, storeErr := repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPaid, domain.OrderPatch{PosReference: &reference})
	if storeErr != nil {
		log.Ctx(ctx).Error().Err(storeErr).Str("component", "recordSale").Str("order_id", order.ID).Str("pos_reference", reference).Msg("sale recorded but reference not stored")
		s.metrics.posRecordingFailed()

		result.Outcome = domain.ReconciliationPartialFailure
		result.PosReference = reference
		result.PosError = fmt.Errorf("%w: sale %s recorded, storing reference: %w", errs.ErrPosRecordingFailed, reference, storeErr)
		failed := order
		failed.PosReference = reference
		return result, []dto.KafkaMessage{orderEvent(dto.EventPosRecordingFailed, failed, signal.Source, storeErr, s.now())}, nil
	}
	order = stored

	result.Status = order.Status
	result.Outcome = domain.ReconciliationRecorded
	result.PosReference = order.PosReference

	return result, []dto.KafkaMessage{orderEvent(dto.EventPosRecorded, order, signal.Source, nil, s.now())}, nil
}

func (s *OrderServiceImpl) submitSale(ctx context.Context, order domain.Order) (string, error) {
	if s.config.MokaConfig.RecordingMode == config.SaleRecordingAdvancedOrder {
		note := fmt.Sprintf("PAID ONLINE (%s)", strings.ToUpper(valueOr(order.PaymentType, defaultClientPaymentType)))
		if order.Note != "" {
			note += " - " + order.Note
		}

		ref, err := s.pos.SubmitCashierOrder(ctx, order.OutletID, domain.Customer{Name: order.CustomerName, Phone: order.CustomerPhone}, note, order.Items)
		if err != nil {
			return "", err
		}
		return ref.ApplicationOrderID, nil
	}

	ref, err := s.pos.RecordCompletedSale(ctx, order.OutletID, order.Items, saleNote(order), domain.CalculateTotal(order.Items))
	if err != nil {
		return "", err
	}
	return ref.ReceiptNo, nil
}

func saleNote(order domain.Order) string {
	note := fmt.Sprintf("Online Payment - %s | Order: %s | Customer: %s | Phone: %s",
		strings.ToUpper(valueOr(order.PaymentType, defaultClientPaymentType)), order.ID, order.CustomerName, order.CustomerPhone)
	if order.Note != "" {
		note += " | Note: " + order.Note
	}
	return note
}

func recordPaymentResponse(result domain.ReconciliationResult) dto.RecordPaymentResponse {
	messages := map[domain.ReconciliationOutcome]string{
		domain.ReconciliationRecorded:        "Payment recorded",
		domain.ReconciliationAlreadyRecorded: "Already recorded",
		domain.ReconciliationPartialFailure:  "Payment received, the order will be forwarded to the outlet shortly",
		domain.ReconciliationMarkedPending:   "Payment is still pending",
		domain.ReconciliationMarkedFailed:    "Payment failed",
		domain.ReconciliationIgnoredTerminal: "Order is already closed",
		domain.ReconciliationIgnoredUnknown:  "Payment status is not final yet",
	}

	return dto.RecordPaymentResponse{
		Message:      messages[result.Outcome],
		Status:       string(result.Status),
		Outcome:      string(result.Outcome),
		PosReference: result.PosReference,
	}
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
