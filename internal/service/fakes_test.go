package service

import (
	"context"
	"sync"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/repository"
)

type fakePosGateway struct {
	mu            sync.Mutex
	outlets       []domain.Outlet
	products      []domain.Product
	err           error
	recordErr     error
	recordDelay   time.Duration
	recordCalls   int
	cashierCalls  int
	lastTotal     int64
	lastItems     []domain.OrderItem
	lastNote      string
	lastCustomer  domain.Customer
	receiptPrefix string
}

func (f *fakePosGateway) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	return f.outlets, f.err
}

func (f *fakePosGateway) ListProducts(ctx context.Context, outletID int64) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakePosGateway) SubmitCashierOrder(ctx context.Context, outletID int64, customer domain.Customer, note string, items []domain.OrderItem) (domain.PosOrderRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cashierCalls++
	f.lastCustomer = customer
	f.lastNote = note
	f.lastItems = items
	if f.err != nil {
		return domain.PosOrderRef{}, f.err
	}
	return domain.PosOrderRef{ApplicationOrderID: "WEB-cashier-1", UUID: "uuid-1", Status: "pending"}, nil
}

func (f *fakePosGateway) RecordCompletedSale(ctx context.Context, outletID int64, items []domain.OrderItem, note string, total int64) (domain.PosReceiptRef, error) {
	if f.recordDelay > 0 {
		time.Sleep(f.recordDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.recordCalls++
	f.lastTotal = total
	f.lastItems = items
	f.lastNote = note
	if f.recordErr != nil {
		return domain.PosReceiptRef{}, f.recordErr
	}
	return domain.PosReceiptRef{ReceiptNo: f.receiptPrefix + "R-0001", UUID: "uuid-r"}, nil
}

func (f *fakePosGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recordCalls
}

type fakePaymentGateway struct {
	mu           sync.Mutex
	sessionErr   error
	sessionCalls int
	lastOrder    domain.Order
	validSig     bool
	statuses     map[string]dto.PaymentNotification
	statusErr    error
}

func (f *fakePaymentGateway) CreateSession(ctx context.Context, order domain.Order) (domain.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessionCalls++
	f.lastOrder = order
	if f.sessionErr != nil {
		return domain.PaymentSession{}, f.sessionErr
	}
	return domain.PaymentSession{Token: "snap-token", RedirectURL: "https://pay.example/" + order.ID}, nil
}

func (f *fakePaymentGateway) CheckStatus(ctx context.Context, orderID string) (dto.PaymentNotification, error) {
	if f.statusErr != nil {
		return dto.PaymentNotification{}, f.statusErr
	}
	return f.statuses[orderID], nil
}

func (f *fakePaymentGateway) VerifyNotification(notification dto.PaymentNotification) bool {
	return f.validSig
}

// Classify mirrors the gateway's mapping for the statuses used in tests.
func (f *fakePaymentGateway) Classify(notification dto.PaymentNotification) domain.PaymentOutcome {
	switch notification.TransactionStatus {
	case "settlement", "capture":
		return domain.PaymentOutcomeSuccess
	case "pending":
		return domain.PaymentOutcomePending
	case "deny", "cancel", "expire", "failure":
		return domain.PaymentOutcomeFailed
	}
	return domain.PaymentOutcomeUnknown
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg.EventType)
	return nil
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// referenceFailingRepository fails every update that stores a point of sale
// reference.
type referenceFailingRepository struct {
	repository.OrderRepository
	err error
}

func (r *referenceFailingRepository) WithOrderLock(ctx context.Context, id string, fn func(ctx context.Context, repo repository.OrderRepository) error) error {
	return r.OrderRepository.WithOrderLock(ctx, id, func(ctx context.Context, repo repository.OrderRepository) error {
		return fn(ctx, &referenceFailingRepository{OrderRepository: repo, err: r.err})
	})
}

func (r *referenceFailingRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, patch domain.OrderPatch) (domain.Order, error) {
	if patch.PosReference != nil {
		return domain.Order{}, r.err
	}
	return r.OrderRepository.UpdateOrderStatus(ctx, id, status, patch)
}
