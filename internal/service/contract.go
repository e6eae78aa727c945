package service

import (
	"context"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
)

type OrderService interface {
	ListOutlets(ctx context.Context) (data []domain.Outlet, err error)
	ListProducts(ctx context.Context, outletID int64) (data []domain.Product, err error)
	CreateTransaction(ctx context.Context, req dto.TransactionRequest) (resp dto.TransactionResponse, err error)
	SubmitCashierOrder(ctx context.Context, req dto.CashierOrderRequest) (resp dto.CashierOrderResponse, err error)
	HandlePaymentNotification(ctx context.Context, req dto.PaymentNotification) (result domain.ReconciliationResult, err error)
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (resp dto.RecordPaymentResponse, err error)
	GetOrderStatus(ctx context.Context, id string) (resp dto.OrderStatusResponse, err error)
	GetOrders(ctx context.Context, filter dto.OrderFilterRequest) (resp []dto.OrderResponse, err error)
	RetryOrderPosRecording(ctx context.Context, id string) (result domain.ReconciliationResult, err error)

	SyncPendingPayments(ctx context.Context)
	RetryPosRecording(ctx context.Context)
}

// PosGateway is the point of sale the storefront sells through.
type PosGateway interface {
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)
	ListProducts(ctx context.Context, outletID int64) ([]domain.Product, error)
	SubmitCashierOrder(ctx context.Context, outletID int64, customer domain.Customer, note string, items []domain.OrderItem) (domain.PosOrderRef, error)
	RecordCompletedSale(ctx context.Context, outletID int64, items []domain.OrderItem, note string, total int64) (domain.PosReceiptRef, error)
}

type PaymentGateway interface {
	CreateSession(ctx context.Context, order domain.Order) (domain.PaymentSession, error)
	CheckStatus(ctx context.Context, orderID string) (dto.PaymentNotification, error)
	VerifyNotification(notification dto.PaymentNotification) bool
	Classify(notification dto.PaymentNotification) domain.PaymentOutcome
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg dto.KafkaMessage) error
}
