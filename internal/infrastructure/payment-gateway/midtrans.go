package paymentgateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransClient struct {
	serverKey  string
	appURL     string
	snapClient snap.Client
	coreClient coreapi.Client
}

func CreateMidtransClient(config *config.Config) *MidtransClient {
	env := midtrans.Sandbox
	if config.MidtransConfig.IsProduction {
		env = midtrans.Production
	}

	client := &MidtransClient{
		serverKey: config.MidtransConfig.ServerKey,
		appURL:    strings.TrimRight(config.AppURL, "/"),
	}
	client.snapClient.New(config.MidtransConfig.ServerKey, env)
	client.coreClient.New(config.MidtransConfig.ServerKey, env)

	return client
}

// CreateSession opens a Snap checkout for order. The amount charged is
// order.Total, which must already match the items.
func (m *MidtransClient) CreateSession(ctx context.Context, order domain.Order) (session domain.PaymentSession, err error) {
	if order.Total <= 0 {
		return session, fmt.Errorf("midtrans: gross amount %d is not positive: %w", order.Total, errs.ErrUpstreamRejected)
	}
	if err := ctx.Err(); err != nil {
		return session, fmt.Errorf("midtrans: %v: %w", err, errs.ErrUpstreamUnavailable)
	}

	resp, mErr := m.snapClient.CreateTransaction(m.buildSnapRequest(order))
	if mErr != nil {
		return session, wrapMidtransError("create transaction", mErr)
	}
	if resp == nil || resp.Token == "" {
		return session, fmt.Errorf("midtrans: create transaction returned no token: %w", errs.ErrUpstreamUnavailable)
	}

	session.Token = resp.Token
	session.RedirectURL = resp.RedirectURL

	return session, nil
}

func (m *MidtransClient) buildSnapRequest(order domain.Order) *snap.Request {
	items := make([]midtrans.ItemDetails, len(order.Items))
	for i, item := range order.Items {
		items[i] = midtrans.ItemDetails{
			ID:       fmt.Sprintf("%d-%d", item.ProductID, item.VariantID),
			Name:     item.ProductName,
			Price:    item.Price,
			Qty:      int32(item.Quantity),
			Category: item.CategoryName,
		}
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.ID,
			GrossAmt: order.Total,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.CustomerName,
			Phone: order.CustomerPhone,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/order-success?order_id=%s", m.appURL, order.ID),
		},
	}
}

// CheckStatus asks the Core API for the current state of a transaction and
// returns it in notification form.
func (m *MidtransClient) CheckStatus(ctx context.Context, orderID string) (notification dto.PaymentNotification, err error) {
	if err := ctx.Err(); err != nil {
		return notification, fmt.Errorf("midtrans: %v: %w", err, errs.ErrUpstreamUnavailable)
	}

	resp, mErr := m.coreClient.CheckTransaction(orderID)
	if mErr != nil {
		return notification, wrapMidtransError("check transaction", mErr)
	}
	if resp == nil {
		return notification, fmt.Errorf("midtrans: empty status for %s: %w", orderID, errs.ErrUpstreamUnavailable)
	}
	if resp.StatusCode == "404" {
		return notification, fmt.Errorf("midtrans: transaction %s not found: %w", orderID, errs.ErrUpstreamRejected)
	}

	return dto.PaymentNotification{
		TransactionTime:   resp.TransactionTime,
		TransactionStatus: resp.TransactionStatus,
		TransactionID:     resp.TransactionID,
		StatusMessage:     resp.StatusMessage,
		StatusCode:        resp.StatusCode,
		SignatureKey:      resp.SignatureKey,
		SettlementTime:    resp.SettlementTime,
		PaymentType:       resp.PaymentType,
		OrderID:           resp.OrderID,
		MerchantID:        resp.MerchantID,
		GrossAmount:       resp.GrossAmount,
		FraudStatus:       resp.FraudStatus,
		Currency:          resp.Currency,
	}, nil
}

// VerifyNotification checks signature_key against
// sha512(order_id + status_code + gross_amount + server key).
func (m *MidtransClient) VerifyNotification(notification dto.PaymentNotification) bool {
	if m.serverKey == "" || notification.OrderID == "" || notification.StatusCode == "" ||
		notification.GrossAmount == "" || notification.SignatureKey == "" {
		return false
	}

	expected := Signature(notification.OrderID, notification.StatusCode, notification.GrossAmount, m.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(notification.SignatureKey))) == 1
}

func (m *MidtransClient) Classify(notification dto.PaymentNotification) domain.PaymentOutcome {
	return Classify(notification.TransactionStatus, notification.FraudStatus)
}

func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Classify maps a Midtrans transaction status to a payment outcome. A capture
// flagged by fraud detection is not treated as paid.
func Classify(transactionStatus, fraudStatus string) domain.PaymentOutcome {
	switch transactionStatus {
	case "capture":
		switch fraudStatus {
		case "challenge":
			return domain.PaymentOutcomePending
		case "deny":
			return domain.PaymentOutcomeFailed
		}
		return domain.PaymentOutcomeSuccess
	case "settlement":
		return domain.PaymentOutcomeSuccess
	case "pending":
		return domain.PaymentOutcomePending
	case "deny", "cancel", "expire", "failure":
		return domain.PaymentOutcomeFailed
	default:
		return domain.PaymentOutcomeUnknown
	}
}

func wrapMidtransError(op string, mErr *midtrans.Error) error {
	status := mErr.GetStatusCode()
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return fmt.Errorf("midtrans: %s returned %d: %s: %w", op, status, mErr.Error(), errs.ErrUpstreamRejected)
	}
	return fmt.Errorf("midtrans: %s returned %d: %s: %w", op, status, mErr.Error(), errs.ErrUpstreamUnavailable)
}
