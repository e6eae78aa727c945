package paymentgateway

import (
	"context"
	"strings"
	"testing"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

func newTestClient() *MidtransClient {
	return CreateMidtransClient(&config.Config{
		AppURL: "https://shop.example/",
		MidtransConfig: config.MidtransConfig{
			ServerKey: testServerKey,
		},
	})
}

func signedNotification(orderID, statusCode, grossAmount string) dto.PaymentNotification {
	return dto.PaymentNotification{
		OrderID:      orderID,
		StatusCode:   statusCode,
		GrossAmount:  grossAmount,
		SignatureKey: Signature(orderID, statusCode, grossAmount, testServerKey),
	}
}

func TestVerifyNotification(t *testing.T) {
	type TestCase struct {
		Name         string
		Notification func() dto.PaymentNotification
		Expected     bool
	}

	testCases := []TestCase{
		{
			Name: "Valid signature",
			Notification: func() dto.PaymentNotification {
				return signedNotification("WEB-1", "200", "30000.00")
			},
			Expected: true,
		},
		{
			Name: "Upper case signature",
			Notification: func() dto.PaymentNotification {
				n := signedNotification("WEB-1", "200", "30000.00")
				n.SignatureKey = strings.ToUpper(n.SignatureKey)
				return n
			},
			Expected: true,
		},
		{
			Name: "Tampered amount",
			Notification: func() dto.PaymentNotification {
				n := signedNotification("WEB-1", "200", "30000.00")
				n.GrossAmount = "1.00"
				return n
			},
			Expected: false,
		},
		{
			Name: "Same amount in another string form",
			Notification: func() dto.PaymentNotification {
				n := signedNotification("WEB-1", "200", "30000.00")
				n.GrossAmount = "30000"
				return n
			},
			Expected: false,
		},
		{
			Name: "Missing signature",
			Notification: func() dto.PaymentNotification {
				n := signedNotification("WEB-1", "200", "30000.00")
				n.SignatureKey = ""
				return n
			},
			Expected: false,
		},
		{
			Name: "Missing order id",
			Notification: func() dto.PaymentNotification {
				return dto.PaymentNotification{StatusCode: "200", GrossAmount: "1", SignatureKey: "abc"}
			},
			Expected: false,
		},
		{
			Name: "Signature of a different key",
			Notification: func() dto.PaymentNotification {
				n := signedNotification("WEB-1", "200", "30000.00")
				n.SignatureKey = Signature("WEB-1", "200", "30000.00", "other-key")
				return n
			},
			Expected: false,
		},
	}

	client := newTestClient()
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, client.VerifyNotification(tc.Notification()))
		})
	}
}

func TestClassify(t *testing.T) {
	type TestCase struct {
		TransactionStatus string
		FraudStatus       string
		Expected          domain.PaymentOutcome
	}

	testCases := []TestCase{
		{"capture", "", domain.PaymentOutcomeSuccess},
		{"capture", "accept", domain.PaymentOutcomeSuccess},
		{"capture", "challenge", domain.PaymentOutcomePending},
		{"capture", "deny", domain.PaymentOutcomeFailed},
		{"settlement", "", domain.PaymentOutcomeSuccess},
		{"pending", "", domain.PaymentOutcomePending},
		{"deny", "", domain.PaymentOutcomeFailed},
		{"cancel", "", domain.PaymentOutcomeFailed},
		{"expire", "", domain.PaymentOutcomeFailed},
		{"failure", "", domain.PaymentOutcomeFailed},
		{"refund", "", domain.PaymentOutcomeUnknown},
		{"authorize", "", domain.PaymentOutcomeUnknown},
		{"", "", domain.PaymentOutcomeUnknown},
	}

	client := newTestClient()
	for _, tc := range testCases {
		t.Run(tc.TransactionStatus+"/"+tc.FraudStatus, func(t *testing.T) {
			assert.Equal(t, tc.Expected, client.Classify(dto.PaymentNotification{
				TransactionStatus: tc.TransactionStatus,
				FraudStatus:       tc.FraudStatus,
			}))
		})
	}
}

func TestCreateSessionRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient()

	_, err := client.CreateSession(context.Background(), domain.Order{ID: "WEB-1", Total: 0})

	assert.ErrorIs(t, err, errs.ErrUpstreamRejected)
}

func TestBuildSnapRequest(t *testing.T) {
	client := newTestClient()
	order := domain.Order{
		ID:            "WEB-01JABC",
		CustomerName:  "Budi",
		CustomerPhone: "081234567890",
		Total:         30000,
		Items: []domain.OrderItem{
			{ProductID: 1, VariantID: 70, ProductName: "Kopi Susu", Price: 15000, Quantity: 2, CategoryName: "Coffee"},
		},
	}

	req := client.buildSnapRequest(order)

	assert.Equal(t, "WEB-01JABC", req.TransactionDetails.OrderID)
	assert.Equal(t, int64(30000), req.TransactionDetails.GrossAmt)
	require.NotNil(t, req.Items)
	require.Len(t, *req.Items, 1)
	assert.Equal(t, "1-70", (*req.Items)[0].ID)
	assert.Equal(t, int32(2), (*req.Items)[0].Qty)
	assert.Equal(t, int64(15000), (*req.Items)[0].Price)
	assert.Equal(t, "Budi", req.CustomerDetail.FName)
	assert.Equal(t, "081234567890", req.CustomerDetail.Phone)
	assert.Equal(t, "https://shop.example/order-success?order_id=WEB-01JABC", req.Callbacks.Finish)
}
