package posgateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	circuitbreaker "github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MokaClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := &config.Config{
		MokaConfig: config.MokaConfig{
			BaseURL:     server.URL,
			AccessToken: "test-token",
		},
	}

	client := CreateMokaClient(conf, httpclient.NewClient(), circuitbreaker.CreateCircuitBreaker("moka-test", time.Minute))
	client.now = func() time.Time {
		return time.Date(2025, 1, 2, 20, 30, 0, 0, time.UTC)
	}

	return client
}

func TestListOutlets(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/profile/self", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"outlet_ids":[10,11,12],"outlet_names":["Kemang","",""]}`))
	})

	outlets, err := client.ListOutlets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Outlet{
		{ID: 10, Name: "Kemang"},
		{ID: 11, Name: "Outlet 11"},
		{ID: 12, Name: "Outlet 12"},
	}, outlets)
}

func TestListProducts(t *testing.T) {
	type TestCase struct {
		Name     string
		Body     string
		Expected []domain.Product
	}

	imageURL := "https://img.example/kopi.png"

	testCases := []TestCase{
		{
			Name: "Items nested under data",
			Body: `{"data":{"items":[{"id":1,"name":"Kopi Susu","description":"Gula aren","category":{"id":7,"name":"Coffee"},"image":{"url":"https://img.example/kopi.png"},"item_variants":[{"id":70,"name":"Large","price":25000.75,"in_stock":12},{"id":71,"name":"Small","price":18000}]}]}}`,
			Expected: []domain.Product{{
				ID:          1,
				Name:        "Kopi Susu",
				Description: "Gula aren",
				Price:       25000,
				Category:    "Coffee",
				ImageURL:    &imageURL,
				Stock:       12,
				VariantID:   70,
				VariantName: "Large",
				CategoryID:  7,
			}},
		},
		{
			Name: "Items at root without variants or category",
			Body: `{"items":[{"id":2,"name":"Air Mineral"}]}`,
			Expected: []domain.Product{{
				ID:          2,
				Name:        "Air Mineral",
				Price:       0,
				Category:    "Uncategorized",
				VariantName: "Standard",
			}},
		},
		{
			Name:     "No items",
			Body:     `{"data":{}}`,
			Expected: []domain.Product{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/outlets/10/items", r.URL.Path)
				w.Write([]byte(tc.Body))
			})

			products, err := client.ListProducts(context.Background(), 10)

			require.NoError(t, err)
			assert.Equal(t, tc.Expected, products)
		})
	}
}

func TestRecordCompletedSale(t *testing.T) {
	var received checkoutRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/outlets/10/checkouts", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"uuid":"c-uuid","receipt_no":"R-0001","total_collected":30000},"meta":{"code":201}}`))
	})

	items := []domain.OrderItem{{ProductID: 1, VariantID: 70, ProductName: "Kopi Susu", Price: 15000, Quantity: 2, CategoryID: 7, CategoryName: "Coffee"}}
	ref, err := client.RecordCompletedSale(context.Background(), 10, items, "Online Payment - QRIS", 30000)

	require.NoError(t, err)
	assert.Equal(t, domain.PosReceiptRef{ReceiptNo: "R-0001", UUID: "c-uuid"}, ref)
	assert.Equal(t, "2025-01-03T03:30:00.000+07:00", received.Checkout.ClientCreatedAt)
	assert.Equal(t, int64(30000), received.Checkout.TotalGrossSales)
	assert.Equal(t, int64(30000), received.Checkout.TotalNetSales)
	assert.Equal(t, int64(30000), received.Checkout.TotalCollected)
	assert.Equal(t, int64(30000), received.Checkout.AmountPay)
	require.Len(t, received.Checkout.Items, 1)
	assert.Equal(t, checkoutItem{
		Quantity:        2,
		ItemID:          1,
		ItemName:        "Kopi Susu",
		ItemVariantID:   70,
		ItemVariantName: "Standard",
		CategoryID:      7,
		CategoryName:    "Coffee",
		ClientPrice:     15000,
		GrossSales:      30000,
		NetSales:        30000,
	}, received.Checkout.Items[0])
}

func TestSubmitCashierOrder(t *testing.T) {
	var received advancedOrderRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/outlets/10/advanced_orderings/orders", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Write([]byte(`{"data":{"id":99,"uuid":"a-uuid","application_order_id":"ignored","status":"pending"}}`))
	})

	items := []domain.OrderItem{
		{ProductID: 1, ProductName: "Kopi Susu", Price: 15000, Quantity: 2},
		{ProductID: 2, ProductName: "Roti", Price: 8000, Quantity: 1},
	}
	ref, err := client.SubmitCashierOrder(context.Background(), 10, domain.Customer{Name: "Budi"}, "less sugar", items)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.ApplicationOrderID, "WEB-"))
	assert.Equal(t, ref.ApplicationOrderID, received.ApplicationOrderID)
	assert.Equal(t, "a-uuid", ref.UUID)
	assert.Equal(t, "pending", ref.Status)
	assert.Equal(t, "-", received.CustomerPhoneNumber)
	assert.Equal(t, "Cash", received.PaymentType)
	assert.Equal(t, "Website Order", received.SalesTypeName)
	assert.Equal(t, "[Website] less sugar | Kopi Susu x2, Roti x1", received.Note)
	require.Len(t, received.OrderItems, 2)
	assert.Equal(t, int64(15000), received.OrderItems[0].ItemPriceLibrary)
	assert.NotNil(t, received.OrderItems[0].ItemModifiers)
	assert.Nil(t, received.OrderItems[0].ItemDiscountAmount)

	second, err := client.SubmitCashierOrder(context.Background(), 10, domain.Customer{Name: "Budi"}, "", items)
	require.NoError(t, err)
	assert.NotEqual(t, ref.ApplicationOrderID, second.ApplicationOrderID)
	assert.Equal(t, "[Website] Kopi Susu x2, Roti x1", received.Note)
}

func TestMokaErrorMapping(t *testing.T) {
	type TestCase struct {
		Name       string
		StatusCode int
		Body       string
		Expected   error
		Detail     string
	}

	testCases := []TestCase{
		{
			Name:       "Client error is a rejection with the vendor message",
			StatusCode: http.StatusUnprocessableEntity,
			Body:       `{"meta":{"code":422,"error_message":"item variant not found"}}`,
			Expected:   errs.ErrUpstreamRejected,
			Detail:     "item variant not found",
		},
		{
			Name:       "Server error is unavailability",
			StatusCode: http.StatusBadGateway,
			Body:       `upstream down`,
			Expected:   errs.ErrUpstreamUnavailable,
			Detail:     "Bad Gateway",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.StatusCode)
				w.Write([]byte(tc.Body))
			})

			_, err := client.RecordCompletedSale(context.Background(), 10, nil, "", 0)

			assert.ErrorIs(t, err, tc.Expected)
			assert.Contains(t, err.Error(), tc.Detail)
		})
	}
}

func TestMokaCircuitOpensAfterFailures(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 5; i++ {
		_, err := client.ListOutlets(context.Background())
		assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	}

	assert.Equal(t, 3, calls)
}

func TestMokaWithoutAccessToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	client.accessToken = ""

	_, err := client.ListOutlets(context.Background())

	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
}
