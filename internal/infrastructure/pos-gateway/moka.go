package posgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	circuitbreaker "github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/httpclient"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultVariantName  = "Standard"
	defaultCategoryName = "Uncategorized"
	applicationIDPrefix = "WEB-"
)

type MokaClient struct {
	baseURL     string
	accessToken string
	httpClient  *httpclient.Client
	cb          *gobreaker.CircuitBreaker[[]byte]
	now         func() time.Time
}

func CreateMokaClient(config *config.Config, httpClient *httpclient.Client, cb *gobreaker.CircuitBreaker[[]byte]) *MokaClient {
	return &MokaClient{
		baseURL:     strings.TrimRight(config.MokaConfig.BaseURL, "/") + "/v1",
		accessToken: config.MokaConfig.AccessToken,
		httpClient:  httpClient,
		cb:          cb,
		now:         time.Now,
	}
}

func (m *MokaClient) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	body, err := m.send(ctx, http.MethodGet, "/profile/self", nil)
	if err != nil {
		return nil, err
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("moka: decoding profile: %v: %w", err, errs.ErrUpstreamUnavailable)
	}

	outlets := make([]domain.Outlet, 0, len(profile.OutletIDs))
	for i, id := range profile.OutletIDs {
		name := ""
		if i < len(profile.OutletNames) {
			name = profile.OutletNames[i]
		}
		if name == "" {
			name = fmt.Sprintf("Outlet %d", id)
		}
		outlets = append(outlets, domain.Outlet{ID: id, Name: name})
	}

	return outlets, nil
}

func (m *MokaClient) ListProducts(ctx context.Context, outletID int64) ([]domain.Product, error) {
	body, err := m.send(ctx, http.MethodGet, fmt.Sprintf("/outlets/%d/items", outletID), nil)
	if err != nil {
		return nil, err
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("moka: decoding items: %v: %w", err, errs.ErrUpstreamUnavailable)
	}

	items := resp.Items
	if resp.Data != nil && len(resp.Data.Items) > 0 {
		items = resp.Data.Items
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		products = append(products, toProduct(item))
	}

	return products, nil
}

// SubmitCashierOrder sends an unpaid order to the cashier app. Every call
// generates a new application order id, so retrying creates a second order.
func (m *MokaClient) SubmitCashierOrder(ctx context.Context, outletID int64, customer domain.Customer, note string, items []domain.OrderItem) (ref domain.PosOrderRef, err error) {
	appOrderID, err := uuid.NewV7()
	if err != nil {
		return ref, fmt.Errorf("moka: generating application order id: %w", err)
	}

	phone := customer.Phone
	if strings.TrimSpace(phone) == "" {
		phone = "-"
	}

	orderItems := make([]advancedOrderItem, len(items))
	for i, item := range items {
		orderItems[i] = advancedOrderItem{
			ItemID:           item.ProductID,
			ItemName:         item.ProductName,
			Quantity:         item.Quantity,
			ItemVariantID:    item.VariantID,
			ItemVariantName:  valueOr(item.VariantName, defaultVariantName),
			ItemPriceLibrary: item.Price,
			CategoryID:       item.CategoryID,
			CategoryName:     valueOr(item.CategoryName, defaultCategoryName),
			ItemModifiers:    []interface{}{},
		}
	}

	payload := advancedOrderRequest{
		CustomerName:          customer.Name,
		CustomerPhoneNumber:   phone,
		CustomerAddressDetail: "Online Order",
		CustomerCity:          "Online",
		SalesTypeName:         "Website Order",
		ClientCreatedAt:       utils.FormatWibTimestamp(m.now()),
		ApplicationOrderID:    applicationIDPrefix + appOrderID.String(),
		PaymentType:           "Cash",
		Note:                  cashierNote(note, items),
		OrderItems:            orderItems,
	}

	body, err := m.send(ctx, http.MethodPost, fmt.Sprintf("/outlets/%d/advanced_orderings/orders", outletID), payload)
	if err != nil {
		return ref, err
	}

	var resp advancedOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "SubmitCashierOrder").Msg("undecodable moka response, order was accepted")
	}

	ref.ApplicationOrderID = payload.ApplicationOrderID
	ref.UUID = resp.Data.UUID
	ref.Status = resp.Data.Status

	return ref, nil
}

// RecordCompletedSale records an already paid sale through the checkout API.
// All sale totals are set to total; it is the caller's job to make total
// match the items.
func (m *MokaClient) RecordCompletedSale(ctx context.Context, outletID int64, items []domain.OrderItem, note string, total int64) (ref domain.PosReceiptRef, err error) {
	checkoutItems := make([]checkoutItem, len(items))
	for i, item := range items {
		checkoutItems[i] = checkoutItem{
			Quantity:        item.Quantity,
			ItemID:          item.ProductID,
			ItemName:        item.ProductName,
			ItemVariantID:   item.VariantID,
			ItemVariantName: valueOr(item.VariantName, defaultVariantName),
			CategoryID:      item.CategoryID,
			CategoryName:    valueOr(item.CategoryName, defaultCategoryName),
			ClientPrice:     item.Price,
			GrossSales:      item.Subtotal(),
			NetSales:        item.Subtotal(),
		}
	}

	payload := checkoutRequest{
		Checkout: checkoutPayload{
			Note:            note,
			ClientCreatedAt: utils.FormatWibTimestamp(m.now()),
			TotalGrossSales: total,
			TotalNetSales:   total,
			TotalCollected:  total,
			AmountPay:       total,
			Items:           checkoutItems,
		},
	}

	body, err := m.send(ctx, http.MethodPost, fmt.Sprintf("/outlets/%d/checkouts", outletID), payload)
	if err != nil {
		return ref, err
	}

	var resp checkoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ref, fmt.Errorf("moka: decoding checkout: %v: %w", err, errs.ErrUpstreamUnavailable)
	}
	if resp.Data.ReceiptNo == "" && resp.Data.UUID == "" {
		return ref, fmt.Errorf("moka: checkout response without receipt: %w", errs.ErrUpstreamUnavailable)
	}

	ref.ReceiptNo = resp.Data.ReceiptNo
	ref.UUID = resp.Data.UUID
	if ref.ReceiptNo == "" {
		ref.ReceiptNo = ref.UUID
	}

	return ref, nil
}

func (m *MokaClient) send(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	if m.accessToken == "" {
		return nil, fmt.Errorf("moka: access token is not configured: %w", errs.ErrUpstreamUnavailable)
	}

	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("moka: encoding request: %w", err)
		}
	}

	body, err := m.cb.Execute(func() ([]byte, error) {
		statusCode, respBody, err := m.httpClient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    m.baseURL + path,
			Method: method,
			Body:   reqBody,
			Headers: map[string]string{
				"Authorization": "Bearer " + m.accessToken,
				"Content-Type":  "application/json",
			},
		})
		if err != nil {
			return nil, fmt.Errorf("moka %s %s: %v: %w", method, path, err, errs.ErrUpstreamUnavailable)
		}

		switch {
		case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
			return respBody, nil
		case statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError:
			return nil, fmt.Errorf("moka %s %s returned %d: %s: %w", method, path, statusCode, errorMessage(respBody, statusCode), errs.ErrUpstreamRejected)
		default:
			return nil, fmt.Errorf("moka %s %s returned %d: %s: %w", method, path, statusCode, errorMessage(respBody, statusCode), errs.ErrUpstreamUnavailable)
		}
	})
	if circuitbreaker.IsOpen(err) {
		return nil, fmt.Errorf("moka %s %s: %v: %w", method, path, err, errs.ErrUpstreamUnavailable)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "MokaClient").Msg("")
		return nil, err
	}

	return body, nil
}

func errorMessage(body []byte, statusCode int) string {
	var resp mokaErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Meta.ErrorMessage != "" {
		return resp.Meta.ErrorMessage
	}
	return http.StatusText(statusCode)
}

func toProduct(item mokaItem) domain.Product {
	product := domain.Product{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    defaultCategoryName,
		VariantName: defaultVariantName,
	}

	if item.Category != nil {
		product.CategoryID = item.Category.ID
		product.Category = valueOr(item.Category.Name, defaultCategoryName)
	}
	if item.Image != nil && item.Image.URL != "" {
		url := item.Image.URL
		product.ImageURL = &url
	}
	if len(item.ItemVariants) > 0 {
		variant := item.ItemVariants[0]
		product.VariantID = variant.ID
		product.VariantName = valueOr(variant.Name, defaultVariantName)
		product.Price = wholeAmount(variant.Price)
		product.Stock = wholeAmount(variant.InStock)
	}

	return product
}

// wholeAmount rounds vendor amounts down to whole units and clamps negatives.
func wholeAmount(d decimal.Decimal) int64 {
	if d.IsNegative() {
		return 0
	}
	return d.Floor().IntPart()
}

func cashierNote(note string, items []domain.OrderItem) string {
	summary := make([]string, len(items))
	for i, item := range items {
		summary[i] = fmt.Sprintf("%s x%d", item.ProductName, item.Quantity)
	}

	if strings.TrimSpace(note) == "" {
		return "[Website] " + strings.Join(summary, ", ")
	}
	return fmt.Sprintf("[Website] %s | %s", note, strings.Join(summary, ", "))
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
