package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/repository"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/utils"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

const orderIDPrefix = "WEB-"

type OrderServiceImpl struct {
	repository repository.OrderRepository
	pos        PosGateway
	payment    PaymentGateway
	publisher  EventPublisher
	metrics    *Metrics
	config     *config.Config
	now        func() time.Time
	newOrderID func() string
}

func CreateOrderService(repository repository.OrderRepository, pos PosGateway, payment PaymentGateway, publisher EventPublisher, metrics *Metrics, config *config.Config) OrderService {
	return &OrderServiceImpl{
		repository: repository,
		pos:        pos,
		payment:    payment,
		publisher:  publisher,
		metrics:    metrics,
		config:     config,
		now:        time.Now,
		newOrderID: func() string {
			return orderIDPrefix + ulid.Make().String()
		},
	}
}

// ListOutlets degrades to an empty list when the point of sale is unreachable.
func (s *OrderServiceImpl) ListOutlets(ctx context.Context) (data []domain.Outlet, err error) {
	data, err = s.pos.ListOutlets(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ListOutlets").Msg("")
		return []domain.Outlet{}, nil
	}

	return data, nil
}

func (s *OrderServiceImpl) ListProducts(ctx context.Context, outletID int64) (data []domain.Product, err error) {
	var v validator
	v.check(outletID > 0, "outletId", "required")
	if err = v.err(); err != nil {
		return nil, err
	}

	data, err = s.pos.ListProducts(ctx, outletID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ListProducts").Int64("outlet_id", outletID).Msg("")
		return []domain.Product{}, nil
	}

	return data, nil
}

// CreateTransaction stores a pending order and opens a payment session for
// it. The total is always computed from the items; a client supplied total is
// ignored.
func (s *OrderServiceImpl) CreateTransaction(ctx context.Context, req dto.TransactionRequest) (resp dto.TransactionResponse, err error) {
	items, err := validateTransactionRequest(req)
	if err != nil {
		return resp, err
	}

	order := domain.Order{
		ID:            s.newOrderID(),
		OutletID:      req.OutletID,
		OutletName:    strings.TrimSpace(req.OutletName),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Note:          strings.TrimSpace(req.Note),
		Items:         items,
		Total:         domain.CalculateTotal(items),
		Status:        domain.OrderStatusPending,
		CreatedAt:     s.now(),
	}

	session, err := s.payment.CreateSession(ctx, order)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CreateTransaction").Str("order_id", order.ID).Msg("")
		return resp, fmt.Errorf("%w: %w", errs.ErrPaymentSessionFailed, err)
	}

	// The session is only handed out once the order it pays for is stored.
	if err = s.repository.AddOrder(ctx, order); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CreateTransaction").Str("order_id", order.ID).Msg("discarding payment session")
		return resp, err
	}

	log.Ctx(ctx).Info().Str("component", "CreateTransaction").Str("order_id", order.ID).Int64("total", order.Total).Msg("order created")
	s.publish(ctx, []dto.KafkaMessage{orderEvent(dto.EventOrderCreated, order, "", nil, s.now())})

	return dto.TransactionResponse{
		OrderID:     order.ID,
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
		Total:       order.Total,
	}, nil
}

// SubmitCashierOrder forwards an order to be paid at the cashier. It is not
// stored locally and never enters the payment state machine.
func (s *OrderServiceImpl) SubmitCashierOrder(ctx context.Context, req dto.CashierOrderRequest) (resp dto.CashierOrderResponse, err error) {
	items, err := validateCashierOrderRequest(req)
	if err != nil {
		return resp, err
	}

	customer := domain.Customer{
		Name:  strings.TrimSpace(req.CustomerName),
		Phone: strings.TrimSpace(req.CustomerPhone),
	}

	ref, err := s.pos.SubmitCashierOrder(ctx, req.OutletID, customer, strings.TrimSpace(req.CustomerNote), items)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SubmitCashierOrder").Int64("outlet_id", req.OutletID).Msg("")
		return resp, err
	}

	log.Ctx(ctx).Info().Str("component", "SubmitCashierOrder").Str("application_order_id", ref.ApplicationOrderID).Int64("total", domain.CalculateTotal(items)).Msg("order sent to cashier")

	return dto.CashierOrderResponse{
		OrderID: ref.ApplicationOrderID,
		Status:  ref.Status,
		Message: "Order sent to the cashier, please pay at the counter",
	}, nil
}

func (s *OrderServiceImpl) GetOrderStatus(ctx context.Context, id string) (resp dto.OrderStatusResponse, err error) {
	if err = requireOrderID(id); err != nil {
		return resp, err
	}

	order, err := s.repository.GetOrderByID(ctx, id)
	if err != nil {
		return resp, err
	}

	return toOrderStatusResponse(order), nil
}

func (s *OrderServiceImpl) GetOrders(ctx context.Context, filter dto.OrderFilterRequest) (resp []dto.OrderResponse, err error) {
	if err = validateOrderFilter(filter); err != nil {
		return nil, err
	}

	orders, err := s.repository.GetOrders(ctx, repository.OrderFilter{
		Status:     domain.OrderStatus(filter.Status),
		Unrecorded: filter.Unrecorded,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	resp = make([]dto.OrderResponse, len(orders))
	for i, order := range orders {
		resp[i] = dto.OrderResponse{
			OrderStatusResponse:  toOrderStatusResponse(order),
			OutletID:             order.OutletID,
			CustomerPhone:        order.CustomerPhone,
			Note:                 order.Note,
			PaymentTransactionID: order.PaymentTransactionID,
			UpdatedAt:            order.UpdatedAt,
		}
	}

	return resp, nil
}

func toOrderStatusResponse(order domain.Order) dto.OrderStatusResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemResponse{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Name:        item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	return dto.OrderStatusResponse{
		ID:               order.ID,
		Status:           string(order.Status),
		CustomerName:     order.CustomerName,
		OutletName:       order.OutletName,
		Total:            order.Total,
		PaymentType:      order.PaymentType,
		PosReference:     order.PosReference,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		CreatedAtDisplay: utils.ConvertDateTimeToHumanReadableFormat(order.CreatedAt),
	}
}
