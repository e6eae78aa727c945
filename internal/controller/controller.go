package controller

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/service"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/response"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	service service.OrderService
}

func CreateOrderController(g *echo.Group, service service.OrderService, isLoggedIn echo.MiddlewareFunc) {
	c := Controller{
		service: service,
	}

	g.GET("/outlets", c.ListOutlets)
	g.GET("/products", c.ListProducts)
	g.POST("/orders", c.SubmitCashierOrder)
	g.POST("/payments/transactions", c.CreateTransaction)
	g.POST("/payments/notifications", c.PaymentNotification)
	g.GET("/payments/notifications", c.PaymentNotificationPing)
	g.POST("/payments/record", c.RecordPayment)
	g.GET("/payments/status", c.GetOrderStatus)

	admin := g.Group("/admin", isLoggedIn)
	admin.GET("/orders", c.GetOrders)
	admin.POST("/orders/:id/pos-recording", c.RetryPosRecording)
}

func bindError(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrClient, err)
}

func (c *Controller) ListOutlets(e echo.Context) error {
	outlets, err := c.service.ListOutlets(e.Request().Context())
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", dto.OutletsResponse{Outlets: outlets})
}

func (c *Controller) ListProducts(e echo.Context) error {
	outletID, err := strconv.ParseInt(e.QueryParam("outletId"), 10, 64)
	if err != nil {
		return response.WriteErrorResponse(e, errs.ErrValidation, []response.ValidationError{{Field: "outletId", Tag: "required"}})
	}

	products, err := c.service.ListProducts(e.Request().Context(), outletID)
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, "", dto.ProductsResponse{Products: products})
}

func (c *Controller) SubmitCashierOrder(e echo.Context) error {
	payload := dto.CashierOrderRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "SubmitCashierOrder").Msg("")
		return response.WriteErrorResponse(e, bindError(err), nil)
	}

	resp, err := c.service.SubmitCashierOrder(e.Request().Context(), payload)
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, resp.Message, resp)
}

func (c *Controller) CreateTransaction(e echo.Context) error {
	payload := dto.TransactionRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "CreateTransaction").Msg("")
		return response.WriteErrorResponse(e, bindError(err), nil)
	}

	resp, err := c.service.CreateTransaction(e.Request().Context(), payload)
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

// PaymentNotification acknowledges every notification whose signature and
// order are valid, including those whose point of sale recording failed.
func (c *Controller) PaymentNotification(e echo.Context) error {
	payload := dto.PaymentNotification{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "PaymentNotification").Msg("")
		return response.WriteErrorResponse(e, bindError(err), nil)
	}

	result, err := c.service.HandlePaymentNotification(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	if result.Outcome == domain.ReconciliationPartialFailure {
		log.Ctx(e.Request().Context()).Warn().Err(result.PosError).Str("component", "PaymentNotification").Str("order_id", result.OrderID).Msg("acknowledged with pending point of sale recording")
	}

	return response.WriteSuccessResponse(e, "OK", nil)
}

func (c *Controller) PaymentNotificationPing(e echo.Context) error {
	return response.WriteSuccessResponse(e, "Payment notification endpoint is active", nil)
}

func (c *Controller) RecordPayment(e echo.Context) error {
	payload := dto.RecordPaymentRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "RecordPayment").Msg("")
		return response.WriteErrorResponse(e, bindError(err), nil)
	}

	resp, err := c.service.RecordPayment(e.Request().Context(), payload)
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, resp.Message, resp)
}

func (c *Controller) GetOrderStatus(e echo.Context) error {
	resp, err := c.service.GetOrderStatus(e.Request().Context(), e.QueryParam("order_id"))
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetOrders(e echo.Context) error {
	filter := dto.OrderFilterRequest{}
	if err := e.Bind(&filter); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "GetOrders").Msg("")
		return response.WriteErrorResponse(e, bindError(err), nil)
	}

	resp, err := c.service.GetOrders(e.Request().Context(), filter)
	if err != nil {
		return writeServiceError(e, err)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved orders", resp)
}

func (c *Controller) RetryPosRecording(e echo.Context) error {
	operatorID, operatorName := utils.ExtractTokenOperator(e)
	orderID := e.Param("id")

	result, err := c.service.RetryOrderPosRecording(e.Request().Context(), orderID)
	if err != nil {
		return writeServiceError(e, err)
	}

	log.Ctx(e.Request().Context()).Info().
		Str("component", "RetryPosRecording").
		Str("operator_id", operatorID).
		Str("operator_name", operatorName).
		Str("order_id", orderID).
		Str("outcome", string(result.Outcome)).
		Msg("operator retried point of sale recording")

	if result.PosError != nil {
		return response.WriteErrorResponse(e, result.PosError, nil)
	}

	return response.WriteSuccessResponse(e, "", dto.RecordPaymentResponse{
		Status:       string(result.Status),
		Outcome:      string(result.Outcome),
		PosReference: result.PosReference,
	})
}

func writeServiceError(e echo.Context, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return response.WriteErrorResponse(e, err, validationErr.Fields)
	}
	return response.WriteErrorResponse(e, err, nil)
}
