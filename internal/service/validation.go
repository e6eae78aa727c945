package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/response"
	"github.com/shopspring/decimal"
)

const (
	minPhoneLength = 10
	// Snap item quantities are int32.
	maxQuantity = math.MaxInt32
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ValidationError lists every rejected field of a request. It matches
// errs.ErrValidation.
type ValidationError struct {
	Fields []response.ValidationError
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.Field + " " + f.Tag
	}
	return fmt.Sprintf("%s: %s", errs.ErrValidation, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return errs.ErrValidation
}

type validator struct {
	fields []response.ValidationError
}

func (v *validator) check(ok bool, field, tag string) {
	if !ok {
		v.fields = append(v.fields, response.ValidationError{Field: field, Tag: tag})
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) items(items []dto.OrderItemRequest) []domain.OrderItem {
	v.check(len(items) > 0, "items", "required")

	total := decimal.Zero
	result := make([]domain.OrderItem, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		v.check(item.ID > 0, prefix+"id", "required")
		v.check(strings.TrimSpace(item.Name) != "", prefix+"name", "required")
		v.check(item.Quantity >= 1, prefix+"quantity", "min")
		v.check(item.Quantity <= maxQuantity, prefix+"quantity", "max")

		switch {
		case item.Price.IsNegative():
			v.check(false, prefix+"price", "min")
		case !item.Price.IsInteger():
			v.check(false, prefix+"price", "integer")
		case item.Price.GreaterThan(maxAmount):
			v.check(false, prefix+"price", "max")
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))

		category := item.CategoryName
		if strings.TrimSpace(category) == "" {
			category = item.Category
		}

		result[i] = domain.OrderItem{
			ProductID:    item.ID,
			VariantID:    item.VariantID,
			ProductName:  strings.TrimSpace(item.Name),
			VariantName:  item.VariantName,
			Price:        item.Price.IntPart(),
			Quantity:     item.Quantity,
			CategoryID:   item.CategoryID,
			CategoryName: category,
		}
	}

	// Totals are summed in int64 once the items are accepted.
	v.check(total.LessThanOrEqual(maxAmount), "total", "max")

	return result
}

func validateTransactionRequest(req dto.TransactionRequest) ([]domain.OrderItem, error) {
	var v validator
	v.check(req.OutletID > 0, "outlet_id", "required")
	v.check(strings.TrimSpace(req.CustomerName) != "", "customer_name", "required")
	v.check(len(strings.TrimSpace(req.CustomerPhone)) >= minPhoneLength, "customer_phone", "min")
	items := v.items(req.Items)

	return items, v.err()
}

func validateCashierOrderRequest(req dto.CashierOrderRequest) ([]domain.OrderItem, error) {
	var v validator
	v.check(req.OutletID > 0, "outlet_id", "required")
	v.check(strings.TrimSpace(req.CustomerName) != "", "customer_name", "required")
	items := v.items(req.Items)

	return items, v.err()
}

func validateOrderFilter(filter dto.OrderFilterRequest) error {
	var v validator
	switch domain.OrderStatus(filter.Status) {
	case "", domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusFailed:
	default:
		v.check(false, "status", "oneof")
	}

	return v.err()
}

func requireOrderID(id string) error {
	var v validator
	v.check(strings.TrimSpace(id) != "", "order_id", "required")

	return v.err()
}
