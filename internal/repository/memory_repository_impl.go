package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
)

// OrderRepositoryMemoryImpl keeps orders for the lifetime of the process.
// Callers always receive copies, so returned orders can be modified freely.
type OrderRepositoryMemoryImpl struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	locks  map[string]chan struct{}
	now    func() time.Time
}

func CreateOrderMemoryRepository() *OrderRepositoryMemoryImpl {
	return &OrderRepositoryMemoryImpl{
		orders: make(map[string]domain.Order),
		locks:  make(map[string]chan struct{}),
		now:    time.Now,
	}
}

func (r *OrderRepositoryMemoryImpl) WithOrderLock(ctx context.Context, id string, fn func(ctx context.Context, repo OrderRepository) error) error {
	lock, err := r.orderLock(id)
	if err != nil {
		return err
	}

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("waiting for order %s: %w", id, ctx.Err())
	}
	defer func() { <-lock }()

	return fn(ctx, r)
}

// orderLock returns the lock created with the order. Orders are never
// removed, so neither are their locks.
func (r *OrderRepositoryMemoryImpl) orderLock(id string) (chan struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lock, ok := r.locks[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}
	return lock, nil
}

func (r *OrderRepositoryMemoryImpl) AddOrder(ctx context.Context, data domain.Order) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[data.ID]; ok {
		return fmt.Errorf("order %s: %w", data.ID, errs.ErrDuplicateOrder)
	}

	data = data.Clone()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = r.now()
	}
	data.UpdatedAt = data.CreatedAt
	for i := range data.Items {
		data.Items[i].OrderID = data.ID
	}

	r.orders[data.ID] = data
	r.locks[data.ID] = make(chan struct{}, 1)

	return nil
}

func (r *OrderRepositoryMemoryImpl) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return data, fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}

	return order.Clone(), nil
}

func (r *OrderRepositoryMemoryImpl) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, patch domain.OrderPatch) (data domain.Order, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return data, fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}

	order.Status = status
	patch.Apply(&order)
	order.UpdatedAt = r.now()
	r.orders[id] = order

	return order.Clone(), nil
}

func (r *OrderRepositoryMemoryImpl) GetOrders(ctx context.Context, filter OrderFilter) (data []domain.Order, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data = make([]domain.Order, 0)
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Unrecorded && order.PosReference != "" {
			continue
		}
		if !filter.CreatedBefore.IsZero() && !order.CreatedAt.Before(filter.CreatedBefore) {
			continue
		}
		data = append(data, order.Clone())
	}

	sort.Slice(data, func(i, j int) bool {
		if data[i].CreatedAt.Equal(data[j].CreatedAt) {
			return data[i].ID < data[j].ID
		}
		return data[i].CreatedAt.Before(data[j].CreatedAt)
	})

	if filter.Limit > 0 && len(data) > filter.Limit {
		data = data[:filter.Limit]
	}

	return data, nil
}
