package sources

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/orders"
)

// Static is an in-memory Source. It is safe for concurrent use.
// Orders carrying Items serve those items from ListLineItems.
type Static struct {
	mu        sync.RWMutex
	orders    []orders.Order
	items     map[string][]orders.LineItem
	listErr   error
	itemErrs  map[string]error
	itemCalls map[string]int
}

// NewStatic creates a static source holding list.
func NewStatic(list ...orders.Order) *Static {
	s := &Static{
		items:     make(map[string][]orders.LineItem),
		itemErrs:  make(map[string]error),
		itemCalls: make(map[string]int),
	}
	s.SetOrders(list...)
	return s
}

// ID implements Source.
func (s *Static) ID() ID {
	return StaticID
}

// SetOrders replaces the order list. Items attached to orders are indexed by order id.
func (s *Static) SetOrders(list ...orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make([]orders.Order, len(list))
	for i, o := range list {
		if len(o.Items) > 0 {
			s.items[o.AmazonOrderID] = append([]orders.LineItem(nil), o.Items...)
		}
		o.Items = nil
		s.orders[i] = o
	}
}

// FailList makes ListRecentOrders return err.
func (s *Static) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailItems makes ListLineItems return err for orderID.
func (s *Static) FailItems(orderID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemErrs[orderID] = err
}

// ItemCalls returns how often the items of orderID were requested.
func (s *Static) ItemCalls(orderID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemCalls[orderID]
}

// ListRecentOrders implements Source. The lookback window is not applied.
func (s *Static) ListRecentOrders(ctx context.Context, _ time.Duration) ([]orders.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, errors.NewSourceFetchError("list_orders", "", s.listErr)
	}
	out := make([]orders.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// ListLineItems implements Source.
func (s *Static) ListLineItems(ctx context.Context, orderID string) ([]orders.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemCalls[orderID]++
	if err := s.itemErrs[orderID]; err != nil {
		return nil, errors.NewSourceFetchError("list_items", orderID, err)
	}
	items := s.items[orderID]
	out := make([]orders.LineItem, len(items))
	copy(out, items)
	return out, nil
}
