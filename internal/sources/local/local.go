// Package local implements sources.Source over a fixture file of orders.
//
// The file is JSON (SP-API field names, items under "OrderItems") or YAML
// (snake_case names, items under "items"), chosen by extension. It is re-read on
// every listing so edits show up on the next pass.
package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/format"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/sources"
)

// Scheme prefixes a fixture path in a source URI.
const Scheme = "file://"

// Source loads orders from a fixture file.
type Source struct {
	path string
	now  func() time.Time

	mu    sync.RWMutex
	items map[string][]orders.LineItem
}

var _ sources.Source = (*Source)(nil)

// Option configures a local source.
type Option func(*Source)

// WithClock sets the clock used for the lookback filter.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new local source reading path. A file:// prefix is accepted.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:  strings.TrimPrefix(path, Scheme),
		now:   time.Now,
		items: make(map[string][]orders.LineItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the fixture path.
func (s *Source) Path() string {
	return s.path
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID {
	return sources.FileID
}

type fixture struct {
	Orders []fixtureOrder `json:"orders" yaml:"orders"`
}

type fixtureOrder struct {
	orders.Order `yaml:",inline"`
	OrderItems   []orders.LineItem `json:"OrderItems,omitempty" yaml:"-"`
}

// ListRecentOrders implements sources.Source. Orders whose purchase date cannot
// be parsed are always included, as is everything when since is zero.
func (s *Source) ListRecentOrders(ctx context.Context, since time.Duration) ([]orders.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewSourceFetchError("list_orders", "", err)
	}

	loaded, err := s.load()
	if err != nil {
		return nil, errors.NewSourceFetchError("list_orders", "", err)
	}

	cutoff := s.now().Add(-since)
	items := make(map[string][]orders.LineItem, len(loaded))
	result := make([]orders.Order, 0, len(loaded))
	for _, o := range loaded {
		if o.AmazonOrderID != "" {
			items[o.AmazonOrderID] = o.Items
		}
		if since > 0 {
			if ts, err := format.ParseTimestamp(o.PurchaseDate); err == nil && ts.Before(cutoff) {
				continue
			}
		}
		result = append(result, o)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	logging.FromContext(ctx).Debug().
		Str("path", s.path).
		Int("orders", len(result)).
		Int("filtered", len(loaded)-len(result)).
		Msg("Loaded fixture orders")
	return result, nil
}

// ListLineItems implements sources.Source, answering from the last listing.
func (s *Source) ListLineItems(ctx context.Context, orderID string) ([]orders.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewSourceFetchError("list_items", orderID, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]orders.LineItem(nil), s.items[orderID]...), nil
}

func (s *Source) load() ([]orders.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	var f fixture
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.WrapParse("yaml", s.path, err)
		}
	default:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.WrapParse("json", s.path, err)
		}
	}

	out := make([]orders.Order, 0, len(f.Orders))
	for _, fo := range f.Orders {
		o := fo.Order
		if len(fo.OrderItems) > 0 {
			o.Items = fo.OrderItems
		}
		out = append(out, o)
	}
	return out, nil
}
