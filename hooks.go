package ordersync

import (
	"context"
	"sync"

	"github.com/agentstation/ordersync/pkg/reconciler"
)

// Hook function types for pass events
type (
	// RowInsertedHook is called after a row is written for a new order
	RowInsertedHook func(row reconciler.InsertedRow)

	// CellPatchedHook is called after a cell of a known order is overwritten
	CellPatchedHook func(patch reconciler.CellPatch)

	// PassCompletedHook is called with the result of every pass, including dry runs
	PassCompletedHook func(result *reconciler.Result)
)

// Hooks provides event callback registration.
type Hooks interface {
	OnRowInserted(fn RowInsertedHook)
	OnCellPatched(fn CellPatchedHook)
	OnPassCompleted(fn PassCompletedHook)
}

var _ Hooks = (*client)(nil)

// hooks manages event callbacks for pass events
type hooks struct {
	mu              sync.RWMutex
	onRowInserted   []RowInsertedHook
	onCellPatched   []CellPatchedHook
	onPassCompleted []PassCompletedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnRowInserted registers a callback for inserted rows
func (c *client) OnRowInserted(fn RowInsertedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRowInserted = append(c.hooks.onRowInserted, fn)
}

// OnCellPatched registers a callback for patched cells
func (c *client) OnCellPatched(fn CellPatchedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCellPatched = append(c.hooks.onCellPatched, fn)
}

// OnPassCompleted registers a callback for finished passes
func (c *client) OnPassCompleted(fn PassCompletedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onPassCompleted = append(c.hooks.onPassCompleted, fn)
}

// RowInserted implements reconciler.Observer.
func (h *hooks) RowInserted(_ context.Context, row reconciler.InsertedRow) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRowInserted {
		hook(row)
	}
}

// CellPatched implements reconciler.Observer.
func (h *hooks) CellPatched(_ context.Context, patch reconciler.CellPatch) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCellPatched {
		hook(patch)
	}
}

func (h *hooks) triggerPassCompleted(result *reconciler.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onPassCompleted {
		hook(result)
	}
}

// observers fans one write out to several observers.
type observers []reconciler.Observer

func (o observers) RowInserted(ctx context.Context, row reconciler.InsertedRow) {
	for _, obs := range o {
		obs.RowInserted(ctx, row)
	}
}

func (o observers) CellPatched(ctx context.Context, patch reconciler.CellPatch) {
	for _, obs := range o {
		obs.CellPatched(ctx, patch)
	}
}
