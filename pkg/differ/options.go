package differ

import "github.com/agentstation/ordersync/pkg/schema"

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithMutableColumns replaces the set of columns eligible for patching.
// The order id column is never patched and is dropped if listed.
func WithMutableColumns(columns ...schema.Column) Option {
	return func(d *differ) {
		d.mutable = d.mutable[:0]
		for _, c := range columns {
			if c != schema.OrderID {
				d.mutable = append(d.mutable, c)
			}
		}
	}
}

// WithIgnoredColumns excludes columns from comparison.
func WithIgnoredColumns(columns ...schema.Column) Option {
	return func(d *differ) {
		for _, c := range columns {
			d.ignore[c] = true
		}
	}
}
