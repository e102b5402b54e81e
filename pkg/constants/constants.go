// Package constants provides shared constants used throughout the ordersync codebase.
// This includes timeouts, pacing defaults, file permissions, and the sentinel cell
// values that must stay consistent between the reconciler and the row stores.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the order source
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// SyncTimeout is the timeout for a single reconciliation pass
	SyncTimeout = 30 * time.Minute

	// DefaultSyncInterval is the default interval between automatic passes
	DefaultSyncInterval = 15 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the metrics server
	ShutdownTimeout = 5 * time.Second
)

// Reconciliation defaults.
const (
	// DefaultLookback is how far back the order source is queried
	DefaultLookback = 24 * time.Hour

	// DefaultPatchWindow limits patching to recently purchased orders
	DefaultPatchWindow = 6 * time.Hour

	// DefaultSerialFloor is the lowest serial number ever assigned
	DefaultSerialFloor = 193

	// DefaultRowDelay is the pause after each successful row write
	DefaultRowDelay = 300 * time.Millisecond

	// DefaultBatchDelay is the pause after every DefaultBatchSize orders
	DefaultBatchDelay = 3 * time.Second

	// DefaultBatchSize is the number of orders between batch delays
	DefaultBatchSize = 10

	// DefaultDisplayOffset is added to UTC timestamps before rendering (IST)
	DefaultDisplayOffset = 5*time.Hour + 30*time.Minute

	// SPAPIPageSize is the MaxResultsPerPage sent to the orders endpoint
	SPAPIPageSize = 50
)

// Sentinel cell values.
const (
	// NotAvailable marks a cell whose upstream value is unknown
	NotAvailable = "N/A"

	// NoItemsTitle is the product name of a placeholder row
	NoItemsTitle = "No items found"

	// SingleItemSummary is the summary of a placeholder row
	SingleItemSummary = "Single Item"

	// DefaultPrintStatus is written into new rows' print status cell
	DefaultPrintStatus = "Not Printed"

	// DefaultPackStatus is written into new rows' pack status cell
	DefaultPackStatus = "Not Packed"

	// DefaultMultiItemMarker is appended to summaries of multi-item orders
	DefaultMultiItemMarker = " 📦 SAME ORDER"

	// DefaultCurrency is used when an order total carries no currency code
	DefaultCurrency = "INR"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like access tokens (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants
const (
	// MaxOrderPages caps NextToken paging against the order source
	MaxOrderPages = 100

	// MaxResponseBytes caps the size of a single source response body
	MaxResponseBytes = 10 * 1024 * 1024
)
