package format

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/ordersync/pkg/errors"
)

// Status map presets.
const (
	PresetNone   = "none"
	PresetLegacy = "legacy"
)

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// StatusMap translates upstream statuses. Lookups ignore case; unmapped statuses pass through.
type StatusMap map[string]string

// NewStatusMap builds a map from upstream status to written status.
func NewStatusMap(pairs map[string]string) StatusMap {
	m := make(StatusMap, len(pairs))
	for from, to := range pairs {
		m[fold(from)] = to
	}
	return m
}

// Translate returns the written form of status.
func (m StatusMap) Translate(status string) string {
	if to, ok := m[fold(status)]; ok {
		return to
	}
	return status
}

// StatusPreset returns a named status map.
func StatusPreset(name string) (StatusMap, error) {
	switch fold(name) {
	case "", PresetNone:
		return StatusMap{}, nil
	case PresetLegacy:
		return NewStatusMap(map[string]string{"Shipped": "Ordered"}), nil
	default:
		return nil, errors.NewValidationError("status_preset", name, "unknown status preset")
	}
}

// IsPendingStatus reports whether status means the order has not left the warehouse.
func IsPendingStatus(status string) bool {
	switch fold(status) {
	case "pending", "unshipped", "partiallyshipped":
		return true
	}
	return false
}
