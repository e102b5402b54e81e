package ordersync

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/ordersync/internal/sources/local"
	"github.com/agentstation/ordersync/internal/sources/spapi"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/rowstore/memory"
	"github.com/agentstation/ordersync/pkg/rowstore/postgres"
	"github.com/agentstation/ordersync/pkg/rowstore/sqlite"
	"github.com/agentstation/ordersync/pkg/sources"
)

// Store URI schemes.
const (
	MemoryStoreURI = "memory"
	SQLiteScheme   = "sqlite://"
)

// OpenStore opens the row store named by uri:
//
//	memory                      in-process table, lost on exit
//	sqlite://path/to/orders.db  local SQLite file
//	postgres://user@host/db     shared PostgreSQL table (postgresql:// also accepted)
//
// sheet selects the table inside durable stores. Close the store with rowstore.Close.
func OpenStore(ctx context.Context, uri, sheet string) (rowstore.Store, error) {
	switch {
	case uri == "" || uri == MemoryStoreURI:
		return memory.New(), nil

	case strings.HasPrefix(uri, SQLiteScheme):
		path := strings.TrimPrefix(uri, SQLiteScheme)
		if path == "" {
			return nil, errors.NewValidationError("store", uri, "sqlite store needs a path")
		}
		s, err := sqlite.Open(path, sqlite.WithSheet(sheet))
		if err != nil {
			return nil, errors.WrapResource("open", "store", uri, err)
		}
		return s, nil

	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		s, err := postgres.Open(ctx, uri, postgres.WithSheet(sheet))
		if err != nil {
			return nil, errors.WrapResource("open", "store", redact(uri), err)
		}
		return s, nil

	default:
		return nil, errors.NewValidationError("store", redact(uri), "unsupported store URI (want memory, sqlite:// or postgres://)")
	}
}

// SourceConfig names an order source and its credentials.
type SourceConfig struct {
	// URI is "spapi" or "file://path/to/orders.json"
	URI string

	Endpoint      string
	MarketplaceID string
	AccessToken   string

	Now func() time.Time
}

// OpenSource builds the order source named by cfg.URI.
func OpenSource(cfg SourceConfig) (sources.Source, error) {
	switch {
	case cfg.URI == "" || cfg.URI == sources.SPAPIID.String():
		return spapi.New(spapi.Config{
			Endpoint:      cfg.Endpoint,
			MarketplaceID: cfg.MarketplaceID,
			AccessToken:   cfg.AccessToken,
			Now:           cfg.Now,
		})

	case strings.HasPrefix(cfg.URI, local.Scheme):
		return local.New(cfg.URI, local.WithClock(cfg.Now)), nil

	default:
		return nil, errors.NewValidationError("source", cfg.URI, "unsupported source (want spapi or file://)")
	}
}

// redact drops the password from a connection URI.
func redact(uri string) string {
	at := strings.LastIndex(uri, "@")
	scheme := strings.Index(uri, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return uri
	}
	userinfo := uri[scheme+3 : at]
	if user, _, ok := strings.Cut(userinfo, ":"); ok {
		return uri[:scheme+3] + user + ":***" + uri[at:]
	}
	return uri
}
