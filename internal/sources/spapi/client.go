// Package spapi implements sources.Source against the Selling Partner Orders API (v0).
//
// The client only consumes an access token; exchanging refresh tokens for access
// tokens happens outside this process.
package spapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/ordersync/internal/transport"
	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/sources"
)

// DefaultEndpoint is the Europe region endpoint, which serves the India marketplace.
const DefaultEndpoint = "https://sellingpartnerapi-eu.amazon.com"

// DefaultMarketplaceID is the India marketplace.
const DefaultMarketplaceID = "A21TJRUUN4KGV"

// Config configures the client.
type Config struct {
	Endpoint      string
	MarketplaceID string
	AccessToken   string
	PageSize      int
	MaxPages      int
	HTTPClient    *http.Client
	Now           func() time.Time
}

// Response envelopes.
type ordersResponse struct {
	Payload struct {
		Orders    []orders.Order `json:"Orders"`
		NextToken string         `json:"NextToken,omitempty"`
	} `json:"payload"`
}

type itemsResponse struct {
	Payload struct {
		AmazonOrderID string            `json:"AmazonOrderId"`
		OrderItems    []orders.LineItem `json:"OrderItems"`
		NextToken     string            `json:"NextToken,omitempty"`
	} `json:"payload"`
}

// Client is a Selling Partner API order source.
type Client struct {
	transport   *transport.Client
	endpoint    string
	marketplace string
	pageSize    int
	maxPages    int
	now         func() time.Time
}

var _ sources.Source = (*Client)(nil)

// New creates a client. An access token is required.
func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("spapi: %w", errors.ErrTokenRequired)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, errors.NewValidationError("spapi_endpoint", cfg.Endpoint, "invalid URL")
	}
	if cfg.MarketplaceID == "" {
		cfg.MarketplaceID = DefaultMarketplaceID
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.SPAPIPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = constants.MaxOrderPages
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Client{
		transport:   transport.New(transport.SPAPIAuth(), cfg.AccessToken, transport.WithHTTPClient(cfg.HTTPClient)),
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		marketplace: cfg.MarketplaceID,
		pageSize:    cfg.PageSize,
		maxPages:    cfg.MaxPages,
		now:         cfg.Now,
	}, nil
}

// ID implements sources.Source.
func (c *Client) ID() sources.ID {
	return sources.SPAPIID
}

// ListRecentOrders implements sources.Source, following NextToken until exhausted.
func (c *Client) ListRecentOrders(ctx context.Context, since time.Duration) ([]orders.Order, error) {
	logger := logging.FromContext(ctx)
	createdAfter := c.now().Add(-since).UTC().Format(time.RFC3339)

	var all []orders.Order
	next := ""
	for page := 0; page < c.maxPages; page++ {
		q := url.Values{}
		q.Set("MarketplaceIds", c.marketplace)
		if next == "" {
			q.Set("CreatedAfter", createdAfter)
			q.Set("MaxResultsPerPage", strconv.Itoa(c.pageSize))
		} else {
			q.Set("NextToken", next)
		}

		var resp ordersResponse
		if err := c.get(ctx, "/orders/v0/orders", q, &resp); err != nil {
			return nil, errors.NewSourceFetchError("list_orders", "", err)
		}
		all = append(all, resp.Payload.Orders...)
		logger.Debug().Int("page", page+1).Int("orders", len(resp.Payload.Orders)).Msg("Fetched order page")

		next = resp.Payload.NextToken
		if next == "" {
			return all, nil
		}
	}

	logger.Warn().Int("max_pages", c.maxPages).Msg("Order listing truncated at page limit")
	return all, nil
}

// ListLineItems implements sources.Source.
func (c *Client) ListLineItems(ctx context.Context, orderID string) ([]orders.LineItem, error) {
	path := "/orders/v0/orders/" + url.PathEscape(orderID) + "/orderItems"

	var all []orders.LineItem
	next := ""
	for page := 0; page < c.maxPages; page++ {
		q := url.Values{}
		if next != "" {
			q.Set("NextToken", next)
		}

		var resp itemsResponse
		if err := c.get(ctx, path, q, &resp); err != nil {
			return nil, errors.NewSourceFetchError("list_items", orderID, err)
		}
		all = append(all, resp.Payload.OrderItems...)

		next = resp.Payload.NextToken
		if next == "" {
			break
		}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, target any) error {
	u := c.endpoint + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := c.transport.Get(ctx, u)
	if err != nil {
		return &errors.APIError{
			Source:   sources.SPAPIID.String(),
			Message:  "request failed",
			Endpoint: path,
			Err:      err,
		}
	}
	return transport.DecodeResponse(resp, sources.SPAPIID.String(), target)
}
