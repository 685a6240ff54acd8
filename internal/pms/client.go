// Package pms is a client for the property-management REST API. The gateway
// only needs the read paths: property listing/detail and reservations.
package pms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/botel-ai/pms-mcp-gateway/internal/config"
)

// pageSize matches the original deployment: one page is enough for a single
// customer's portfolio.
const pageSize = 100

// API is the surface the tools consume. Client implements it against the
// live PMS; tests substitute fakes.
type API interface {
	ListProperties(ctx context.Context, includeInactive bool) (*PropertyPage, error)
	GetProperty(ctx context.Context, id string) (*PropertyDetail, error)
	ListReservations(ctx context.Context, propertyID string) (*ReservationPage, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	customerID string
	httpc      *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.PMSConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		customerID: cfg.CustomerID,
		httpc: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				MaxIdleConns:    16,
				MaxConnsPerHost: 8,
			},
		},
		log: log,
	}
}

func (c *Client) ListProperties(ctx context.Context, includeInactive bool) (*PropertyPage, error) {
	params := url.Values{}
	params.Set("PageSize", strconv.Itoa(pageSize))
	if !includeInactive {
		params.Set("Status", "true")
	}
	var page PropertyPage
	if err := c.get(ctx, "/api/Property/GetAll", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProperty(ctx context.Context, id string) (*PropertyDetail, error) {
	params := url.Values{}
	params.Set("Id", id)
	var detail PropertyDetail
	if err := c.get(ctx, "/api/Property/Get", params, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) ListReservations(ctx context.Context, propertyID string) (*ReservationPage, error) {
	params := url.Values{}
	params.Set("propertyId", propertyID)
	params.Set("pageSize", strconv.Itoa(pageSize))
	var page ReservationPage
	if err := c.get(ctx, "/api/Reservation/Get", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("pms: build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.customerID != "" {
		req.Header.Set("customerId", c.customerID)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("pms: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pms: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("pms request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("pms: GET %s returned %d: %s", path, resp.StatusCode, snippet(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("pms: decode %s response: %w", path, err)
	}
	return nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
