package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/lifecycle"
	"github.com/polkiloo/uniformorders/internal/server/http/dto"
)

// HTTPClient talks to the order service over its JSON API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ lifecycle.Collaborator = (*HTTPClient)(nil)

// NewHTTPClient creates API client authenticating with the bearer token.
func NewHTTPClient(baseURL, token string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse order api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("order api url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// FetchOrder returns the authoritative snapshot.
func (c *HTTPClient) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(nil, "orders", orderID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.orderResult(ctx, resp, orderID)
}

// FetchOrdersForUser returns every order of the user.
func (c *HTTPClient) FetchOrdersForUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return c.list(ctx, c.endpoint(nil, "users", strconv.FormatInt(userID, 10), "orders"))
}

// ListOrders returns the staff listing, optionally filtered by status.
func (c *HTTPClient) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	var query url.Values
	if status != nil {
		query = url.Values{"status": []string{status.String()}}
	}
	return c.list(ctx, c.endpoint(query, "orders"))
}

// UpdateOrder applies a partial change on the server.
func (c *HTTPClient) UpdateOrder(ctx context.Context, orderID string, change model.OrderChange) (*model.Order, error) {
	resp, err := c.do(ctx, http.MethodPatch, c.endpoint(nil, "orders", orderID), dto.FromChange(change))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.orderResult(ctx, resp, orderID)
}

// RejectOrder rejects the order on the server.
func (c *HTTPClient) RejectOrder(ctx context.Context, orderID string, reason string) (*model.Order, error) {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(nil, "orders", orderID, "reject"), dto.RejectRequest{Reason: reason})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.orderResult(ctx, resp, orderID)
}

func (c *HTTPClient) endpoint(query url.Values, segments ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path, "/api"}, segments...)...)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String()
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domainErrors.TransportError{Cause: err}
	}
	return resp, nil
}

func (c *HTTPClient) list(ctx context.Context, endpoint string) ([]model.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
		var payload []dto.Order
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &domainErrors.TransportError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode orders: %w", err)}
		}
		orders := make([]model.Order, 0, len(payload))
		for _, o := range payload {
			order, err := toSnapshot(o, resp.StatusCode)
			if err != nil {
				return nil, err
			}
			orders = append(orders, order)
		}
		return orders, nil
	default:
		return nil, c.failure(ctx, resp, "")
	}
}

func (c *HTTPClient) orderResult(ctx context.Context, resp *http.Response, orderID string) (*model.Order, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, c.failure(ctx, resp, orderID)
	}
	var payload dto.Order
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domainErrors.TransportError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode order: %w", err)}
	}
	order, err := toSnapshot(payload, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func toSnapshot(payload dto.Order, statusCode int) (model.Order, error) {
	order, err := payload.ToModel()
	if err == nil {
		err = order.Validate()
	}
	if err != nil {
		return model.Order{}, &domainErrors.TransportError{
			StatusCode: statusCode,
			Cause:      fmt.Errorf("malformed order snapshot: %w", err),
		}
	}
	return order, nil
}

func (c *HTTPClient) failure(ctx context.Context, resp *http.Response, orderID string) error {
	raw, _ := io.ReadAll(resp.Body)
	var body dto.ErrorResponse
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("order %s: %w", orderID, domainErrors.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainErrors.NewValidationError(body.Error)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domainErrors.ErrForbidden, body.Error)
	case http.StatusConflict:
		return c.conflict(ctx, body, orderID)
	default:
		c.logger.Error("order api request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("url", resp.Request.URL.String()),
			slog.String("body", string(raw)),
		)
		return &domainErrors.TransportError{
			StatusCode: resp.StatusCode,
			Message:    body.Error,
			Cause:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
}

func (c *HTTPClient) conflict(ctx context.Context, body dto.ErrorResponse, orderID string) error {
	if body.Order != nil {
		current, err := toSnapshot(*body.Order, http.StatusConflict)
		if err != nil {
			return err
		}
		return &domainErrors.ConflictError{Message: body.Error, Current: current}
	}
	if orderID == "" {
		return &domainErrors.ConflictError{Message: body.Error}
	}

	current, err := c.FetchOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("refetch after conflict: %w", err)
	}
	return &domainErrors.ConflictError{Message: body.Error, Current: *current}
}
