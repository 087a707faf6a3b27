// Package client talks to the remote products API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"productcatalog/domain"
	"productcatalog/util"
)

// Client is a domain.ProductAPI over HTTP. The transport is assumed to be
// authenticated already.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// compile-time assertion that Client implements domain.ProductAPI
var _ domain.ProductAPI = (*Client)(nil)

// New creates a client for the products resource under baseURL, which
// includes the gateway prefix (e.g. http://localhost:3002/bp).
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "api-client").Logger(),
	}
}

// List fetches the full collection. Both a bare array and a {"data": [...]}
// envelope are accepted; any other shape yields an empty list.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", nil, &raw); err != nil {
		return nil, err
	}

	products, err := decodeList(raw)
	if err != nil {
		return nil, c.fail(&domain.NetworkError{
			Method:     http.MethodGet,
			Path:       "/products",
			StatusCode: http.StatusOK,
			Message:    "decode product list: " + err.Error(),
			Err:        err,
		})
	}
	return products, nil
}

func (c *Client) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", product, &out); err != nil {
		return domain.Product{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(product.ID), product, &out); err != nil {
		return domain.Product{}, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// VerifyID reports whether id is already taken.
func (c *Client) VerifyID(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := c.do(ctx, http.MethodGet, "/products/verification/"+url.PathEscape(id), nil, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := util.GenerateRequestID()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&domain.NetworkError{Method: method, Path: path, Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&domain.NetworkError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "read response body: " + err.Error(), Err: err})
	}

	if resp.StatusCode >= 300 {
		return c.fail(&domain.NetworkError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody, resp.Status),
		})
	}

	c.logger.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return c.fail(&domain.NetworkError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err})
	}
	return nil
}

func (c *Client) fail(err *domain.NetworkError) error {
	c.logger.Error().
		Str("method", err.Method).
		Str("path", err.Path).
		Int("status", err.StatusCode).
		Str("message", err.Message).
		Msg("api request failed")
	return err
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

func decodeList(raw json.RawMessage) ([]domain.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []domain.Product{}, nil
	}

	switch raw[0] {
	case '[':
		var products []domain.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
		return products, nil
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		data := bytes.TrimSpace(envelope.Data)
		if len(data) == 0 || data[0] != '[' {
			return []domain.Product{}, nil
		}
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, err
		}
		return products, nil
	}
	return []domain.Product{}, nil
}
