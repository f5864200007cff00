// Package remote implements the entity CRUD surface over the inspection REST API.
package remote

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

	apperrors "github.com/allisson/inspecta/internal/errors"
)

const maxErrorBody = 1 << 20

// Client is a JSON REST client for one resource collection, e.g. /reports.
type Client[T any] struct {
	base     *url.URL
	resource string
	http     *http.Client
	token    string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	token      string
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) Option {
	return func(o *options) { o.token = token }
}

// NewClient creates a Client for resource under baseURL.
func NewClient[T any](baseURL, resource string, opts ...Option) (*Client[T], error) {
	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid api base url %q", baseURL)
	}
	resource = strings.Trim(resource, "/")
	if resource == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "resource is required")
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client[T]{base: base, resource: resource, http: httpClient, token: o.token}, nil
}

// List returns the collection filtered by query parameters.
func (c *Client[T]) List(ctx context.Context, filters map[string]string) ([]T, error) {
	raw, err := c.ListRaw(ctx, filters)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", c.resource, err)
	}
	return items, nil
}

// ListRaw returns the collection as a JSON array, unwrapping {"items": [...]} and
// {"data": [...]} envelopes.
func (c *Client[T]) ListRaw(ctx context.Context, filters map[string]string) (json.RawMessage, error) {
	query := url.Values{}
	for k, v := range filters {
		query.Set(k, v)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("", query), nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// Get returns one entity.
func (c *Client[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	if err := c.do(ctx, http.MethodGet, c.endpoint(id, nil), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create posts payload and returns the created entity.
func (c *Client[T]) Create(ctx context.Context, payload any) (*T, error) {
	var v T
	if err := c.do(ctx, http.MethodPost, c.endpoint("", nil), payload, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Update patches the entity and returns the server representation.
func (c *Client[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	var v T
	if err := c.do(ctx, http.MethodPatch, c.endpoint(id, nil), patch, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes the entity.
func (c *Client[T]) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(id, nil), nil, nil)
}

func (c *Client[T]) endpoint(id string, query url.Values) string {
	u := *c.base
	u.Path = u.Path + "/" + c.resource
	if id != "" {
		u.Path += "/" + id
		u.RawPath = ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client[T]) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperrors.APIError{Message: "network error", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.resource, err)
	}
	return nil
}

func unwrapList(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, nil
	}
	var envelope struct {
		Items json.RawMessage `json:"items"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		for _, candidate := range []json.RawMessage{envelope.Items, envelope.Data} {
			candidate = bytes.TrimSpace(candidate)
			if len(candidate) > 0 && candidate[0] == '[' {
				return candidate, nil
			}
		}
	}
	return nil, apperrors.Wrap(apperrors.ErrConflict, "list response is not an array")
}
