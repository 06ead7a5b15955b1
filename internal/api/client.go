package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/GhadiSaab/savedfeast-client/internal/logging"
	"github.com/GhadiSaab/savedfeast-client/internal/securestore"
)

// Client is the single configured HTTP client for the SavedFeast API. It
// prefixes every path with /api, attaches the bearer token read from the
// store before each request and normalizes every failure into an *APIError
// or one of the transport sentinels.
type Client struct {
	baseURL    string
	store      securestore.Store
	httpClient *http.Client
}

func NewClient(baseURL string, store securestore.Store, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
		},
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.Get(ctx, securestore.KeyAuthToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		return c.responseError(ctx, resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	l := logging.FromContext(ctx).With("svc", "api")
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		l.Warn("request timed out", "error", err)
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	l.Warn("request failed", "error", err)
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// errBody is the shape the API uses for every non-2xx payload. Laravel-style
// validation errors arrive under "errors" as field -> messages.
type errBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) responseError(ctx context.Context, status int, data []byte) error {
	var body errBody
	_ = json.Unmarshal(data, &body)

	message := body.Message
	if message == "" {
		message = body.Error
	}

	switch {
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "Unauthenticated."
		}
		return &APIError{Status: status, Message: message}
	case status == http.StatusForbidden:
		if message == "" {
			message = "You are not allowed to perform this action."
		}
		return &APIError{Status: status, Message: message}
	case status == http.StatusNotFound:
		if message == "" {
			message = "Resource not found."
		}
		return &APIError{Status: status, Message: message}
	case status == http.StatusUnprocessableEntity:
		apiErr := &APIError{Status: status, Message: message, Fields: body.Errors}
		apiErr.Message = apiErr.FieldMessages()
		if apiErr.Message == "" {
			apiErr.Message = "Validation failed."
		}
		return apiErr
	case status >= 500:
		logging.FromContext(ctx).Error("server error", "status", status, "body", string(data))
		return &APIError{Status: status, Message: "Something went wrong on our end. Please try again later."}
	default:
		if message == "" {
			message = fmt.Sprintf("Request failed with status %d", status)
		}
		return &APIError{Status: status, Message: message}
	}
}
