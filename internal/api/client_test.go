package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GhadiSaab/savedfeast-client/internal/securestore"
)

func newTestServer(t *testing.T, register func(e *echo.Echo)) *httptest.Server {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_AttachesBearerTokenAndHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotRequestID, gotAccept string
	srv := newTestServer(t, func(e *echo.Echo) {
		e.GET("/api/user", func(c echo.Context) error {
			gotAuth = c.Request().Header.Get("Authorization")
			gotRequestID = c.Request().Header.Get("X-Request-ID")
			gotAccept = c.Request().Header.Get("Accept")
			return c.JSON(http.StatusOK, map[string]any{"user": map[string]any{"id": 1}})
		})
	})

	store := securestore.NewMemoryStore()
	store.Set(context.Background(), securestore.KeyAuthToken, "tok-123")
	client := NewClient(srv.URL, store, 5*time.Second)

	var out struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, client.Get(context.Background(), "/user", nil, &out))

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, uint(1), out.User.ID)
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := newTestServer(t, func(e *echo.Echo) {
		e.GET("/api/meals", func(c echo.Context) error {
			gotAuth = c.Request().Header.Get("Authorization")
			return c.JSON(http.StatusOK, map[string]any{"data": []any{}})
		})
	})

	client := NewClient(srv.URL, securestore.NewMemoryStore(), 5*time.Second)
	require.NoError(t, client.Get(context.Background(), "/meals", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestClient_QueryEncoding(t *testing.T) {
	t.Parallel()

	var gotPage, gotSearch string
	srv := newTestServer(t, func(e *echo.Echo) {
		e.GET("/api/meals", func(c echo.Context) error {
			gotPage = c.QueryParam("page")
			gotSearch = c.QueryParam("search")
			return c.JSON(http.StatusOK, map[string]any{"data": []any{}})
		})
	})

	client := NewClient(srv.URL, securestore.NewMemoryStore(), 5*time.Second)
	query := url.Values{"page": {"2"}, "search": {"falafel wrap"}}
	require.NoError(t, client.Get(context.Background(), "/meals", query, nil))

	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "falafel wrap", gotSearch)
}

func TestClient_ErrorNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        any
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "validation errors are joined",
			status:      http.StatusUnprocessableEntity,
			body:        map[string]any{"message": "The given data was invalid.", "errors": map[string][]string{"items": {"Items are required"}, "pickup_time": {"Pickup time is required"}}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Items are required, Pickup time is required",
		},
		{
			name:        "business rule message verbatim",
			status:      http.StatusBadRequest,
			body:        map[string]any{"message": "Insufficient stock for Falafel Wrap"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Insufficient stock for Falafel Wrap",
		},
		{
			name:        "server errors get generic message",
			status:      http.StatusInternalServerError,
			body:        map[string]any{"message": "SQLSTATE[HY000] something leaked"},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Something went wrong on our end. Please try again later.",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        map[string]any{"message": "Unauthenticated."},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthenticated.",
		},
		{
			name:        "not found default message",
			status:      http.StatusNotFound,
			body:        map[string]any{},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Resource not found.",
		},
		{
			name:        "forbidden default message",
			status:      http.StatusForbidden,
			body:        map[string]any{},
			wantStatus:  http.StatusForbidden,
			wantMessage: "You are not allowed to perform this action.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, func(e *echo.Echo) {
				e.POST("/api/orders", func(c echo.Context) error {
					return c.JSON(tt.status, tt.body)
				})
			})

			client := NewClient(srv.URL, securestore.NewMemoryStore(), 5*time.Second)
			err := client.Post(context.Background(), "/orders", map[string]any{}, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestClient_ConnectionRefusedIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(srv.URL, securestore.NewMemoryStore(), time.Second)
	err := client.Get(context.Background(), "/meals", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Zero(t, StatusOf(err))
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(e *echo.Echo) {
		e.GET("/api/meals", func(c echo.Context) error {
			select {
			case <-time.After(2 * time.Second):
			case <-c.Request().Context().Done():
			}
			return c.NoContent(http.StatusOK)
		})
	})

	client := NewClient(srv.URL, securestore.NewMemoryStore(), 50*time.Millisecond)
	err := client.Get(context.Background(), "/meals", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestAPIError_FieldMessagesWithoutFields(t *testing.T) {
	t.Parallel()

	apiErr := &APIError{Status: 422, Message: "Validation failed."}
	assert.Equal(t, "Validation failed.", apiErr.FieldMessages())
}
