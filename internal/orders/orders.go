package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GhadiSaab/savedfeast-client/internal/api"
	"github.com/GhadiSaab/savedfeast-client/internal/cart"
	"github.com/GhadiSaab/savedfeast-client/internal/events"
	"github.com/GhadiSaab/savedfeast-client/internal/models"
	"github.com/GhadiSaab/savedfeast-client/internal/retry"
)

var ErrEmptyCart = errors.New("cart is empty")

// Service wraps the order endpoints. Order status is server-authoritative:
// every method here only requests a transition and returns what the server
// says; nothing in the client computes a status change.
type Service struct {
	API   *api.Client
	Sink  events.Sink
	Retry retry.Policy
}

type CreateItem struct {
	MealID   uint `json:"meal_id"`
	Quantity uint `json:"quantity"`
}

// CreateRequest carries meal ids and quantities only. Prices are left out
// on purpose: the server owns pricing and computes the total.
type CreateRequest struct {
	Items         []CreateItem `json:"items"`
	Notes         string       `json:"notes,omitempty"`
	PaymentMethod string       `json:"payment_method,omitempty"`
}

// RequestFromCart snapshots the cart into a create request.
func RequestFromCart(c *cart.Cart, notes, paymentMethod string) (CreateRequest, error) {
	lines := c.Items()
	if len(lines) == 0 {
		return CreateRequest{}, ErrEmptyCart
	}

	req := CreateRequest{Notes: notes, PaymentMethod: paymentMethod}
	for _, line := range lines {
		req.Items = append(req.Items, CreateItem{MealID: line.ID, Quantity: line.Quantity})
	}
	return req, nil
}

type orderResponse struct {
	Order *models.Order `json:"order"`
}

type codeResponse struct {
	Code      string            `json:"code"`
	ExpiresAt string            `json:"expires_at"`
	Claim     *models.ClaimCode `json:"claim,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var out orderResponse
	if err := s.API.Post(ctx, "/orders", req, &out); err != nil {
		return nil, normalizeCreateError(err)
	}

	s.Sink.Publish(ctx, "order_placed", map[string]any{"order_id": out.Order.ID})
	return out.Order, nil
}

// normalizeCreateError flattens server failures into a single user-facing
// message: all 422 field messages joined, the verbatim server message on
// 400 business-rule rejections, a generic fallback otherwise.
func normalizeCreateError(err error) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Status {
	case http.StatusUnprocessableEntity:
		return errors.New(apiErr.FieldMessages())
	case http.StatusBadRequest:
		return errors.New(apiErr.Message)
	default:
		if apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return errors.New("Failed to place order. Please try again.")
	}
}

func (s *Service) List(ctx context.Context, page int) (*models.Page[models.Order], error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.Page[models.Order], error) {
		query := url.Values{}
		if page > 0 {
			query.Set("page", strconv.Itoa(page))
		}
		var out models.Page[models.Order]
		if err := s.API.Get(ctx, "/me/orders", query, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.Order, error) {
		var out orderResponse
		if err := s.API.Get(ctx, fmt.Sprintf("/orders/%d/details", id), nil, &out); err != nil {
			return nil, err
		}
		return out.Order, nil
	})
}

// Cancel requests the staff-authorized cancellation path.
func (s *Service) Cancel(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, "cancel")
}

// CancelMyOrder requests the customer-authorized cancellation path. The
// server decides which of the two a caller may use; the client keeps them
// separate.
func (s *Service) CancelMyOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, "cancel-my-order")
}

// Complete marks the order complete. Privileged path.
func (s *Service) Complete(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, "complete")
}

func (s *Service) transition(ctx context.Context, id uint, action string) (*models.Order, error) {
	var out orderResponse
	if err := s.API.Post(ctx, fmt.Sprintf("/orders/%d/%s", id, action), nil, &out); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message)
		}
		return nil, err
	}
	return out.Order, nil
}

// GenerateClaimCode asks the server to mint a pickup code for a
// READY_FOR_PICKUP order. The code is opaque; the client only displays it
// and counts down to its expiry.
func (s *Service) GenerateClaimCode(ctx context.Context, id uint) (*models.ClaimCode, error) {
	return s.claimCode(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/claim", id))
}

func (s *Service) ResendPickupCode(ctx context.Context, id uint) (*models.ClaimCode, error) {
	return s.claimCode(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/resend-code", id))
}

func (s *Service) GetPickupCode(ctx context.Context, id uint) (*models.ClaimCode, error) {
	return s.claimCode(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/show-code", id))
}

func (s *Service) claimCode(ctx context.Context, method, path string) (*models.ClaimCode, error) {
	code, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.ClaimCode, error) {
		var out codeResponse
		var err error
		if method == http.MethodGet {
			err = s.API.Get(ctx, path, nil, &out)
		} else {
			err = s.API.Post(ctx, path, nil, &out)
		}
		if err != nil {
			return nil, err
		}
		return out.claim()
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message)
		}
		return nil, err
	}
	return code, nil
}

func (r *codeResponse) claim() (*models.ClaimCode, error) {
	if r.Claim != nil {
		return r.Claim, nil
	}
	code := models.ClaimCode{Code: r.Code}
	if r.ExpiresAt != "" {
		t, err := parseTimestamp(r.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("bad expiry in claim response: %w", err)
		}
		code.ExpiresAt = t
	}
	return &code, nil
}
