package meals

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/GhadiSaab/savedfeast-client/internal/api"
	"github.com/GhadiSaab/savedfeast-client/internal/models"
	"github.com/GhadiSaab/savedfeast-client/internal/retry"
)

// Service wraps the meal catalog and favorites endpoints.
type Service struct {
	API   *api.Client
	Retry retry.Policy
}

type ListParams struct {
	Page       int
	Search     string
	Category   string
	Restaurant string
	MaxPrice   float64
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Restaurant != "" {
		q.Set("restaurant", p.Restaurant)
	}
	if p.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(p.MaxPrice, 'f', 2, 64))
	}
	return q
}

func (s *Service) List(ctx context.Context, params ListParams) (*models.Page[models.Meal], error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.Page[models.Meal], error) {
		var out models.Page[models.Meal]
		if err := s.API.Get(ctx, "/meals", params.query(), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func (s *Service) Filters(ctx context.Context) (*models.MealFilters, error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.MealFilters, error) {
		var out models.MealFilters
		if err := s.API.Get(ctx, "/meals/filters", nil, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Meal, error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) (*models.Meal, error) {
		var out struct {
			Meal *models.Meal `json:"meal"`
		}
		if err := s.API.Get(ctx, fmt.Sprintf("/meals/%d", id), nil, &out); err != nil {
			return nil, err
		}
		return out.Meal, nil
	})
}

// ToggleFavorite flips the favorite flag server-side and returns the new
// state.
func (s *Service) ToggleFavorite(ctx context.Context, id uint) (bool, error) {
	var out struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := s.API.Post(ctx, fmt.Sprintf("/meals/%d/favorite", id), nil, &out); err != nil {
		return false, err
	}
	return out.IsFavorite, nil
}

func (s *Service) Favorites(ctx context.Context) ([]models.Meal, error) {
	return retry.Do(ctx, s.Retry, func(ctx context.Context) ([]models.Meal, error) {
		var out struct {
			Data []models.Meal `json:"data"`
		}
		if err := s.API.Get(ctx, "/meals/favorites", nil, &out); err != nil {
			return nil, err
		}
		return out.Data, nil
	})
}
