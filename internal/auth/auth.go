package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GhadiSaab/savedfeast-client/internal/api"
	"github.com/GhadiSaab/savedfeast-client/internal/events"
	"github.com/GhadiSaab/savedfeast-client/internal/logging"
	"github.com/GhadiSaab/savedfeast-client/internal/models"
	"github.com/GhadiSaab/savedfeast-client/internal/retry"
	"github.com/GhadiSaab/savedfeast-client/internal/securestore"
)

// Service owns the session lifecycle: it is the only writer of the token
// and cached-user keys. The one subtle rule lives in CurrentUser: transport
// failures keep the cached session alive, a 401 destroys it.
type Service struct {
	API   *api.Client
	Store securestore.Store
	Sink  events.Sink
	Retry retry.Policy

	LogoutTimeout      time.Duration
	CurrentUserTimeout time.Duration
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterData struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Phone                string `json:"phone,omitempty"`
}

type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

type PasswordChange struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*models.User, error) {
	resp, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*sessionResponse, error) {
		var out sessionResponse
		if err := s.API.Post(ctx, "/login", creds, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	s.persistSession(ctx, resp)
	s.Sink.Publish(ctx, "user_logged_in", map[string]any{"email": creds.Email})
	return resp.User, nil
}

func (s *Service) Register(ctx context.Context, data RegisterData) (*models.User, error) {
	resp, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*sessionResponse, error) {
		var out sessionResponse
		if err := s.API.Post(ctx, "/register", data, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	s.persistSession(ctx, resp)
	s.Sink.Publish(ctx, "user_registered", map[string]any{"email": data.Email})
	return resp.User, nil
}

// Logout invalidates the server-side session on a best-effort basis and
// always purges local state, even when the call fails or times out.
func (s *Service) Logout(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	callCtx, cancel := context.WithTimeout(ctx, s.logoutTimeout())
	defer cancel()
	if err := s.API.Post(callCtx, "/logout", nil, nil); err != nil {
		l.Warn("server logout failed, clearing local session anyway", "error", err)
	}

	s.purge(ctx)
	s.Sink.Publish(ctx, "user_logged_out", nil)
}

// CurrentUser returns nil without touching the network when no token is
// stored. With a token it prefers a fresh fetch; on a transport failure it
// falls back to the cached user so flaky connectivity does not log the user
// out, and on a 401 it purges the session and returns nil.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.current_user")

	if s.Store.Get(ctx, securestore.KeyAuthToken) == "" {
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.currentUserTimeout())
	defer cancel()

	var out userResponse
	err := s.API.Get(callCtx, "/user", nil, &out)
	if err == nil {
		if data, merr := json.Marshal(out.User); merr == nil {
			s.Store.Set(ctx, securestore.KeyUserData, string(data))
		}
		return out.User, nil
	}

	if api.StatusOf(err) == http.StatusUnauthorized {
		l.Info("session rejected by server, purging")
		s.purge(ctx)
		return nil, nil
	}

	if api.IsNetworkError(err) {
		l.Warn("fetch failed, using cached user", "error", err)
	} else {
		l.Warn("unexpected fetch failure, using cached user", "error", err)
	}
	if cached := s.cachedUser(ctx); cached != nil {
		return cached, nil
	}
	return nil, err
}

// IsAuthenticated reports token presence. When the token is a JWT its exp
// claim is also checked locally, without verifying the signature; the
// server remains the authority on validity.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	token := s.Store.Get(ctx, securestore.KeyAuthToken)
	if token == "" {
		return false
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return false
	}
	return true
}

func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	resp, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*userResponse, error) {
		var out userResponse
		if err := s.API.Post(ctx, "/user/profile", update, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(resp.User); merr == nil {
		s.Store.Set(ctx, securestore.KeyUserData, string(data))
	}
	return resp.User, nil
}

func (s *Service) ChangePassword(ctx context.Context, change PasswordChange) error {
	_, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.API.Post(ctx, "/user/change-password", change, nil)
	})
	return err
}

func (s *Service) persistSession(ctx context.Context, resp *sessionResponse) {
	s.Store.Set(ctx, securestore.KeyAuthToken, resp.Token)
	if data, err := json.Marshal(resp.User); err == nil {
		s.Store.Set(ctx, securestore.KeyUserData, string(data))
	}
}

func (s *Service) cachedUser(ctx context.Context) *models.User {
	raw := s.Store.Get(ctx, securestore.KeyUserData)
	if raw == "" {
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

func (s *Service) purge(ctx context.Context) {
	s.Store.Delete(ctx, securestore.KeyAuthToken)
	s.Store.Delete(ctx, securestore.KeyUserData)
}

func (s *Service) logoutTimeout() time.Duration {
	if s.LogoutTimeout > 0 {
		return s.LogoutTimeout
	}
	return 5 * time.Second
}

func (s *Service) currentUserTimeout() time.Duration {
	if s.CurrentUserTimeout > 0 {
		return s.CurrentUserTimeout
	}
	return 10 * time.Second
}
