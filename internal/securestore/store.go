package securestore

import "context"

// Fixed keys used by the session layer. No other key is ever written.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// Store is a best-effort key-value store. Implementations never surface
// failures of the underlying medium: Get returns "" when the key is absent
// or the medium fails, Set and Delete degrade to no-ops. Callers that need
// a guarantee must not use this interface.
type Store interface {
	Get(ctx context.Context, key string) string
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
}
