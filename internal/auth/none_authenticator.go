package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// demo tenant created by the seed command
var defaultTenantID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")

type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

// Authenticator accepts every request as the demo tenant. An X-Tenant-Id
// header overrides the tenant, so cross-tenant behaviour can be exercised
// without issuing tokens.
func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := defaultTenantID
		if raw := r.Header.Get("X-Tenant-Id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "invalid tenant id", http.StatusUnauthorized)
				return
			}
			tenantID = parsed
		}

		identity := Identity{
			TenantID: tenantID,
			Role:     "admin",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"tenant_id": tenantID.String(),
			"role":      "admin",
		})
		token.Raw = "fake-raw-token"
		identity.Token = token

		ctx := NewIdentityContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
