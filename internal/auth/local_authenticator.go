package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalAuthenticator validates HS256 tokens issued by the deployment itself.
// The decoded claims carry the tenant identity that scopes every query.
type LocalAuthenticator struct {
	signingKey []byte
}

func NewLocalAuthenticator(signingKey string) (*LocalAuthenticator, error) {
	if signingKey == "" {
		return nil, errors.New("local authentication requires a signing key")
	}
	return &LocalAuthenticator{signingKey: []byte(signingKey)}, nil
}

func (l *LocalAuthenticator) Authenticate(token string) (Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	t, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return l.signingKey, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to authenticate token: %w", err)
	}

	if !t.Valid {
		return Identity{}, errors.New("failed to parse or validate token")
	}

	return l.parseToken(t)
}

func (l *LocalAuthenticator) parseToken(token *jwt.Token) (Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("failed to parse jwt token claims")
	}

	rawTenant, ok := claims["tenant_id"].(string)
	if !ok {
		return Identity{}, errors.New("token carries no tenant_id claim")
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		return Identity{}, fmt.Errorf("token tenant_id is not a uuid: %w", err)
	}

	identity := Identity{
		TenantID: tenantID,
		Token:    token,
	}

	if rawUser, ok := claims["user_id"].(string); ok {
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			return Identity{}, fmt.Errorf("token user_id is not a uuid: %w", err)
		}
		identity.UserID = &userID
	}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}

	return identity, nil
}

func (l *LocalAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if !strings.HasPrefix(accessToken, "Bearer ") {
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		accessToken = accessToken[len("Bearer "):]
		identity, err := l.Authenticate(accessToken)
		if err != nil {
			zap.S().Named("auth").Warnw("authentication failed", "error", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		ctx := NewIdentityContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
