package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type tokenKeyType struct{}

var (
	tokenKey tokenKeyType
)

// Identity is the authenticated caller. Every request handler resolves one
// before touching storage; the tenant id scopes all queries downstream.
type Identity struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	Role     string
	Token    *jwt.Token
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(tokenKey)
	if val == nil {
		return Identity{}, false
	}
	return val.(Identity), true
}

func MustHaveIdentity(ctx context.Context) Identity {
	identity, found := IdentityFromContext(ctx)
	if !found {
		zap.S().Named("auth").Panic("failed to find identity in context")
	}
	return identity
}

func NewIdentityContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, tokenKey, identity)
}
