package auth

import (
	"net/http"

	"github.com/dandori-work/fcfs-booking/internal/config"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	LocalAuthentication string = "local"
	NoneAuthentication  string = "none"
)

func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	zap.S().Named("auth").Infof("authentication: '%s'", authConfig.AuthenticationType)

	switch authConfig.AuthenticationType {
	case LocalAuthentication:
		return NewLocalAuthenticator(authConfig.LocalSigningKey)
	default:
		return NewNoneAuthenticator()
	}
}
