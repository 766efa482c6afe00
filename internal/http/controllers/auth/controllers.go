// Package auth contiene los controllers HTTP de /auth y /users/me.
package auth

import (
	"context"

	svc "github.com/dropDatabas3/authcore/internal/auth"
)

// Service es lo que los controllers necesitan del motor de tokens.
type Service interface {
	Register(ctx context.Context, in svc.RegisterRequest) (*svc.PublicUser, error)
	Login(ctx context.Context, in svc.LoginRequest) (*svc.CodeResult, error)
	Authorize(ctx context.Context, in svc.AuthorizeRequest) (*svc.CodeResult, error)
	Token(ctx context.Context, in svc.TokenRequest) (*svc.TokenResponse, error)
	Logout(ctx context.Context, refreshToken, clientID string) error
	Me(ctx context.Context, userID string) (*svc.PublicUser, error)
}

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Register  *RegisterController
	Login     *LoginController
	Authorize *AuthorizeController
	Token     *TokenController
	Logout    *LogoutController
	Me        *MeController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s Service) *Controllers {
	return &Controllers{
		Register:  NewRegisterController(s),
		Login:     NewLoginController(s),
		Authorize: NewAuthorizeController(s),
		Token:     NewTokenController(s),
		Logout:    NewLogoutController(s),
		Me:        NewMeController(s),
	}
}
