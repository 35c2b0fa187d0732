package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/domain"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// Auth texts
const (
	MsgAuthFailed   = "An error occurred. Please try again."
	MsgNetworkError = "Network error. Please try again later."
	MsgAuthMissing  = "Please fill all the fields"
)

// AuthAPI is the part of the remote client used for sign-up and sign-in
type AuthAPI interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
}

// AuthService exchanges credentials for a bearer token. The token is
// returned to the caller, which stores it in the session cookie.
type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)
	Login(ctx context.Context, req domain.LoginRequest) (string, error)
}

type authService struct {
	api AuthAPI
	log zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(api AuthAPI) AuthService {
	return &authService{api: api, log: pkglogger.WithComponent("auth")}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return "", &ValidationError{Message: MsgAuthMissing}
	}
	resp, err := s.api.Register(ctx, req)
	return s.token(resp, err, "register")
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return "", &ValidationError{Message: MsgAuthMissing}
	}
	resp, err := s.api.Login(ctx, req)
	return s.token(resp, err, "login")
}

// token maps the auth reply to a token or a user-facing ValidationError
func (s *authService) token(resp domain.AuthResponse, err error, op string) (string, error) {
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("auth request failed")
		return "", &ValidationError{Message: MsgNetworkError}
	}
	if resp.Token == "" {
		return "", &ValidationError{Message: orDefault(resp.Message, MsgAuthFailed)}
	}
	return resp.Token, nil
}
