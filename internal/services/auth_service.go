package services

import (
	"context"
	"errors"
	"net/http"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

var errEmptyAuthResponse = errors.New("auth response carries no user")

type AuthService struct {
	client Doer
	logger zerolog.Logger
}

func NewAuthService(client Doer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		client: client,
		logger: logger,
	}
}

// Me returns the user bound to the current API session.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	return s.authCall(ctx, api.Request{Method: http.MethodGet, Path: "/api/auth/me"})
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	return s.authCall(ctx, api.Request{Method: http.MethodPost, Path: "/api/auth/login", Body: req})
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.authCall(ctx, api.Request{Method: http.MethodPost, Path: "/api/auth/register", Body: req})
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: "/api/auth/logout"}, nil)
}

func (s *AuthService) authCall(ctx context.Context, req api.Request) (*models.User, error) {
	var resp models.AuthResponse
	if err := s.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		s.logger.Error().Str("path", req.Path).Msg("Auth response without user")
		return nil, errEmptyAuthResponse
	}
	return resp.User, nil
}
