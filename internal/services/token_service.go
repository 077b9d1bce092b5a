package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const formTokenTTL = 12 * time.Hour

var ErrInvalidFormToken = errors.New("invalid form token")

// TokenService issues the anti-forgery tokens embedded in every HTML form.
// A token is bound to one browser session ID.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	logger    zerolog.Logger
}

type FormClaims struct {
	jwt.RegisteredClaims
}

func NewTokenService(secretKey []byte, logger zerolog.Logger) *TokenService {
	return &TokenService{
		secretKey: secretKey,
		ttl:       formTokenTTL,
		logger:    logger,
	}
}

func (s *TokenService) GenerateToken(sessionID string) (string, error) {
	now := time.Now()
	claims := &FormClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating form token")
		return "", err
	}
	return tokenString, nil
}

// ValidateToken checks signature, expiry and that the token belongs to
// sessionID.
func (s *TokenService) ValidateToken(tokenString, sessionID string) error {
	claims := &FormClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return errors.Join(ErrInvalidFormToken, err)
	}
	if !token.Valid || sessionID == "" || claims.Subject != sessionID {
		return ErrInvalidFormToken
	}
	return nil
}
