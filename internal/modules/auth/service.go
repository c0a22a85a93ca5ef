package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"adservice/internal/logging"
	"adservice/internal/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type tokenIssuer interface {
	GenerateToken(subject, role string) (string, error)
}

// Service authenticates the single configured admin account.
type Service struct {
	username     string
	passwordHash []byte
	tokens       tokenIssuer
	expiresIn    int64
}

func NewService(username, passwordHash string, tokens *jwt.Service) *Service {
	return &Service{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		expiresIn:    int64(tokens.TTL().Seconds()),
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always run bcrypt so response time does not reveal whether the username matched.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		logging.Ctx(ctx).Warn().Str("username", username).Msg("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(s.username, jwt.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logging.Ctx(ctx).Info().Str("username", username).Msg("admin logged in")
	return &LoginResult{Token: token, ExpiresIn: s.expiresIn}, nil
}
