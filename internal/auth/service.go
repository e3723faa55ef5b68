package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/orgdesk/orgdesk/internal/shared"
)

var fold = cases.Fold()

// Service implements credential checks and the login/logout flow.
type Service struct {
	repo   RepositoryPort
	tokens *TokenStore
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// HashPassword hashes a plaintext password for storage.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies credentials. A missing account, a wrong password and
// an inactive account all collapse into the same error so login probes learn
// nothing.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (Account, error) {
	identifier = fold.String(strings.TrimSpace(identifier))
	account, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Account{}, shared.ErrInvalidCredentials
		}
		return Account{}, err
	}
	if !account.IsActive {
		return Account{}, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, identifier, password string) (string, error) {
	account, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, account.ID)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
