package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"membership-service/internal/account"
	"membership-service/internal/metrics"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = HashPassword("membership-service-dummy-password")

type Service struct {
	accounts account.Repository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(accounts account.Repository, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		metrics:  m,
		logger:   logger,
	}
}

// Register creates a member account. A duplicate email returns
// account.ErrEmailExists.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*account.User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.Create(ctx, req.toUser(hash))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAccountRegistered(ctx)
	s.logger.InfoContext(ctx, "account created", "id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate returns the account for email when password matches.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*account.User, error) {
	user, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			VerifyPassword(password, dummyHash)
			s.metrics.RecordLogin(ctx, "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.metrics.RecordLogin(ctx, "failure")
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(ctx, "success")
	return user, nil
}

// Links returns the capability flags and channels for userID.
func (s *Service) Links(ctx context.Context, userID int64) (account.Links, error) {
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return account.Links{}, err
	}
	return user.Links(), nil
}
