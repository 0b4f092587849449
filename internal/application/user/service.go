package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trade-hub/trade-hub/internal/domain/trade"
	domain "github.com/trade-hub/trade-hub/internal/domain/user"
)

// Service handles member management.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// CreateInput defines user creation input.
type CreateInput struct {
	Username string
	Password string
	Role     domain.Role
	Status   domain.Status
}

// UpdateInput defines user update input.
type UpdateInput struct {
	Username *string
	Role     *domain.Role
	Status   *domain.Status
}

// Register creates a self-service member account.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.CreateUser(ctx, CreateInput{
		Username: username,
		Password: password,
		Role:     domain.RoleMember,
	})
}

func (s *Service) CreateUser(ctx context.Context, input CreateInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
	}
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
	}
	if input.Status == "" {
		input.Status = domain.StatusActive
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username already taken", trade.ErrConflict)
	}

	hash, err := domain.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       input.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("user created")
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", trade.ErrNotFound, userID)
	}
	if input.Username != nil {
		username := domain.NormalizeUsername(*input.Username)
		if err := domain.ValidateUsername(username); err != nil {
			return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
		}
		u.Username = username
	}
	if input.Role != nil {
		if err := domain.ValidateRole(*input.Role); err != nil {
			return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
		}
		u.Role = *input.Role
	}
	if input.Status != nil {
		u.Status = *input.Status
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: user %s", trade.ErrNotFound, userID)
	}
	if err := domain.ValidatePassword(password, u.Username); err != nil {
		return fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
	}
	hash, err := domain.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", trade.ErrNotFound, userID)
	}
	return u, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, domain.NormalizeUsername(username))
}

func (s *Service) ListUsers(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	return s.repo.List(ctx, filter, limit, offset)
}
