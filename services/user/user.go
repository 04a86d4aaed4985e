package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"homeservice/database"
	userRepo "homeservice/database/repository/user"
	"homeservice/models"
	"homeservice/services/booking"
	"homeservice/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts and issues bearer tokens.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	SaveAddress(ctx context.Context, userID string, address models.Address) (*models.User, error)
	SaveFCMToken(ctx context.Context, userID, token string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Logger   *zap.Logger
	TokenTTL time.Duration
	Now      func() time.Time
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a customer or provider account. Admins are seeded, never self-registered.
func (s *DefaultUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleProvider {
		return nil, utils.NewValidationError("role", "role must be customer or provider")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, utils.NewValidationError("email", "email is required")
	}
	if len(req.Password) < 8 {
		return nil, utils.NewValidationError("password", "password must be at least 8")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternalError("failed to hash password", err)
	}

	now := s.now()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.NewConflictError(utils.CodeDuplicateAccount, "An account with this email already exists")
		}
		return nil, utils.NewInternalError("failed to create account", err)
	}

	s.Logger.Info("Account registered", zap.String("userID", u.ID), zap.String("role", string(u.Role)))
	return s.issue(u)
}

func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewUnauthorizedError("Invalid email or password")
		}
		return nil, utils.NewInternalError("failed to load account", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}
	return s.issue(u)
}

func (s *DefaultUserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.GetByID(ctx, userID)
}

func (s *DefaultUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("USER_NOT_FOUND", "Account not found")
		}
		return nil, utils.NewInternalError("failed to load account", err)
	}
	return u, nil
}

// SaveAddress stores the address used by "use saved address" at booking time.
func (s *DefaultUserService) SaveAddress(ctx context.Context, userID string, address models.Address) (*models.User, error) {
	normalized := booking.NormalizeAddress(address)
	if err := booking.ValidateAddress(normalized); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateAddress(ctx, userID, normalized); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("USER_NOT_FOUND", "Account not found")
		}
		return nil, utils.NewInternalError("failed to save address", err)
	}
	return s.GetByID(ctx, userID)
}

func (s *DefaultUserService) SaveFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.NewValidationError("token", "token is required")
	}
	if err := s.Repo.UpdateFCMToken(ctx, userID, token); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NewNotFoundError("USER_NOT_FOUND", "Account not found")
		}
		return utils.NewInternalError("failed to save device token", err)
	}
	return nil
}

func (s *DefaultUserService) issue(u *models.User) (*models.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	token, err := utils.GenerateToken(u.ID, string(u.Role), ttl)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue token", err)
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}
