package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/tx"
	"shopdesk/pkg/logger"
)

// ServiceConfig tunes the auth service.
type ServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	BcryptCost       int
}

// DefaultServiceConfig returns production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		BcryptCost:       bcrypt.DefaultCost,
	}
}

// Service provides authentication operations.
type Service struct {
	users     UserRepository
	txManager tx.Manager
	jwt       *JWTService
	config    ServiceConfig
}

// NewService creates an auth service.
func NewService(users UserRepository, txManager tx.Manager, jwt *JWTService, config ServiceConfig) *Service {
	return &Service{users: users, txManager: txManager, jwt: jwt, config: config}
}

// RegisterAdmin creates a new shop admin account.
func (s *Service) RegisterAdmin(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(hash), appctx.RoleAdmin)
	user.Name = req.Name
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	logger.Info(ctx, "admin registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// CreateWorker creates a worker account in an admin's shop. The worker has
// no feature permissions until the admin grants them row by row.
func (s *Service) CreateWorker(ctx context.Context, adminID id.ID, req CreateWorkerRequest) (*User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(hash), appctx.RoleWorker)
	user.Name = req.Name
	user.AdminID = &adminID
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenResult, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		// Same message for unknown email and bad password.
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		user.Version++
		_ = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.users.Update(ctx, user)
		})
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	user.Version++
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.users.Update(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(
		user.ID.String(), user.ShopID().String(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &TokenResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
		User:        user,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListWorkers returns the workers of an admin's shop.
func (s *Service) ListWorkers(ctx context.Context, adminID id.ID) ([]User, error) {
	return s.users.ListWorkers(ctx, adminID)
}

// ListAdmins returns all shop admins (super-admin console).
func (s *Service) ListAdmins(ctx context.Context) ([]User, error) {
	return s.users.ListAdmins(ctx)
}
