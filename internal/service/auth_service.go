package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/auth"
	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/domain"
	"github.com/smartcommunity/portal/internal/repository"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

// AuthService coordinates registration, login and account approval.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// RegisterInput is the self-registration form of a resident.
type RegisterInput struct {
	FullName    string
	Email       string
	Phone       string
	Block       string
	HouseNumber string
	Password    string
}

// AccountInput is an administrator-created account.
type AccountInput struct {
	RegisterInput
	Role domain.Role
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Register creates a resident account awaiting administrator approval.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := s.newUser(in, domain.RoleResident, domain.UserStatusPending)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("resident registered", zap.String("user_id", user.ID))
	return user, nil
}

// CreateAccount lets an administrator add an approved account of any role.
func (s *AuthService) CreateAccount(ctx context.Context, in AccountInput) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
	}
	user, err := s.newUser(in.RegisterInput, in.Role, domain.UserStatusApproved)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureBootstrapAdmin creates the configured administrator unless that email already exists.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, strings.ToLower(cfg.AdminEmail)); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	_, err := s.CreateAccount(ctx, AccountInput{
		RegisterInput: RegisterInput{FullName: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		Role:          domain.RoleAdmin,
	})
	return err
}

// Login authenticates by email and password. Pending and denied accounts are refused.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	switch user.Status {
	case domain.UserStatusPending:
		return nil, apperrors.NewForbidden("Your account is awaiting administrator approval")
	case domain.UserStatusDenied:
		reason := ""
		if user.DenialReason != nil {
			reason = *user.DenialReason
		}
		return nil, apperrors.NewAccountDenied(reason)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// Me returns the profile of the given user.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account for the administrator view.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Approve activates a pending or previously denied account.
func (s *AuthService) Approve(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = domain.UserStatusApproved
	user.DenialReason = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("account approved", zap.String("user_id", user.ID))
	return user, nil
}

// Deny rejects an account; the reason is shown on the next login attempt.
func (s *AuthService) Deny(ctx context.Context, actor *domain.User, id, reason string) (*domain.User, error) {
	if actor != nil && actor.ID == id {
		return nil, apperrors.NewValidationError("administrators cannot deny their own account", nil)
	}
	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = domain.UserStatusDenied
	if reason = strings.TrimSpace(reason); reason != "" {
		user.DenialReason = &reason
	} else {
		user.DenialReason = nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("account denied", zap.String("user_id", user.ID))
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) lookup(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return s.Me(ctx, id)
}

func (s *AuthService) create(ctx context.Context, user *domain.User) error {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		}
		return err
	}
	return nil
}

func (s *AuthService) newUser(in RegisterInput, role domain.Role, status domain.UserStatus) (*domain.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullName == "" {
		return nil, apperrors.NewValidationError("full name is required", map[string]any{"field": "fullName"})
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperrors.NewValidationError("a valid email is required", map[string]any{"field": "email"})
	}
	if role == domain.RoleResident && (strings.TrimSpace(in.Block) == "" || strings.TrimSpace(in.HouseNumber) == "") {
		return nil, apperrors.NewValidationError("block and house number are required for residents", map[string]any{"field": "houseNumber"})
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
		}
		return nil, err
	}

	return &domain.User{
		FullName:     fullName,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Block:        strings.TrimSpace(in.Block),
		HouseNumber:  strings.TrimSpace(in.HouseNumber),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}, nil
}
