package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/infrastructure/auth"
)

// LoginInput carries login credentials
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	Username   string
	Role       string
	BranchCode *string
}

// RegisterUserInput creates a new operator account. BranchCode is required
// for every role except Admin.
type RegisterUserInput struct {
	Username   string
	Password   string
	Role       string
	BranchCode *string
}

// AuthService handles authentication and account management
type AuthService struct {
	userRepo   identity.UserRepository
	branchRepo catalog.BranchRepository
	jwtService *auth.JWTService
	clock      shared.Clock
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	branchRepo catalog.BranchRepository,
	jwtService *auth.JWTService,
	clock shared.Clock,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		jwtService: jwtService,
		clock:      clock,
		logger:     logger,
	}
}

// Login authenticates a user and issues a token. Unknown usernames and wrong
// passwords produce the same error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown user", zap.String("username", input.Username))
			return nil, shared.NewUnauthorizedError("Invalid username or password")
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", input.Username))
		return nil, shared.NewUnauthorizedError("Account has been deactivated")
	}

	if !auth.VerifyPassword(user.PasswordHash, input.Password) {
		s.logger.Warn("Login attempt with wrong password", zap.String("username", input.Username))
		return nil, shared.NewUnauthorizedError("Invalid username or password")
	}

	token, expiresAt, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.String("username", input.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)

	return &LoginResult{
		Token:      token,
		ExpiresAt:  expiresAt,
		Username:   user.Username,
		Role:       user.Role.String(),
		BranchCode: user.BranchCode,
	}, nil
}

// RegisterUser creates a new operator account. Only administrators may
// register users.
func (s *AuthService) RegisterUser(ctx context.Context, actor identity.Actor, input RegisterUserInput) (*identity.User, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewUnauthorizedError("Only administrators may register users")
	}

	role := identity.Role(input.Role)
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid role: " + input.Role)
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, shared.NewBusinessError("Username " + input.Username + " is already taken")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if len(input.Password) < 8 {
		return nil, shared.NewValidationError("Password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(input.Username, hash, role, actor.Username, s.clock)
	if err != nil {
		return nil, err
	}

	if role != identity.RoleAdmin && input.BranchCode == nil {
		return nil, shared.NewValidationError("Branch code is required for non-administrator users")
	}
	if input.BranchCode != nil {
		branch, err := s.branchRepo.FindByCode(ctx, *input.BranchCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Branch " + *input.BranchCode + " does not exist")
			}
			return nil, err
		}
		user.AssignBranch(branch.ID, branch.Code)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
		zap.String("by", actor.Username),
	)
	return user, nil
}
