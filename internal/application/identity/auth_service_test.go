package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/application/apptest"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/infrastructure/auth"
	"github.com/henrytires/backend/internal/infrastructure/config"
)

type authFixture struct {
	service    *AuthService
	userRepo   *apptest.UserRepo
	jwtService *auth.JWTService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := shared.FixedClock{Instant: now}

	userRepo := apptest.NewUserRepo()
	branchRepo := apptest.NewBranchRepo()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-auth-service",
		Expiration: time.Hour,
		Issuer:     "tires-test",
	})
	service := NewAuthService(userRepo, branchRepo, jwtService, clock, zap.NewNop())

	branch, err := catalog.NewBranch("W", "West Warehouse", "seed", now)
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, branch))

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	admin, err := identity.NewUser("boss", hash, identity.RoleAdmin, "seed", clock)
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, admin))

	return &authFixture{service: service, userRepo: userRepo, jwtService: jwtService}
}

func adminActor() identity.Actor {
	return identity.Actor{Username: "boss", Role: identity.RoleAdmin}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a token carrying the identity", func(t *testing.T) {
		f := newAuthFixture(t)

		result, err := f.service.Login(ctx, LoginInput{Username: "boss", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "boss", result.Username)
		assert.Equal(t, "Admin", result.Role)

		claims, err := f.jwtService.ValidateToken(result.Token)
		require.NoError(t, err)
		actor, err := claims.Actor()
		require.NoError(t, err)
		assert.True(t, actor.IsAdmin())
	})

	t.Run("wrong password and unknown user fail identically", func(t *testing.T) {
		f := newAuthFixture(t)

		_, errWrong := f.service.Login(ctx, LoginInput{Username: "boss", Password: "nope"})
		_, errUnknown := f.service.Login(ctx, LoginInput{Username: "ghost", Password: "nope"})

		require.Error(t, errWrong)
		require.Error(t, errUnknown)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(errWrong))
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		f := newAuthFixture(t)

		user, err := f.userRepo.FindByUsername(ctx, "boss")
		require.NoError(t, err)
		user.IsActive = false
		require.NoError(t, f.userRepo.Save(ctx, user))

		_, err = f.service.Login(ctx, LoginInput{Username: "boss", Password: "correct-horse"})
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("admin registers a seller with a branch", func(t *testing.T) {
		f := newAuthFixture(t)

		user, err := f.service.RegisterUser(ctx, adminActor(), RegisterUserInput{
			Username:   "maria",
			Password:   "maria-password",
			Role:       "Seller",
			BranchCode: strPtr("W"),
		})
		require.NoError(t, err)
		assert.Equal(t, identity.RoleSeller, user.Role)
		require.NotNil(t, user.BranchCode)
		assert.Equal(t, "W", *user.BranchCode)

		result, err := f.service.Login(ctx, LoginInput{Username: "maria", Password: "maria-password"})
		require.NoError(t, err)
		assert.Equal(t, "Seller", result.Role)
	})

	t.Run("non-admin cannot register users", func(t *testing.T) {
		f := newAuthFixture(t)

		seller := identity.Actor{Username: "maria", Role: identity.RoleSeller, BranchCode: strPtr("W")}
		_, err := f.service.RegisterUser(ctx, seller, RegisterUserInput{
			Username: "eve", Password: "eve-password", Role: "Seller", BranchCode: strPtr("W"),
		})
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})

	t.Run("non-admin role requires a branch", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.RegisterUser(ctx, adminActor(), RegisterUserInput{
			Username: "maria", Password: "maria-password", Role: "Seller",
		})
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("unknown branch is rejected", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.RegisterUser(ctx, adminActor(), RegisterUserInput{
			Username: "maria", Password: "maria-password", Role: "Seller", BranchCode: strPtr("Z"),
		})
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.RegisterUser(ctx, adminActor(), RegisterUserInput{
			Username: "boss", Password: "another-password", Role: "Admin",
		})
		assert.Equal(t, shared.CodeBusinessRule, shared.CodeOf(err))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.RegisterUser(ctx, adminActor(), RegisterUserInput{
			Username: "maria", Password: "short", Role: "Seller", BranchCode: strPtr("W"),
		})
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func strPtr(s string) *string { return &s }
