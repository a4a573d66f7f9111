package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/application/apptest"
	identityapp "github.com/henrytires/backend/internal/application/identity"
	inventoryapp "github.com/henrytires/backend/internal/application/inventory"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/infrastructure/auth"
	"github.com/henrytires/backend/internal/infrastructure/config"
	"github.com/henrytires/backend/internal/interfaces/http/middleware"
	"github.com/henrytires/backend/internal/interfaces/http/router"
)

type httpFixture struct {
	engine     *gin.Engine
	jwtService *auth.JWTService
	userRepo   *apptest.UserRepo
	adminToken string
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := shared.FixedClock{Instant: now}

	txRepo := apptest.NewTransactionRepo()
	summaryRepo := apptest.NewSummaryRepo()
	priceRepo := apptest.NewItemPriceRepo()
	itemRepo := apptest.NewItemRepo()
	branchRepo := apptest.NewBranchRepo()
	saleRepo := apptest.NewSaleRepo()
	userRepo := apptest.NewUserRepo()
	sequences := apptest.NewSequences()

	scope := inventoryapp.NewNoOpTransactionScope(txRepo, summaryRepo, saleRepo, sequences)
	txService := inventoryapp.NewTransactionService(
		txRepo, summaryRepo, priceRepo, itemRepo, branchRepo, scope, clock, zap.NewNop())

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-handlers",
		Expiration: time.Hour,
		Issuer:     "tires-test",
	})
	authService := identityapp.NewAuthService(userRepo, branchRepo, jwtService, clock, zap.NewNop())

	branch, err := catalog.NewBranch("W", "West Warehouse", "seed", now)
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, branch))

	tire, err := catalog.NewItem("TIRE-A", "All-season tire", catalog.ClassificationGood, "seed", now)
	require.NoError(t, err)
	require.NoError(t, itemRepo.Save(ctx, tire))

	hash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)
	admin, err := identity.NewUser("boss", hash, identity.RoleAdmin, "seed", clock)
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, admin))

	adminToken, _, err := jwtService.GenerateToken(admin)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Auth(jwtService))
	r.Register(NewTransactionHandler(txService))
	r.Register(NewAuthHandler(authService))
	r.Setup()

	return &httpFixture{
		engine:     engine,
		jwtService: jwtService,
		userRepo:   userRepo,
		adminToken: adminToken,
	}
}

func (f *httpFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func inRequest(qty int) map[string]any {
	return map[string]any{
		"branchCode": "W",
		"lines": []map[string]any{
			{"itemCode": "TIRE-A", "condition": "New", "quantity": qty, "unitPrice": "95.00"},
		},
	}
}

func TestTransactionEndpoints(t *testing.T) {
	t.Run("requests without a token are rejected", func(t *testing.T) {
		f := newHTTPFixture(t)
		w := f.do(t, http.MethodPost, "/api/v1/inventory/transactions/in", "", inRequest(4))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inbound create and commit update stock", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/inventory/transactions/in", f.adminToken, inRequest(4))
		require.Equal(t, http.StatusCreated, w.Code)
		created := decodeData(t, w)
		assert.Equal(t, "Draft", created["status"])
		txID := created["id"].(string)

		w = f.do(t, http.MethodPost, "/api/v1/inventory/transactions/"+txID+"/commit", f.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		committed := decodeData(t, w)
		assert.Equal(t, "Committed", committed["status"])

		w = f.do(t, http.MethodGet, "/api/v1/inventory/summaries/TIRE-A?branch_code=W", f.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decodeData(t, w)
		assert.Equal(t, float64(4), summary["newOnHand"])
	})

	t.Run("outbound create without stock maps to 422", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/inventory/transactions/out", f.adminToken, inRequest(2))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "BUSINESS_RULE")
	})

	t.Run("unknown transaction maps to 404", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodGet, "/api/v1/inventory/transactions/0f2b6a9e-7a90-4f63-8f64-3f37f91b9a11", f.adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/inventory/transactions/in", f.adminToken, map[string]any{"branchCode": "W"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "BAD_REQUEST")
	})

	t.Run("availability endpoint reports shortfall", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodGet,
			"/api/v1/inventory/availability?branch_code=W&item_code=TIRE-A&condition=New&quantity=3",
			f.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		availability := decodeData(t, w)
		assert.Equal(t, false, availability["sufficient"])
	})
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("login returns a usable token", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "boss",
			"password": "admin-password",
		})
		require.Equal(t, http.StatusOK, w.Code)
		login := decodeData(t, w)
		token := login["token"].(string)
		require.NotEmpty(t, token)

		w = f.do(t, http.MethodGet, "/api/v1/inventory/summaries?branch_code=W", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password is 403 without account disclosure", func(t *testing.T) {
		f := newHTTPFixture(t)

		wrong := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "boss",
			"password": "nope",
		})
		unknown := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "ghost",
			"password": "nope",
		})
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Contains(t, wrong.Body.String(), "Invalid username or password")
		assert.Contains(t, unknown.Body.String(), "Invalid username or password")
	})

	t.Run("user registration requires admin", func(t *testing.T) {
		f := newHTTPFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/auth/users", f.adminToken, map[string]any{
			"username":   "maria",
			"password":   "maria-password",
			"role":       "Seller",
			"branchCode": "W",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		login := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "maria",
			"password": "maria-password",
		})
		require.Equal(t, http.StatusOK, login.Code)
		sellerToken := decodeData(t, login)["token"].(string)

		w = f.do(t, http.MethodPost, "/api/v1/auth/users", sellerToken, map[string]any{
			"username":   "eve",
			"password":   "eve-password",
			"role":       "Seller",
			"branchCode": "W",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
