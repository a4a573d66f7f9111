package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/henrytires/backend/internal/application/identity"
)

// LoginRequest carries login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	BranchCode *string   `json:"branchCode,omitempty"`
}

// RegisterUserRequest creates a new operator account
type RegisterUserRequest struct {
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required,min=8"`
	Role       string  `json:"role" binding:"required"`
	BranchCode *string `json:"branchCode,omitempty"`
}

// UserResponse mirrors an operator account in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	BranchCode *string `json:"branchCode,omitempty"`
	IsActive   bool    `json:"isActive"`
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	service *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/users", h.RegisterUser)
	}
}

// Login authenticates a user and returns a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), identityapp.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt,
		Username:   result.Username,
		Role:       result.Role,
		BranchCode: result.BranchCode,
	})
}

// RegisterUser creates a new operator account (administrators only)
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.service.RegisterUser(c.Request.Context(), actor, identityapp.RegisterUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		BranchCode: req.BranchCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, UserResponse{
		ID:         user.ID.String(),
		Username:   user.Username,
		Role:       user.Role.String(),
		BranchCode: user.BranchCode,
		IsActive:   user.IsActive,
	})
}
