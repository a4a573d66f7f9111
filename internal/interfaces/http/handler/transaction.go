package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/henrytires/backend/internal/application/inventory"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
)

// parseDateTime parses a datetime query parameter in RFC3339 or plain date
// format
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// TransactionHandler handles inventory transaction and stock endpoints
type TransactionHandler struct {
	BaseHandler
	service *inventoryapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *inventoryapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RegisterRoutes registers inventory routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/inventory/transactions")
	{
		transactions.POST("/in", h.CreateIn)
		transactions.POST("/out", h.CreateOut)
		transactions.POST("/adjust", h.CreateAdjust)
		transactions.POST("/:id/commit", h.Commit)
		transactions.POST("/:id/cancel", h.Cancel)
		transactions.GET("/:id", h.GetByID)
		transactions.GET("", h.List)
	}

	stock := rg.Group("/inventory")
	{
		stock.GET("/summaries", h.ListSummaries)
		stock.GET("/summaries/:itemCode", h.GetSummary)
		stock.GET("/availability", h.CheckAvailability)
	}
}

// CreateIn creates a draft inbound transaction
func (h *TransactionHandler) CreateIn(c *gin.Context) {
	h.create(c, h.service.CreateIn)
}

// CreateOut creates a draft outbound transaction
func (h *TransactionHandler) CreateOut(c *gin.Context) {
	h.create(c, h.service.CreateOut)
}

// CreateAdjust creates a draft adjustment transaction
func (h *TransactionHandler) CreateAdjust(c *gin.Context) {
	h.create(c, h.service.CreateAdjust)
}

func (h *TransactionHandler) create(
	c *gin.Context,
	createFn func(ctx context.Context, actor identity.Actor, req inventoryapp.CreateTransactionRequest) (*inventoryapp.TransactionResponse, error),
) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req inventoryapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := createFn(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Commit commits a draft transaction and applies it to stock
func (h *TransactionHandler) Commit(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.service.Commit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels a draft transaction
func (h *TransactionHandler) Cancel(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID returns a single transaction
func (h *TransactionHandler) GetByID(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns transactions scoped to the caller's branch access
func (h *TransactionHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	filter := inventory.TransactionFilter{}
	if v := c.Query("type"); v != "" {
		txType := inventory.TransactionType(v)
		if !txType.IsValid() {
			h.BadRequest(c, "Invalid transaction type: "+v)
			return
		}
		filter.Type = &txType
	}
	if v := c.Query("status"); v != "" {
		status := inventory.TransactionStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid transaction status: "+v)
			return
		}
		filter.Status = &status
	}
	if v := c.Query("from"); v != "" {
		t, err := parseDateTime(v)
		if err != nil {
			h.BadRequest(c, "Invalid from date: "+v)
			return
		}
		filter.FromUtc = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDateTime(v)
		if err != nil {
			h.BadRequest(c, "Invalid to date: "+v)
			return
		}
		filter.ToUtc = &t
	}

	resp, err := h.service.GetByBranch(c.Request.Context(), actor, c.Query("branch_code"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListSummaries returns stock summaries scoped to the caller's branch access
func (h *TransactionHandler) ListSummaries(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	resp, err := h.service.GetSummaries(c.Request.Context(), actor, c.Query("branch_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetSummary returns the stock summary for one item at one branch
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	resp, err := h.service.GetSummary(c.Request.Context(), actor, c.Query("branch_code"), c.Param("itemCode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CheckAvailability reports whether the requested quantity is available
func (h *TransactionHandler) CheckAvailability(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	itemCode := c.Query("item_code")
	if itemCode == "" {
		h.BadRequest(c, "item_code is required")
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}

	resp, err := h.service.CheckAvailability(
		c.Request.Context(), actor, c.Query("branch_code"), itemCode, c.Query("condition"), quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
