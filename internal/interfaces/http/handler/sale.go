package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/henrytires/backend/internal/application/sales"
	"github.com/henrytires/backend/internal/domain/sales"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	service *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sales")
	{
		group.POST("", h.Create)
		group.POST("/:id/post", h.Post)
		group.GET("/:id", h.GetByID)
		group.GET("", h.List)
	}
}

// Create creates a draft sale
func (h *SaleHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateSale(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Post posts a draft sale: debits stock for its goods and marks it committed
func (h *SaleHandler) Post(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	resp, err := h.service.PostSale(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID returns a single sale
func (h *SaleHandler) GetByID(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns sales scoped to the caller's branch access
func (h *SaleHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	filter := sales.SaleFilter{}
	if v := c.Query("status"); v != "" {
		status := sales.SaleStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid sale status: "+v)
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
