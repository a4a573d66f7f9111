package handler

import (
	"github.com/gin-gonic/gin"

	pricingapp "github.com/henrytires/backend/internal/application/pricing"
)

// PriceHandler handles reference price endpoints
type PriceHandler struct {
	BaseHandler
	service *pricingapp.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(service *pricingapp.PriceService) *PriceHandler {
	return &PriceHandler{service: service}
}

// RegisterRoutes registers price routes
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/prices")
	{
		group.GET("", h.List)
		group.GET("/:itemCode", h.Get)
		group.PUT("", h.Update)
	}
}

// List returns all reference prices
func (h *PriceHandler) List(c *gin.Context) {
	resp, err := h.service.ListPrices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns the reference price for one item
func (h *PriceHandler) Get(c *gin.Context) {
	resp, err := h.service.GetPrice(c.Request.Context(), c.Param("itemCode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update sets a new reference price, keeping the previous value in history
func (h *PriceHandler) Update(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req pricingapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdatePrice(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
