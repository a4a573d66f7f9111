package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/henrytires/backend/internal/application/catalog"
	"github.com/henrytires/backend/internal/domain/catalog"
)

// ItemResponse mirrors a catalog item in API responses
type ItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	ItemCode       string     `json:"itemCode"`
	Description    string     `json:"description"`
	Classification string     `json:"classification"`
	Notes          string     `json:"notes,omitempty"`
	IsActive       bool       `json:"isActive"`
	IsDeleted      bool       `json:"isDeleted"`
	DeletedAtUtc   *time.Time `json:"deletedAtUtc,omitempty"`
	CreatedAtUtc   time.Time  `json:"createdAtUtc"`
}

// BranchResponse mirrors a branch in API responses
type BranchResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"isActive"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

func toItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:             item.ID,
		ItemCode:       item.ItemCode,
		Description:    item.Description,
		Classification: string(item.Classification),
		Notes:          item.Notes,
		IsActive:       item.IsActive,
		IsDeleted:      item.IsDeleted,
		DeletedAtUtc:   item.DeletedAtUtc,
		CreatedAtUtc:   item.CreatedAtUtc,
	}
}

func toBranchResponse(branch *catalog.Branch) BranchResponse {
	return BranchResponse{
		ID:           branch.ID,
		Code:         branch.Code,
		Name:         branch.Name,
		IsActive:     branch.IsActive,
		CreatedAtUtc: branch.CreatedAtUtc,
	}
}

// CatalogHandler handles item and branch endpoints
type CatalogHandler struct {
	BaseHandler
	service *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.POST("", h.CreateItem)
		items.DELETE("/:id", h.DeleteItem)
		items.GET("/:itemCode", h.GetItem)
		items.GET("", h.ListItems)
	}

	branches := rg.Group("/branches")
	{
		branches.POST("", h.CreateBranch)
		branches.GET("", h.ListBranches)
	}
}

// CreateItem creates a catalog item
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toItemResponse(item))
}

// DeleteItem soft-deletes a catalog item
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetItem returns a single catalog item by code
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.service.GetItem(c.Request.Context(), c.Param("itemCode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toItemResponse(item))
}

// ListItems returns catalog items, optionally including soft-deleted ones
func (h *CatalogHandler) ListItems(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.DefaultQuery("include_deleted", "false"))

	items, err := h.service.ListItems(c.Request.Context(), includeDeleted)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]ItemResponse, len(items))
	for i, item := range items {
		resp[i] = toItemResponse(item)
	}
	h.Success(c, resp)
}

// CreateBranch creates a branch
func (h *CatalogHandler) CreateBranch(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.InternalError(c, "Authentication context missing")
		return
	}

	var req catalogapp.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	branch, err := h.service.CreateBranch(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBranchResponse(branch))
}

// ListBranches returns all branches
func (h *CatalogHandler) ListBranches(c *gin.Context) {
	branches, err := h.service.ListBranches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]BranchResponse, len(branches))
	for i, branch := range branches {
		resp[i] = toBranchResponse(branch)
	}
	h.Success(c, resp)
}
