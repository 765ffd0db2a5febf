package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/internal/services"
	"barpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// GetMenu returns the full menu tree: groups, categories, active items.
func (h *CatalogHandler) GetMenu(c *gin.Context) {
	menu, err := h.catalogService.GetMenu()
	if err != nil {
		utils.LogError(err, "GetMenu: Error from catalogService.GetMenu")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch menu.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, menu)
}

// GetItems lists active catalog items, optionally filtered by category_id.
func (h *CatalogHandler) GetItems(c *gin.Context) {
	var categoryID *int64
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		id, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid category_id format.", err.Error()))
			return
		}
		categoryID = &id
	}

	items, err := h.catalogService.GetActiveItems(categoryID)
	if err != nil {
		utils.LogError(err, "GetItems: Error from catalogService.GetActiveItems")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch catalog items.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItemByID fetches a single catalog item.
func (h *CatalogHandler) GetItemByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item ID format.", err.Error()))
		return
	}

	item, err := h.catalogService.GetItemByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog item not found.", ""))
		} else {
			utils.LogError(err, "GetItemByID: Error from catalogService.GetItemByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch catalog item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMenuGroup adds a top-level menu group. Manager only.
func (h *CatalogHandler) CreateMenuGroup(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	group, err := h.catalogService.CreateMenuGroup(req.Name, req.SortOrder)
	if err != nil {
		h.respondCatalogError(c, err, "CreateMenuGroup")
		return
	}
	c.JSON(http.StatusCreated, group)
}

// CreateCategory adds a category under a menu group. Manager only.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var category models.MenuCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	created, err := h.catalogService.CreateCategory(&category)
	if err != nil {
		h.respondCatalogError(c, err, "CreateCategory")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CreateItem adds a catalog item. Manager only.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.catalogService.CreateItem(req)
	if err != nil {
		h.respondCatalogError(c, err, "CreateItem")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem replaces a catalog item's editable fields. Manager only.
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item ID format.", err.Error()))
		return
	}

	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ID = id

	item, err := h.catalogService.UpdateItem(req)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog item not found.", ""))
			return
		}
		h.respondCatalogError(c, err, "UpdateItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeactivateItem removes an item from the menu without deleting its sales
// history. Manager only.
func (h *CatalogHandler) DeactivateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item ID format.", err.Error()))
		return
	}

	if err := h.catalogService.DeactivateItem(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog item not found.", ""))
		} else {
			utils.LogError(err, "DeactivateItem: Error from catalogService.DeactivateItem")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to deactivate catalog item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog item deactivated"})
}

// RestockItem sets an item's stock count. Manager only.
func (h *CatalogHandler) RestockItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item ID format.", err.Error()))
		return
	}

	var req struct {
		StockCount int `json:"stock_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.catalogService.RestockItem(id, req.StockCount); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog item not found.", ""))
		} else if errors.Is(err, services.ErrInvalidCatalogItem) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "RestockItem: Error from catalogService.RestockItem")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to restock catalog item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated"})
}

func (h *CatalogHandler) respondCatalogError(c *gin.Context, err error, op string) {
	if errors.Is(err, services.ErrInvalidCatalogItem) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	} else if errors.Is(err, services.ErrDuplicateName) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	} else {
		utils.LogError(err, op+": Error from catalogService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Catalog operation failed.", "Internal error"))
	}
}
