package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"barpos_backend/internal/services"
	"barpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TabHandler holds the tab service.
type TabHandler struct {
	tabService services.TabService
}

// NewTabHandler creates a new TabHandler.
func NewTabHandler(ts services.TabService) *TabHandler {
	return &TabHandler{tabService: ts}
}

// CreateTab opens a new tab.
func (h *TabHandler) CreateTab(c *gin.Context) {
	var req services.CreateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tab, err := h.tabService.CreateTab(req)
	if err != nil {
		utils.LogError(err, "CreateTab: Error from tabService.CreateTab")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create tab.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, tab)
}

// GetTabs lists tabs. By default only open tabs; pass all=true for history.
func (h *TabHandler) GetTabs(c *gin.Context) {
	openOnly := c.Query("all") != "true"

	tabs, err := h.tabService.GetTabs(openOnly)
	if err != nil {
		utils.LogError(err, "GetTabs: Error from tabService.GetTabs")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tabs.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tabs)
}

// GetTabDetail returns a tab with its line items and live totals.
func (h *TabHandler) GetTabDetail(c *gin.Context) {
	tabID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tab ID format.", err.Error()))
		return
	}

	detail, err := h.tabService.GetTabDetail(tabID)
	if err != nil {
		if errors.Is(err, services.ErrTabNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tab not found.", ""))
		} else {
			utils.LogError(err, "GetTabDetail: Error from tabService.GetTabDetail")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tab.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RenameTab updates the customer name on an open tab.
func (h *TabHandler) RenameTab(c *gin.Context) {
	tabID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tab ID format.", err.Error()))
		return
	}

	var req struct {
		CustomerName string `json:"customer_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if utils.IsEmpty(req.CustomerName) {
		utils.RespondValidationFailed(c, "customer_name must not be blank")
		return
	}

	if err := h.tabService.RenameTab(tabID, req.CustomerName); err != nil {
		if errors.Is(err, services.ErrTabNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tab not found.", ""))
		} else {
			utils.LogError(err, "RenameTab: Error from tabService.RenameTab")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to rename tab.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tab renamed"})
}

// AddItem adds a catalog item to an open tab at the currently resolved price.
func (h *TabHandler) AddItem(c *gin.Context) {
	tabID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tab ID format.", err.Error()))
		return
	}

	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.TabID = tabID

	resp, err := h.tabService.AddItemToTab(req)
	if err != nil {
		if errors.Is(err, services.ErrTabNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tab not found.", ""))
		} else if errors.Is(err, services.ErrTabClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Tab is already closed.", ""))
		} else if errors.Is(err, services.ErrItemNotAvailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog item not found or not active.", err.Error()))
		} else if errors.Is(err, services.ErrOutOfStock) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Item is out of stock.", err.Error()))
		} else {
			utils.LogError(err, "AddItem: Error from tabService.AddItemToTab")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add item to tab.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoveLineItem deletes an unreported line from a tab.
func (h *TabHandler) RemoveLineItem(c *gin.Context) {
	lineItemID, err := strconv.ParseInt(c.Param("lineId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid line item ID format.", err.Error()))
		return
	}

	if err := h.tabService.RemoveLineItem(lineItemID); err != nil {
		if errors.Is(err, services.ErrItemNotAvailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Line item not found or already reported.", ""))
		} else {
			utils.LogError(err, "RemoveLineItem: Error from tabService.RemoveLineItem")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to remove line item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Line item removed"})
}

// UpdateLineItemNote sets the kitchen/bar note on a line item.
func (h *TabHandler) UpdateLineItemNote(c *gin.Context) {
	lineItemID, err := strconv.ParseInt(c.Param("lineId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid line item ID format.", err.Error()))
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.tabService.UpdateLineItemNote(lineItemID, req.Note); err != nil {
		if errors.Is(err, services.ErrItemNotAvailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Line item not found.", ""))
		} else {
			utils.LogError(err, "UpdateLineItemNote: Error from tabService.UpdateLineItemNote")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update note.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note updated"})
}

// SettleTab cashes out a tab and closes it.
func (h *TabHandler) SettleTab(c *gin.Context) {
	tabID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tab ID format.", err.Error()))
		return
	}

	var req services.SettleTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.TabID = tabID

	sale, err := h.tabService.SettleTab(req)
	if err != nil {
		if errors.Is(err, services.ErrTabNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tab not found.", ""))
		} else if errors.Is(err, services.ErrTabClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Tab is already closed.", ""))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "SettleTab: Error from tabService.SettleTab")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to settle tab.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, sale)
}
