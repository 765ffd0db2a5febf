package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"barpos_backend/internal/services"
	"barpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TimeClockHandler holds the time clock service.
type TimeClockHandler struct {
	clockService services.TimeClockService
}

// NewTimeClockHandler creates a new TimeClockHandler.
func NewTimeClockHandler(cs services.TimeClockService) *TimeClockHandler {
	return &TimeClockHandler{clockService: cs}
}

// Punch records a time clock event for the authenticated user.
func (h *TimeClockHandler) Punch(c *gin.Context) {
	var req services.PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	entry, err := h.clockService.Punch(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPunch) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "Punch: Error from clockService.Punch")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record punch.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetPunches lists a user's time clock history.
func (h *TimeClockHandler) GetPunches(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user ID format.", err.Error()))
		return
	}

	entries, err := h.clockService.GetPunches(userID)
	if err != nil {
		utils.LogError(err, "GetPunches: Error from clockService.GetPunches")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch punches.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

// LogTip records a declared tip.
func (h *TimeClockHandler) LogTip(c *gin.Context) {
	var req services.LogTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tip, err := h.clockService.LogTip(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTip) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "LogTip: Error from clockService.LogTip")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to log tip.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, tip)
}

// GetTips lists a user's declared tips.
func (h *TimeClockHandler) GetTips(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user ID format.", err.Error()))
		return
	}

	tips, err := h.clockService.GetTips(userID)
	if err != nil {
		utils.LogError(err, "GetTips: Error from clockService.GetTips")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tips.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tips)
}

// GetTipSummary returns a user's tip total next to the house total.
func (h *TimeClockHandler) GetTipSummary(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user ID format.", err.Error()))
		return
	}

	summary, err := h.clockService.GetTipSummary(userID)
	if err != nil {
		utils.LogError(err, "GetTipSummary: Error from clockService.GetTipSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tip summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}
