package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"barpos_backend/internal/repositories"
	"barpos_backend/internal/services"
	"barpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the z-report service.
type ReportHandler struct {
	zReportService services.ZReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(zs services.ZReportService) *ReportHandler {
	return &ReportHandler{zReportService: zs}
}

// RunZReport closes the shift: it snapshots every unreported closed-tab line,
// persists the report, and claims those lines. Manager only. A second call
// with nothing left in the drawer returns 409.
func (h *ReportHandler) RunZReport(c *gin.Context) {
	managerID, exists := c.Get("userID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID"))
		return
	}
	managerIDInt, ok := managerID.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Invalid user ID in token.", ""))
		return
	}

	result, err := h.zReportService.RunFinalZReport(c.Request.Context(), managerIDInt)
	if err != nil {
		if errors.Is(err, services.ErrNothingToReport) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Drawer is already empty.", ""))
		} else {
			utils.LogError(err, "RunZReport: Error from zReportService.RunFinalZReport")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to run z-report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

// PreviewDrawer shows what the next z-report would contain, without
// claiming anything.
func (h *ReportHandler) PreviewDrawer(c *gin.Context) {
	preview, err := h.zReportService.PreviewDrawer()
	if err != nil {
		utils.LogError(err, "PreviewDrawer: Error from zReportService.PreviewDrawer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to preview drawer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, preview)
}

// GetReports lists past shift reports, newest first.
func (h *ReportHandler) GetReports(c *gin.Context) {
	reports, err := h.zReportService.GetReports()
	if err != nil {
		utils.LogError(err, "GetReports: Error from zReportService.GetReports")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reports.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetReportByID fetches one shift report with its stored breakdown.
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report ID format.", err.Error()))
		return
	}

	report, err := h.zReportService.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Report not found.", ""))
		} else {
			utils.LogError(err, "GetReportByID: Error from zReportService.GetReportByID for report ID "+utils.Int64ToStr(reportID))
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}
