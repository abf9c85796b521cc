package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/reports"
)

// ListReports returns the organizer's reports, newest first.
func (h *Handler) ListReports(c *gin.Context) {
	organizerID := c.Param("organizerId")

	filter := reports.ListFilter{Date: c.Query("date")}
	if filter.Date != "" {
		if err := models.ValidateDate(filter.Date); err != nil {
			h.fail(c, err)
			return
		}
	}
	var ok bool
	if filter.SinceDays, ok = intQuery(c, "days"); !ok {
		return
	}
	if filter.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}

	list, total, err := h.reports.List(c.Request.Context(), organizerID, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": list, "total": total})
}

// GetReport returns one report.
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("organizerId"), c.Param("reportId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// PreviewReport derives the figures of a submission without saving it.
func (h *Handler) PreviewReport(c *gin.Context) {
	var sub reports.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	calc, err := h.reports.Preview(c.Request.Context(), c.Param("organizerId"), sub)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculation": calc})
}

// CreateReport submits a new daily report.
func (h *Handler) CreateReport(c *gin.Context) {
	h.saveReport(c, "", http.StatusCreated)
}

// UpdateReport edits an existing daily report in place.
func (h *Handler) UpdateReport(c *gin.Context) {
	h.saveReport(c, c.Param("reportId"), http.StatusOK)
}

func (h *Handler) saveReport(c *gin.Context, reportID string, status int) {
	organizerID := c.Param("organizerId")

	var sub reports.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	sub.ReportID = reportID

	ctx := c.Request.Context()
	report, err := h.reports.Submit(ctx, organizerID, sub)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(status, gin.H{"report": report, "warnings": h.currentWarnings(c, organizerID)})
}

// DeleteReport removes a report together with its stock movements.
func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("organizerId"), c.Param("reportId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns the dashboard attendance totals.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context(), c.Param("organizerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// currentWarnings lists negative balances after a write. A failure here does
// not undo the write, so it is only logged.
func (h *Handler) currentWarnings(c *gin.Context, organizerID string) []models.ReconciliationWarning {
	warnings := []models.ReconciliationWarning{}
	balances, err := h.ledger.Balances(c.Request.Context(), organizerID, "")
	if err != nil {
		h.logger.Warn("failed to compute balances after write", zap.String("organizer_id", organizerID), zap.Error(err))
		return warnings
	}
	for _, b := range balances {
		if b.Warning != nil {
			warnings = append(warnings, *b.Warning)
		}
	}
	return warnings
}
