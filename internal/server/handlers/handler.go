package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository"
	"github.com/mamadbah2/mealledger/internal/service/ledger"
	"github.com/mamadbah2/mealledger/internal/service/pricing"
	"github.com/mamadbah2/mealledger/internal/service/reports"
	"github.com/mamadbah2/mealledger/internal/service/rollup"
)

// Handler adapts the reporting services to HTTP.
type Handler struct {
	pricing *pricing.Service
	ledger  *ledger.Service
	reports *reports.Service
	rollups *rollup.Service
	logger  *zap.Logger
}

// New constructs the HTTP handler adapter.
func New(pricingSvc *pricing.Service, ledgerSvc *ledger.Service, reportSvc *reports.Service, rollupSvc *rollup.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pricing: pricingSvc,
		ledger:  ledgerSvc,
		reports: reportSvc,
		rollups: rollupSvc,
		logger:  logger,
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reports.ErrDuplicateReport),
		errors.Is(err, ledger.ErrEntryOwnedByReport):
		return http.StatusConflict
	case errors.Is(err, reports.ErrReportNotFound),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrInvalidAttendance),
		errors.Is(err, reports.ErrNoItemsSelected),
		errors.Is(err, reports.ErrUnknownItem),
		errors.Is(err, reports.ErrUnknownMeal),
		errors.Is(err, pricing.ErrInvalidSection),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidMonth),
		errors.Is(err, models.ErrInvalidPricing),
		errors.Is(err, models.ErrUnknownSchoolType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, key+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// Items lists the tracked item catalog.
func (h *Handler) Items(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": models.StockItems()})
}

// Meals lists the menu options.
func (h *Handler) Meals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"meals": models.Meals()})
}

// GetPricing returns the portion/pricing table.
func (h *Handler) GetPricing(c *gin.Context) {
	table, err := h.pricing.Table(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricing": table})
}

// UpdatePricing replaces the portion/pricing table.
func (h *Handler) UpdatePricing(c *gin.Context) {
	var table models.PricingTable
	if err := c.ShouldBindJSON(&table); err != nil {
		badRequest(c, "invalid pricing table")
		return
	}
	if err := h.pricing.Update(c.Request.Context(), table); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricing": table})
}
