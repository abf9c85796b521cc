package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/ledger"
)

// ListStock returns ledger history newest first.
func (h *Handler) ListStock(c *gin.Context) {
	filter := ledger.Filter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		ItemID: c.Query("item"),
		Type:   models.EntryType(c.Query("type")),
	}
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if err := models.ValidateDate(d); err != nil {
			h.fail(c, err)
			return
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		badRequest(c, "type must be IN or OUT")
		return
	}
	var ok bool
	if filter.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}

	entries, total, err := h.ledger.List(c.Request.Context(), c.Param("organizerId"), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

// AddStock records a manual restock.
func (h *Handler) AddStock(c *gin.Context) {
	var input ledger.StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	entry, err := h.ledger.AddStock(c.Request.Context(), c.Param("organizerId"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// RemoveStock deletes a manual ledger entry.
func (h *Handler) RemoveStock(c *gin.Context) {
	organizerID := c.Param("organizerId")
	if err := h.ledger.RemoveEntry(c.Request.Context(), organizerID, c.Param("entryId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": h.currentWarnings(c, organizerID)})
}

// Balances returns the stock card of every stocked item.
func (h *Handler) Balances(c *gin.Context) {
	balances, err := h.ledger.Balances(c.Request.Context(), c.Param("organizerId"), c.Query("asOf"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// MonthlyRollup returns the month's starting, added, spent and remaining figures.
func (h *Handler) MonthlyRollup(c *gin.Context) {
	r, err := h.rollups.Monthly(c.Request.Context(), c.Param("organizerId"), c.Param("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rollup": r})
}
