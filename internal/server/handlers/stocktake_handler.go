package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/service/export"
	"github.com/mamadbah2/stockdesk/internal/service/inventory"
)

type countRequest struct {
	Code string   `json:"code" binding:"required"`
	Real *float64 `json:"real" binding:"required"`
}

// StocktakeHandler collects physical counts for the session user.
type StocktakeHandler struct {
	inv    *inventory.Service
	logger *zap.Logger
}

// NewStocktakeHandler constructs the stocktake HTTP adapter.
func NewStocktakeHandler(inv *inventory.Service, logger *zap.Logger) *StocktakeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StocktakeHandler{inv: inv, logger: logger}
}

// List returns the session's rows, newest first.
func (h *StocktakeHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Stocktake.Rows())
}

// Add records a count against the current book stock.
func (h *StocktakeHandler) Add(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	code := strings.TrimSpace(req.Code)
	counted := *req.Real
	if code == "" || math.IsNaN(counted) || math.IsInf(counted, 0) || counted < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and a non-negative count are required"})
		return
	}

	row := currentSession(c).Stocktake.AddRow(h.inv.Snapshot().Items, code, counted)
	c.JSON(http.StatusCreated, row)
}

// Reset clears the session's rows.
func (h *StocktakeHandler) Reset(c *gin.Context) {
	currentSession(c).Stocktake.Reset()
	c.Status(http.StatusNoContent)
}

// ExportCSV downloads the rows as CSV.
func (h *StocktakeHandler) ExportCSV(c *gin.Context) {
	writeTable(c, h.logger, export.StocktakeTable(currentSession(c).Stocktake.Rows()), formatCSV)
}

// ExportXLSX downloads the rows as a workbook.
func (h *StocktakeHandler) ExportXLSX(c *gin.Context) {
	writeTable(c, h.logger, export.StocktakeTable(currentSession(c).Stocktake.Rows()), formatXLSX)
}
