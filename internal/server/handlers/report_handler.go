package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/service/inventory"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

// ReportHandler exposes archived month reports and snapshot change events.
type ReportHandler struct {
	inv       *inventory.Service
	reports   *reporting.Service
	keepAlive time.Duration
	logger    *zap.Logger
}

// NewReportHandler constructs the report HTTP adapter.
func NewReportHandler(inv *inventory.Service, reports *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{inv: inv, reports: reports, keepAlive: 25 * time.Second, logger: logger}
}

// List returns archived reports, newest month first.
func (h *ReportHandler) List(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	reports, err := h.reports.ListReports(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "list reports failed", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Events streams a dashboard summary on connect and after every snapshot
// replacement, until the client goes away.
func (h *ReportHandler) Events(c *gin.Context) {
	updates, unsubscribe := h.inv.Subscribe()
	defer unsubscribe()

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("snapshot", h.reports.Dashboard(h.inv.Snapshot()))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("snapshot", h.reports.Dashboard(snap))
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
