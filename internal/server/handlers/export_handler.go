package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/service/export"
	"github.com/mamadbah2/stockdesk/internal/service/inventory"
	"github.com/mamadbah2/stockdesk/internal/service/labels"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves table downloads and QR labels.
type ExportHandler struct {
	inv     *inventory.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewExportHandler constructs the export HTTP adapter.
func NewExportHandler(inv *inventory.Service, reports *reporting.Service, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{inv: inv, reports: reports, logger: logger}
}

// Table serves /export/:file where file is items, history or movement
// with a .csv or .xlsx extension.
func (h *ExportHandler) Table(c *gin.Context) {
	name, format, ok := splitExportFile(c.Param("file"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export"})
		return
	}

	snap := h.inv.Snapshot()

	var table export.Table
	switch name {
	case "items":
		table = export.ItemsTable(snap.Items)
	case "history":
		table = export.HistoryTable(snap.History)
	case "movement":
		table = export.MovementTable(h.reports.MonthMovement(snap))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export"})
		return
	}

	writeTable(c, h.logger, table, format)
}

// ItemLabel renders the QR label of an item in the snapshot.
func (h *ExportHandler) ItemLabel(c *gin.Context) {
	item, ok := h.inv.FindItem(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	h.writeLabel(c, func(size int) ([]byte, error) { return labels.ItemPNG(item.Code, size) })
}

// UserLabel renders the QR badge of a user in the snapshot.
func (h *ExportHandler) UserLabel(c *gin.Context) {
	user, ok := h.inv.FindUser(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	h.writeLabel(c, func(size int) ([]byte, error) { return labels.UserPNG(user.ID, size) })
}

func (h *ExportHandler) writeLabel(c *gin.Context, render func(size int) ([]byte, error)) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be an integer"})
			return
		}
		size = parsed
	}

	png, err := render(size)
	if err != nil {
		h.logger.Error("label rendering failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to render label"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func splitExportFile(file string) (name, format string, ok bool) {
	ext := path.Ext(file)
	name = strings.TrimSuffix(file, ext)
	format = strings.TrimPrefix(ext, ".")
	if name == "" || (format != formatCSV && format != formatXLSX) {
		return "", "", false
	}
	return name, format, true
}

// writeTable renders into memory first so a failure can still produce an error status.
func writeTable(c *gin.Context, logger *zap.Logger, table export.Table, format string) {
	var buf bytes.Buffer
	var err error
	contentType := contentTypeCSV

	switch format {
	case formatXLSX:
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, table)
	default:
		format = formatCSV
		err = export.WriteCSV(&buf, table)
	}
	if err != nil {
		logger.Error("export failed", zap.String("table", table.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.Name+"."+format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
