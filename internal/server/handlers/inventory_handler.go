package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/inventory"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

type movementRequest struct {
	Code string  `json:"code" binding:"required"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Type string  `json:"type" binding:"required"`
}

type historyUpdateRequest struct {
	Timestamp string  `json:"timestamp"`
	UserID    string  `json:"userId"`
	Code      string  `json:"code" binding:"required"`
	Qty       float64 `json:"qty"`
	Unit      string  `json:"unit"`
	Type      string  `json:"type" binding:"required"`
}

type scanRequest struct {
	Payload string `json:"payload"`
}

// InventoryHandler serves the snapshot and forwards writes to the backend.
type InventoryHandler struct {
	inv     *inventory.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewInventoryHandler constructs the inventory HTTP adapter.
func NewInventoryHandler(inv *inventory.Service, reports *reporting.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{inv: inv, reports: reports, logger: logger}
}

// Dashboard returns the summary of the current snapshot.
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.Dashboard(h.inv.Snapshot()))
}

// Reload refreshes the snapshot from the backend.
func (h *InventoryHandler) Reload(c *gin.Context) {
	snap, err := h.inv.Reload(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "manual reload failed", err)
		return
	}
	c.JSON(http.StatusOK, h.reports.Dashboard(snap))
}

// ListItems returns every item of the snapshot.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.inv.Snapshot().Items)
}

// GetItem returns one item with its history, newest first.
func (h *InventoryHandler) GetItem(c *gin.Context) {
	detail, ok := h.reports.ItemDetail(h.inv.Snapshot(), c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateItem adds an item.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var item models.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.inv.AddItem(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, "add item failed", err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdateItem replaces the item named in the path.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var item models.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	item.Code = c.Param("code")

	if err := h.inv.UpdateItem(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, "update item failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteItem removes the item named in the path.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if err := h.inv.DeleteItem(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, "delete item failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers returns the users without their pins.
func (h *InventoryHandler) ListUsers(c *gin.Context) {
	users := h.inv.Snapshot().Users
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// CreateUser adds a user.
func (h *InventoryHandler) CreateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.inv.AddUser(c.Request.Context(), user); err != nil {
		respondError(c, h.logger, "add user failed", err)
		return
	}
	c.Status(http.StatusCreated)
}

// ListHistory returns the raw movement log.
func (h *InventoryHandler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.inv.Snapshot().History)
}

// LogMovement records a movement on behalf of the session user.
func (h *InventoryHandler) LogMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	movement := models.MovementRequest{
		UserID: currentSession(c).User.ID,
		Code:   req.Code,
		Qty:    req.Qty,
		Unit:   req.Unit,
		Type:   models.MovementType(req.Type),
	}
	if err := h.inv.LogMovement(c.Request.Context(), movement); err != nil {
		respondError(c, h.logger, "log movement failed", err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdateHistory edits the history row named in the path.
func (h *InventoryHandler) UpdateHistory(c *gin.Context) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil || row <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row must be a positive integer"})
		return
	}

	var req historyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	record := models.HistoryRecord{
		RowNumber: row,
		Timestamp: req.Timestamp,
		UserID:    req.UserID,
		Code:      req.Code,
		Qty:       req.Qty,
		Unit:      req.Unit,
		Type:      models.MovementType(req.Type),
	}
	if err := h.inv.UpdateHistory(c.Request.Context(), record); err != nil {
		respondError(c, h.logger, "update history failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Scan resolves a scanned QR payload.
func (h *InventoryHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	result, err := h.inv.LookupScan(c.Request.Context(), req.Payload)
	if err != nil {
		respondError(c, h.logger, "scan lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
