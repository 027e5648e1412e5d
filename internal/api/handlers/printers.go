package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
)

type PrinterHandler struct {
	registry *core.PrinterRegistry
}

type CreatePrinterRequest struct {
	Name         string            `json:"name" binding:"required"`
	Host         string            `json:"host" binding:"required"`
	Port         int               `json:"port"`
	IsDefault    bool              `json:"is_default"`
	Capabilities core.Capabilities `json:"capabilities"`
}

type UpdateStatusRequest struct {
	Status core.PrinterStatus `json:"status" binding:"required"`
}

func NewPrinterHandler(registry *core.PrinterRegistry) *PrinterHandler {
	return &PrinterHandler{registry: registry}
}

func (h *PrinterHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"printers": h.registry.List()})
}

func (h *PrinterHandler) Create(c *gin.Context) {
	var req CreatePrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	p := &core.Printer{
		Name:         req.Name,
		Host:         req.Host,
		Port:         req.Port,
		IsDefault:    req.IsDefault,
		Capabilities: req.Capabilities,
		Status:       core.StatusUnknown,
	}
	if err := h.registry.AddPrinter(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Status reports the last observed status without forcing a probe. The
// poller refreshes it in the background.
func (h *PrinterHandler) Status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.registry.GetStatus(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"printer_id": id, "status": status})
}

// UpdateStatus lets an operator override the advisory status, e.g. to
// take a printer out of rotation for maintenance.
func (h *PrinterHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "unknown printer status"})
		return
	}

	if err := h.registry.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func (h *PrinterHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/printers", h.List)
	public.GET("/printers/status/:id", h.Status)
	protected.POST("/printers", h.Create)
	protected.PUT("/printers/status/:id", h.UpdateStatus)
}
