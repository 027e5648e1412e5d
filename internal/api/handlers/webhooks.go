package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/webhook"
)

type WebhookHandler struct{}

type CreateWebhookRequest struct {
	Name   string   `json:"name" binding:"required"`
	URL    string   `json:"url" binding:"required"`
	Secret string   `json:"secret"`
	Events []string `json:"events" binding:"required"`
}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{}
}

func (h *WebhookHandler) Create(c *gin.Context) {
	var req CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	for _, e := range req.Events {
		if !webhook.KnownEvent(e) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "unknown event " + e})
			return
		}
	}

	events, _ := json.Marshal(req.Events)
	w := &db.Webhook{
		Name:       req.Name,
		URL:        req.URL,
		Secret:     req.Secret,
		EventsJSON: string(events),
		Enabled:    true,
	}
	if err := db.Webhooks.Insert(c.Request.Context(), w); err != nil {
		respondError(c, err)
		return
	}

	w.Secret = ""
	c.JSON(http.StatusOK, w)
}

func (h *WebhookHandler) List(c *gin.Context) {
	hooks, err := db.Webhooks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for _, w := range hooks {
		w.Secret = ""
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": hooks})
}

func (h *WebhookHandler) SetEnabled(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid webhook id"})
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := db.Webhooks.SetEnabled(c.Request.Context(), id, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "webhook updated"})
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid webhook id"})
		return
	}

	if err := db.Webhooks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "webhook deleted"})
}

func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks", h.Create)
	r.GET("/webhooks", h.List)
	r.PUT("/webhooks/:id", h.SetEnabled)
	r.DELETE("/webhooks/:id", h.Delete)
}
