package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
)

// SystemSettings is the operator-tunable configuration stored in the
// settings table, as opposed to the process config loaded at startup.
type SystemSettings struct {
	DefaultSettings    core.JobSettings `json:"default_settings"`
	FileRetentionDays  int              `json:"file_retention_days"`
	MaxFileSizeMB      int              `json:"max_file_size_mb"`
	SupportedFileTypes []string         `json:"supported_file_types"`
}

func defaultSystemSettings() SystemSettings {
	return SystemSettings{
		DefaultSettings: core.JobSettings{
			ColorMode:   core.ColorModeBW,
			PaperSize:   core.PaperA4,
			Orientation: core.OrientationPortrait,
			Quality:     core.QualityStandard,
			Duplex:      core.DuplexNone,
		},
		FileRetentionDays:  30,
		MaxFileSizeMB:      100,
		SupportedFileTypes: []string{"pdf", "doc", "docx", "xls", "xlsx", "csv", "txt", "png", "jpg"},
	}
}

// loadSystemSettings reads stored values and falls back to defaults for
// anything missing or unreadable.
func loadSystemSettings(ctx context.Context) SystemSettings {
	s := defaultSystemSettings()

	if raw, err := db.Settings.GetSetting(ctx, db.SettingDefaultJobSettings); err == nil {
		var js core.JobSettings
		if err := json.Unmarshal([]byte(raw), &js); err == nil {
			s.DefaultSettings = js
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("[settings] failed to load %s: %v", db.SettingDefaultJobSettings, err)
	}

	if raw, err := db.Settings.GetSetting(ctx, db.SettingFileRetentionDays); err == nil {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			s.FileRetentionDays = n
		}
	}

	if raw, err := db.Settings.GetSetting(ctx, db.SettingMaxFileSizeMB); err == nil {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			s.MaxFileSizeMB = n
		}
	}

	if raw, err := db.Settings.GetSetting(ctx, db.SettingSupportedFileTypes); err == nil {
		var types []string
		if err := json.Unmarshal([]byte(raw), &types); err == nil && len(types) > 0 {
			s.SupportedFileTypes = types
		}
	}

	return s
}

type SettingsHandler struct{}

func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, loadSystemSettings(c.Request.Context()))
}

type UpdateSettingsRequest struct {
	DefaultSettings    *core.JobSettings `json:"default_settings"`
	FileRetentionDays  *int              `json:"file_retention_days"`
	MaxFileSizeMB      *int              `json:"max_file_size_mb"`
	SupportedFileTypes []string          `json:"supported_file_types"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.DefaultSettings != nil {
		if err := req.DefaultSettings.Validate(); err != nil {
			respondError(c, err)
			return
		}
		raw, _ := json.Marshal(req.DefaultSettings)
		if err := db.Settings.SetSetting(ctx, db.SettingDefaultJobSettings, string(raw)); err != nil {
			respondError(c, err)
			return
		}
	}

	if req.FileRetentionDays != nil {
		if *req.FileRetentionDays < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "file_retention_days must be at least 1"})
			return
		}
		if err := db.Settings.SetSetting(ctx, db.SettingFileRetentionDays, strconv.Itoa(*req.FileRetentionDays)); err != nil {
			respondError(c, err)
			return
		}
	}

	if req.MaxFileSizeMB != nil {
		if *req.MaxFileSizeMB < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "max_file_size_mb must be at least 1"})
			return
		}
		if err := db.Settings.SetSetting(ctx, db.SettingMaxFileSizeMB, strconv.Itoa(*req.MaxFileSizeMB)); err != nil {
			respondError(c, err)
			return
		}
	}

	if len(req.SupportedFileTypes) > 0 {
		raw, _ := json.Marshal(req.SupportedFileTypes)
		if err := db.Settings.SetSetting(ctx, db.SettingSupportedFileTypes, string(raw)); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, loadSystemSettings(ctx))
}

func (h *SettingsHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/settings", h.Get)
	protected.PUT("/settings", h.Update)
}
