package db

import (
	"time"
)

// Well-known settings keys.
const (
	SettingDefaultJobSettings = "default_job_settings"
	SettingFileRetentionDays  = "file_retention_days"
	SettingMaxFileSizeMB      = "max_file_size_mb"
	SettingSupportedFileTypes = "supported_file_types"
	SettingAdminPassword      = "admin_password"
	SettingJWTSecret          = "jwt_secret"
)

type Webhook struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Secret     string    `json:"secret,omitempty"`
	EventsJSON string    `json:"events_json"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalFiles     int     `json:"total_files"`
	TotalPages     int     `json:"total_pages"`
	TotalPrintJobs int     `json:"total_print_jobs"`
	CompletedJobs  int     `json:"completed_jobs"`
	FailedJobs     int     `json:"failed_jobs"`
	SuccessRate    float64 `json:"success_rate"`
}
