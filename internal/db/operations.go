package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
)

type FileOperations struct{}

func (o *FileOperations) InsertFile(ctx context.Context, f *core.File) error {
	_, err := GetDB().ExecContext(ctx, InsertFile,
		f.ID, f.Name, f.Type, f.Size, f.Pages, f.Copies, f.Position, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (o *FileOperations) DeleteFile(ctx context.Context, id string) error {
	_, err := GetDB().ExecContext(ctx, DeleteFile, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (o *FileOperations) UpdateFileCopies(ctx context.Context, id string, copies int) error {
	_, err := GetDB().ExecContext(ctx, UpdateFileCopies, copies, id)
	if err != nil {
		return fmt.Errorf("failed to update file copies: %w", err)
	}
	return nil
}

// UpdateFilePositions rewrites the whole ordering in one transaction so a
// partial order is never visible.
func (o *FileOperations) UpdateFilePositions(ctx context.Context, ids []string) error {
	tx, err := GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, UpdateFilePosition, i, id); err != nil {
			return fmt.Errorf("failed to update position for file %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

func (o *FileOperations) ListFiles(ctx context.Context) ([]*core.File, error) {
	return o.queryFiles(ctx, ListFiles)
}

func (o *FileOperations) ListFilesBefore(ctx context.Context, cutoff time.Time) ([]*core.File, error) {
	return o.queryFiles(ctx, ListFilesBefore, cutoff)
}

func (o *FileOperations) queryFiles(ctx context.Context, query string, args ...interface{}) ([]*core.File, error) {
	rows, err := GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*core.File
	for rows.Next() {
		f := &core.File{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &f.Size, &f.Pages, &f.Copies, &f.Position, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

type PrinterOperations struct{}

func (o *PrinterOperations) InsertPrinter(ctx context.Context, p *core.Printer) error {
	duplex, err := json.Marshal(p.Capabilities.DuplexModes)
	if err != nil {
		return fmt.Errorf("failed to encode duplex modes: %w", err)
	}
	papers, err := json.Marshal(p.Capabilities.PaperSizes)
	if err != nil {
		return fmt.Errorf("failed to encode paper sizes: %w", err)
	}

	_, err = GetDB().ExecContext(ctx, InsertPrinter,
		p.ID, p.Name, string(p.Status), p.IsDefault, p.Capabilities.Color,
		string(duplex), string(papers), p.Host, p.Port, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert printer: %w", err)
	}
	return nil
}

func (o *PrinterOperations) ListPrinters(ctx context.Context) ([]*core.Printer, error) {
	rows, err := GetDB().QueryContext(ctx, ListPrinters)
	if err != nil {
		return nil, fmt.Errorf("failed to query printers: %w", err)
	}
	defer rows.Close()

	var printers []*core.Printer
	for rows.Next() {
		p := &core.Printer{}
		var status, duplex, papers string
		var lastSeen sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &status, &p.IsDefault, &p.Capabilities.Color,
			&duplex, &papers, &p.Host, &p.Port, &lastSeen, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan printer: %w", err)
		}
		p.Status = core.PrinterStatus(status)
		if lastSeen.Valid {
			p.LastSeenAt = &lastSeen.Time
		}
		if err := json.Unmarshal([]byte(duplex), &p.Capabilities.DuplexModes); err != nil {
			return nil, fmt.Errorf("failed to decode duplex modes for printer %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(papers), &p.Capabilities.PaperSizes); err != nil {
			return nil, fmt.Errorf("failed to decode paper sizes for printer %s: %w", p.ID, err)
		}
		printers = append(printers, p)
	}
	return printers, rows.Err()
}

func (o *PrinterOperations) UpdatePrinterStatus(ctx context.Context, id string, status core.PrinterStatus) error {
	_, err := GetDB().ExecContext(ctx, UpdatePrinterStatus, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update printer status: %w", err)
	}
	return nil
}

type JobOperations struct{}

func (o *JobOperations) InsertJob(ctx context.Context, job *core.Job) error {
	filesJSON, err := json.Marshal(job.Files)
	if err != nil {
		return fmt.Errorf("failed to encode job files: %w", err)
	}

	_, err = GetDB().ExecContext(ctx, InsertJob,
		job.ID, job.PrinterID, string(filesJSON),
		string(job.Settings.ColorMode), string(job.Settings.PaperSize),
		string(job.Settings.Orientation), string(job.Settings.Quality), string(job.Settings.Duplex),
		string(job.Status), job.TotalPages, job.FailureReason, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (o *JobOperations) UpdateJobStatus(ctx context.Context, id string, status core.JobStatus, failureReason string, startedAt, completedAt *time.Time) error {
	var startedVal, completedVal interface{}
	if startedAt != nil {
		startedVal = *startedAt
	}
	if completedAt != nil {
		completedVal = *completedAt
	}

	_, err := GetDB().ExecContext(ctx, UpdateJobStatus, string(status), failureReason, startedVal, completedVal, id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (o *JobOperations) ListJobs(ctx context.Context) ([]*core.Job, error) {
	rows, err := GetDB().QueryContext(ctx, ListJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*core.Job
	for rows.Next() {
		job := &core.Job{}
		var filesJSON, colorMode, paperSize, orientation, quality, duplex, status string
		var startedAt, completedAt sql.NullTime
		if err := rows.Scan(&job.ID, &job.PrinterID, &filesJSON,
			&colorMode, &paperSize, &orientation, &quality, &duplex,
			&status, &job.TotalPages, &job.FailureReason,
			&job.CreatedAt, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if err := json.Unmarshal([]byte(filesJSON), &job.Files); err != nil {
			return nil, fmt.Errorf("failed to decode files for job %s: %w", job.ID, err)
		}
		job.Settings = core.JobSettings{
			ColorMode:   core.ColorMode(colorMode),
			PaperSize:   core.PaperSize(paperSize),
			Orientation: core.Orientation(orientation),
			Quality:     core.Quality(quality),
			Duplex:      core.DuplexMode(duplex),
		}
		job.Status = core.JobStatus(status)
		if startedAt.Valid {
			job.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			job.CompletedAt = &completedAt.Time
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (o *JobOperations) DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := GetDB().ExecContext(ctx, DeleteTerminalJobsBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune jobs: %w", err)
	}
	return result.RowsAffected()
}

func (o *JobOperations) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := GetDB().QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(pages * copies), 0) FROM files",
	).Scan(&stats.TotalFiles, &stats.TotalPages)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	rows, err := GetDB().QueryContext(ctx, "SELECT status, COUNT(*) FROM print_jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		stats.TotalPrintJobs += count
		switch core.JobStatus(status) {
		case core.JobStatusCompleted:
			stats.CompletedJobs = count
		case core.JobStatusFailed:
			stats.FailedJobs = count
		}
	}

	finished := stats.CompletedJobs + stats.FailedJobs
	if finished > 0 {
		stats.SuccessRate = float64(stats.CompletedJobs) / float64(finished) * 100
	}

	return stats, rows.Err()
}

type SettingOperations struct{}

func (o *SettingOperations) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := GetDB().QueryRowContext(ctx, GetSetting, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (o *SettingOperations) SetSetting(ctx context.Context, key, value string) error {
	_, err := GetDB().ExecContext(ctx, SetSetting, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

type WebhookOperations struct{}

func (o *WebhookOperations) Insert(ctx context.Context, w *Webhook) error {
	result, err := GetDB().ExecContext(ctx, InsertWebhook, w.Name, w.URL, w.Secret, w.EventsJSON, w.Enabled)
	if err != nil {
		return fmt.Errorf("failed to insert webhook: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get webhook id: %w", err)
	}
	w.ID = id
	return nil
}

func (o *WebhookOperations) List(ctx context.Context) ([]*Webhook, error) {
	return o.queryWebhooks(ctx, ListWebhooks)
}

func (o *WebhookOperations) ListForEvent(ctx context.Context, event string) ([]*Webhook, error) {
	pattern := fmt.Sprintf("%%%q%%", event)
	return o.queryWebhooks(ctx, ListWebhooksForEvent, pattern)
}

func (o *WebhookOperations) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := GetDB().ExecContext(ctx, SetWebhookEnabled, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to toggle webhook: %w", err)
	}
	return nil
}

func (o *WebhookOperations) Delete(ctx context.Context, id int64) error {
	_, err := GetDB().ExecContext(ctx, DeleteWebhook, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

func (o *WebhookOperations) queryWebhooks(ctx context.Context, query string, args ...interface{}) ([]*Webhook, error) {
	rows, err := GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []*Webhook
	for rows.Next() {
		w := &Webhook{}
		var enabled int
		if err := rows.Scan(&w.ID, &w.Name, &w.URL, &w.Secret, &w.EventsJSON, &enabled, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		w.Enabled = enabled == 1
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}
