package db

const (
	InsertFile = `
		INSERT INTO files (id, name, type, size, pages, copies, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ListFiles = `
		SELECT id, name, type, size, pages, copies, position, created_at, updated_at
		FROM files ORDER BY position ASC
	`

	ListFilesBefore = `
		SELECT id, name, type, size, pages, copies, position, created_at, updated_at
		FROM files WHERE created_at < ? ORDER BY position ASC
	`

	UpdateFileCopies = `
		UPDATE files SET copies = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`

	UpdateFilePosition = `
		UPDATE files SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`

	DeleteFile = `DELETE FROM files WHERE id = ?`
)

const (
	InsertPrinter = `
		INSERT INTO printers (id, name, status, is_default, color, duplex_modes, paper_sizes, host, port, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ListPrinters = `
		SELECT id, name, status, is_default, color, duplex_modes, paper_sizes, host, port, last_seen_at, created_at
		FROM printers ORDER BY is_default DESC, name ASC
	`

	UpdatePrinterStatus = `
		UPDATE printers SET status = ?, last_seen_at = CURRENT_TIMESTAMP WHERE id = ?
	`
)

const (
	InsertJob = `
		INSERT INTO print_jobs (id, printer_id, files_json, color_mode, paper_size, orientation, quality, duplex, status, total_pages, failure_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	UpdateJobStatus = `
		UPDATE print_jobs
		SET status = ?, failure_reason = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`

	ListJobs = `
		SELECT id, printer_id, files_json, color_mode, paper_size, orientation, quality, duplex, status, total_pages, failure_reason, created_at, started_at, completed_at
		FROM print_jobs ORDER BY created_at ASC
	`

	DeleteTerminalJobsBefore = `
		DELETE FROM print_jobs
		WHERE status IN ('completed', 'failed', 'cancelled') AND created_at < ?
	`
)

const (
	GetSetting = `SELECT value FROM settings WHERE key = ?`

	SetSetting = `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
)

const (
	InsertWebhook = `
		INSERT INTO webhooks (name, url, secret, events_json, enabled)
		VALUES (?, ?, ?, ?, ?)
	`

	ListWebhooks = `
		SELECT id, name, url, secret, events_json, enabled, created_at
		FROM webhooks ORDER BY id ASC
	`

	ListWebhooksForEvent = `
		SELECT id, name, url, secret, events_json, enabled, created_at
		FROM webhooks WHERE enabled = 1 AND events_json LIKE ?
	`

	SetWebhookEnabled = `UPDATE webhooks SET enabled = ? WHERE id = ?`

	DeleteWebhook = `DELETE FROM webhooks WHERE id = ?`
)
