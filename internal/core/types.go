package core

import (
	"time"
)

type PrinterStatus string

const (
	StatusReady    PrinterStatus = "ready"
	StatusOffline  PrinterStatus = "offline"
	StatusBusy     PrinterStatus = "busy"
	StatusError    PrinterStatus = "error"
	StatusLowToner PrinterStatus = "low_toner"
	StatusUnknown  PrinterStatus = "unknown"
)

func (s PrinterStatus) Valid() bool {
	switch s {
	case StatusReady, StatusOffline, StatusBusy, StatusError, StatusLowToner, StatusUnknown:
		return true
	}
	return false
}

type ColorMode string

const (
	ColorModeColor ColorMode = "color"
	ColorModeBW    ColorMode = "bw"
)

type PaperSize string

const (
	PaperA3     PaperSize = "A3"
	PaperA4     PaperSize = "A4"
	PaperLetter PaperSize = "Letter"
	PaperLegal  PaperSize = "Legal"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

type Quality string

const (
	QualityDraft    Quality = "draft"
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

type DuplexMode string

const (
	DuplexNone      DuplexMode = "none"
	DuplexLongEdge  DuplexMode = "long_edge"
	DuplexShortEdge DuplexMode = "short_edge"
)

type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Pages     int       `json:"pages"`
	Copies    int       `json:"copies"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Capabilities struct {
	Color       bool         `json:"color"`
	DuplexModes []DuplexMode `json:"duplex_modes"`
	PaperSizes  []PaperSize  `json:"paper_sizes"`
}

func (c Capabilities) SupportsDuplex(mode DuplexMode) bool {
	for _, m := range c.DuplexModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c Capabilities) SupportsPaper(size PaperSize) bool {
	for _, s := range c.PaperSizes {
		if s == size {
			return true
		}
	}
	return false
}

type Printer struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       PrinterStatus `json:"status"`
	IsDefault    bool          `json:"is_default"`
	Capabilities Capabilities  `json:"capabilities"`
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	LastSeenAt   *time.Time    `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

type JobSettings struct {
	ColorMode   ColorMode   `json:"color_mode"`
	PaperSize   PaperSize   `json:"paper_size"`
	Orientation Orientation `json:"orientation"`
	Quality     Quality     `json:"quality"`
	Duplex      DuplexMode  `json:"duplex"`
}

// FileRef is the snapshot a job keeps of a queued file. Copies and pages are
// resolved at build time; later mutation or removal of the file does not
// touch the job.
type FileRef struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	Pages  int    `json:"pages"`
	Copies int    `json:"copies"`
}

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusPrinting  JobStatus = "printing"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type Job struct {
	ID            string      `json:"id"`
	PrinterID     string      `json:"printer_id"`
	Files         []FileRef   `json:"files"`
	Settings      JobSettings `json:"settings"`
	Status        JobStatus   `json:"status"`
	TotalPages    int         `json:"total_pages"`
	FailureReason string      `json:"failure_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

func (j *Job) clone() *Job {
	c := *j
	c.Files = make([]FileRef, len(j.Files))
	copy(c.Files, j.Files)
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
