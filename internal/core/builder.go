package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileSource is the slice of FileQueueStore the builder needs.
type FileSource interface {
	GetFile(id string) (File, error)
}

// PrinterSource is the slice of PrinterRegistry the builder and dispatchers need.
type PrinterSource interface {
	GetPrinter(id string) (Printer, error)
	GetStatus(id string) (PrinterStatus, error)
}

// JobBuilder validates print requests and materializes jobs. It never
// mutates the file queue; jobs carry snapshots of the referenced files.
type JobBuilder struct {
	files    FileSource
	printers PrinterSource
}

func NewJobBuilder(files FileSource, printers PrinterSource) *JobBuilder {
	return &JobBuilder{files: files, printers: printers}
}

func (b *JobBuilder) Build(fileIDs []string, printerID string, settings JobSettings) (*Job, error) {
	if len(fileIDs) == 0 {
		return nil, ErrEmptyFileList
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	printer, err := b.printers.GetPrinter(printerID)
	if err != nil {
		return nil, err
	}

	if err := checkCapabilities(settings, printer.Capabilities); err != nil {
		return nil, err
	}

	// Advisory only: the dispatcher re-checks at execution time.
	if printer.Status == StatusOffline || printer.Status == StatusError {
		return nil, fmt.Errorf("%w: printer %s is %s", ErrPrinterUnavailable, printerID, printer.Status)
	}

	refs := make([]FileRef, 0, len(fileIDs))
	totalPages := 0
	for _, fid := range fileIDs {
		f, err := b.files.GetFile(fid)
		if err != nil {
			return nil, err
		}
		refs = append(refs, FileRef{
			FileID: f.ID,
			Name:   f.Name,
			Pages:  f.Pages,
			Copies: f.Copies,
		})
		totalPages += f.Pages * f.Copies
	}

	return &Job{
		ID:         uuid.NewString(),
		PrinterID:  printerID,
		Files:      refs,
		Settings:   settings,
		Status:     JobStatusPending,
		TotalPages: totalPages,
		CreatedAt:  time.Now(),
	}, nil
}

// Validate rejects any field outside the known enum values.
func (s JobSettings) Validate() error {
	switch s.ColorMode {
	case ColorModeColor, ColorModeBW:
	default:
		return fmt.Errorf("%w: unknown color mode %q", ErrInvalidArgument, s.ColorMode)
	}

	switch s.PaperSize {
	case PaperA3, PaperA4, PaperLetter, PaperLegal:
	default:
		return fmt.Errorf("%w: unknown paper size %q", ErrInvalidArgument, s.PaperSize)
	}

	switch s.Orientation {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidArgument, s.Orientation)
	}

	switch s.Quality {
	case QualityDraft, QualityStandard, QualityHigh:
	default:
		return fmt.Errorf("%w: unknown quality %q", ErrInvalidArgument, s.Quality)
	}

	switch s.Duplex {
	case DuplexNone, DuplexLongEdge, DuplexShortEdge:
	default:
		return fmt.Errorf("%w: unknown duplex mode %q", ErrInvalidArgument, s.Duplex)
	}

	return nil
}

func checkCapabilities(s JobSettings, caps Capabilities) error {
	if s.ColorMode == ColorModeColor && !caps.Color {
		return fmt.Errorf("%w: printer does not support color", ErrCapabilityMismatch)
	}

	if !caps.SupportsPaper(s.PaperSize) {
		return fmt.Errorf("%w: printer does not support paper size %s", ErrCapabilityMismatch, s.PaperSize)
	}

	// DuplexNone is always satisfiable: a simplex printer simply prints
	// single-sided, and every duplex unit can run simplex.
	if s.Duplex != DuplexNone && !caps.SupportsDuplex(s.Duplex) {
		return fmt.Errorf("%w: printer does not support duplex mode %s", ErrCapabilityMismatch, s.Duplex)
	}

	return nil
}
