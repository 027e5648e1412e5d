package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

var (
	ErrPrinterConnFailed = errors.New("printer connection failed")
	ErrSpoolFailed       = errors.New("failed to spool job data")
)

const (
	defaultRawPort      = 9100
	defaultSpoolTimeout = 60 * time.Second

	// Universal Exit Language framing around each PJL job.
	pjlUEL = "\x1b%-12345X"
)

// DocumentSource streams the stored payload of a queued file.
type DocumentSource interface {
	Open(fileID string) (io.ReadCloser, error)
}

// TCPSpooler sends jobs to printers over the raw JetDirect port, wrapping
// each document in a PJL envelope carrying the job settings.
type TCPSpooler struct {
	printers PrinterSource
	docs     DocumentSource
	timeout  time.Duration
}

func NewTCPSpooler(printers PrinterSource, docs DocumentSource, timeout time.Duration) *TCPSpooler {
	if timeout <= 0 {
		timeout = defaultSpoolTimeout
	}
	return &TCPSpooler{
		printers: printers,
		docs:     docs,
		timeout:  timeout,
	}
}

func (s *TCPSpooler) Execute(ctx context.Context, job *Job) error {
	printer, err := s.printers.GetPrinter(job.PrinterID)
	if err != nil {
		return &ExecutionError{Cause: err}
	}

	port := printer.Port
	if port == 0 {
		port = defaultRawPort
	}
	address := net.JoinHostPort(printer.Host, fmt.Sprintf("%d", port))

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return &ExecutionError{Cause: fmt.Errorf("%w: %v", ErrPrinterConnFailed, err)}
	}
	defer conn.Close()

	for _, ref := range job.Files {
		if err := s.spoolFile(conn, job, ref); err != nil {
			return &ExecutionError{Cause: err}
		}
	}

	return nil
}

func (s *TCPSpooler) spoolFile(conn net.Conn, job *Job, ref FileRef) error {
	doc, err := s.docs.Open(ref.FileID)
	if err != nil {
		return fmt.Errorf("failed to open document %s: %w", ref.FileID, err)
	}
	defer doc.Close()

	_ = conn.SetDeadline(time.Now().Add(s.timeout))

	header := pjlUEL +
		fmt.Sprintf("@PJL JOB NAME = %q\r\n", ref.Name) +
		fmt.Sprintf("@PJL SET COPIES = %d\r\n", ref.Copies) +
		fmt.Sprintf("@PJL SET PAPER = %s\r\n", job.Settings.PaperSize) +
		fmt.Sprintf("@PJL SET ORIENTATION = %s\r\n", job.Settings.Orientation) +
		fmt.Sprintf("@PJL SET DUPLEX = %s\r\n", pjlDuplex(job.Settings.Duplex)) +
		fmt.Sprintf("@PJL SET RENDERMODE = %s\r\n", pjlRenderMode(job.Settings.ColorMode)) +
		"@PJL ENTER LANGUAGE = AUTO\r\n"

	if _, err := io.WriteString(conn, header); err != nil {
		return fmt.Errorf("%w: %v", ErrSpoolFailed, err)
	}

	if _, err := io.Copy(conn, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSpoolFailed, err)
	}

	if _, err := io.WriteString(conn, pjlUEL+"@PJL EOJ\r\n"+pjlUEL); err != nil {
		return fmt.Errorf("%w: %v", ErrSpoolFailed, err)
	}

	return nil
}

func pjlDuplex(mode DuplexMode) string {
	switch mode {
	case DuplexLongEdge:
		return "ON"
	case DuplexShortEdge:
		return "ON\r\n@PJL SET BINDING = SHORTEDGE"
	default:
		return "OFF"
	}
}

func pjlRenderMode(mode ColorMode) string {
	if mode == ColorModeColor {
		return "COLOR"
	}
	return "GRAYSCALE"
}

// TCPProber reports printer reachability over the raw print port. The probe
// only proves the port accepts connections, so the mapped status stays
// coarse: reachable printers read as ready, everything else as offline.
type TCPProber struct {
	timeout time.Duration
}

func NewTCPProber(timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TCPProber{timeout: timeout}
}

func (p *TCPProber) Probe(ctx context.Context, printer Printer) PrinterStatus {
	port := printer.Port
	if port == 0 {
		port = defaultRawPort
	}
	address := net.JoinHostPort(printer.Host, fmt.Sprintf("%d", port))

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return StatusOffline
	}
	conn.Close()

	return StatusReady
}
