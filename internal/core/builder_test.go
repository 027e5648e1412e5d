package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duplexColorPrinter() *Printer {
	return &Printer{
		Name:   "office-color",
		Status: StatusReady,
		Capabilities: Capabilities{
			Color:       true,
			DuplexModes: []DuplexMode{DuplexLongEdge, DuplexShortEdge},
			PaperSizes:  []PaperSize{PaperA4, PaperA3},
		},
	}
}

func monoPrinter() *Printer {
	return &Printer{
		Name:   "basement-mono",
		Status: StatusReady,
		Capabilities: Capabilities{
			Color:      false,
			PaperSizes: []PaperSize{PaperA4},
		},
	}
}

func validSettings() JobSettings {
	return JobSettings{
		ColorMode:   ColorModeBW,
		PaperSize:   PaperA4,
		Orientation: OrientationPortrait,
		Quality:     QualityStandard,
		Duplex:      DuplexNone,
	}
}

func builderFixture(t *testing.T, p *Printer) (*JobBuilder, *FileQueueStore, *PrinterRegistry) {
	t.Helper()

	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	reg, err := NewPrinterRegistry(nil, nil)
	require.NoError(t, err)
	require.NoError(t, reg.AddPrinter(context.Background(), p))

	return NewJobBuilder(q, reg), q, reg
}

func TestBuildRejectsEmptyFileList(t *testing.T) {
	b, _, _ := builderFixture(t, duplexColorPrinter())

	_, err := b.Build(nil, "any", validSettings())
	assert.ErrorIs(t, err, ErrEmptyFileList)
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	b, q, reg := builderFixture(t, duplexColorPrinter())
	id := addFile(t, q, "a.pdf", 1, 1)
	printerID := reg.List()[0].ID

	cases := []JobSettings{
		{ColorMode: "sepia", PaperSize: PaperA4, Orientation: OrientationPortrait, Quality: QualityStandard, Duplex: DuplexNone},
		{ColorMode: ColorModeBW, PaperSize: "A5", Orientation: OrientationPortrait, Quality: QualityStandard, Duplex: DuplexNone},
		{ColorMode: ColorModeBW, PaperSize: PaperA4, Orientation: "diagonal", Quality: QualityStandard, Duplex: DuplexNone},
		{ColorMode: ColorModeBW, PaperSize: PaperA4, Orientation: OrientationPortrait, Quality: "best", Duplex: DuplexNone},
		{ColorMode: ColorModeBW, PaperSize: PaperA4, Orientation: OrientationPortrait, Quality: QualityStandard, Duplex: "booklet"},
	}
	for _, s := range cases {
		_, err := b.Build([]string{id}, printerID, s)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestBuildRejectsUnknownPrinter(t *testing.T) {
	b, q, _ := builderFixture(t, duplexColorPrinter())
	id := addFile(t, q, "a.pdf", 1, 1)

	_, err := b.Build([]string{id}, "ghost", validSettings())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildRejectsUnknownFile(t *testing.T) {
	b, _, reg := builderFixture(t, duplexColorPrinter())

	_, err := b.Build([]string{"ghost"}, reg.List()[0].ID, validSettings())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildCapabilityChecks(t *testing.T) {
	b, q, reg := builderFixture(t, monoPrinter())
	id := addFile(t, q, "a.pdf", 1, 1)
	printerID := reg.List()[0].ID

	color := validSettings()
	color.ColorMode = ColorModeColor
	_, err := b.Build([]string{id}, printerID, color)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)

	paper := validSettings()
	paper.PaperSize = PaperA3
	_, err = b.Build([]string{id}, printerID, paper)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)

	duplex := validSettings()
	duplex.Duplex = DuplexLongEdge
	_, err = b.Build([]string{id}, printerID, duplex)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)

	// Single-sided always works, even on a printer with no duplex unit.
	_, err = b.Build([]string{id}, printerID, validSettings())
	assert.NoError(t, err)
}

func TestBuildRejectsUnavailablePrinter(t *testing.T) {
	for _, status := range []PrinterStatus{StatusOffline, StatusError} {
		b, q, reg := builderFixture(t, duplexColorPrinter())
		id := addFile(t, q, "a.pdf", 1, 1)
		printerID := reg.List()[0].ID

		require.NoError(t, reg.SetStatus(context.Background(), printerID, status))

		_, err := b.Build([]string{id}, printerID, validSettings())
		assert.ErrorIs(t, err, ErrPrinterUnavailable)
	}
}

func TestBuildAllowsDegradedPrinter(t *testing.T) {
	// Busy and low toner are warnings, not refusals.
	for _, status := range []PrinterStatus{StatusBusy, StatusLowToner} {
		b, q, reg := builderFixture(t, duplexColorPrinter())
		id := addFile(t, q, "a.pdf", 1, 1)
		printerID := reg.List()[0].ID

		require.NoError(t, reg.SetStatus(context.Background(), printerID, status))

		_, err := b.Build([]string{id}, printerID, validSettings())
		assert.NoError(t, err)
	}
}

func TestBuildSnapshotsFiles(t *testing.T) {
	b, q, reg := builderFixture(t, duplexColorPrinter())
	printerID := reg.List()[0].ID

	a := addFile(t, q, "a.pdf", 3, 2)
	c := addFile(t, q, "b.pdf", 5, 1)

	job, err := b.Build([]string{a, c}, printerID, validSettings())
	require.NoError(t, err)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3*2+5*1, job.TotalPages)
	require.Len(t, job.Files, 2)
	assert.Equal(t, a, job.Files[0].FileID)

	// Later queue mutations must not leak into the built job.
	require.NoError(t, q.SetCopies(context.Background(), a, 9))
	require.NoError(t, q.Remove(context.Background(), c))

	assert.Equal(t, 11, job.TotalPages)
	assert.Equal(t, 2, job.Files[0].Copies)
	assert.Equal(t, 5, job.Files[1].Pages)
}
