// file: internal/calibre/tools.go
// version: 1.0.0
// guid: 661c5b2e-f4bd-4c85-9748-1844bac70c4d

package calibre

import (
	"os"
	"time"
)

// Names of the Calibre executables this package drives.
const (
	BinCalibre          = "calibre"
	BinCalibreDB        = "calibredb"
	BinEbookConvert     = "ebook-convert"
	BinEbookMeta        = "ebook-meta"
	BinEbookPolish      = "ebook-polish"
	BinFetchMetadata    = "fetch-ebook-metadata"
	BinWeb2Disk         = "web2disk"
	BinLRF2LRS          = "lrf2lrs"
	BinLRS2LRF          = "lrs2lrf"
	BinCalibreCustomize = "calibre-customize"
	BinCalibreDebug     = "calibre-debug"
	BinCalibreSMTP      = "calibre-smtp"
	BinEbookEdit        = "ebook-edit"
)

// Binaries lists every Calibre executable the API can invoke.
func Binaries() []string {
	return []string{
		BinCalibre, BinCalibreDB, BinEbookConvert, BinEbookMeta,
		BinEbookPolish, BinFetchMetadata, BinWeb2Disk, BinLRF2LRS,
		BinLRS2LRF, BinCalibreCustomize, BinCalibreDebug, BinCalibreSMTP,
		BinEbookEdit,
	}
}

// Timeouts groups the per-tool-class timeout budget. Read-only queries get the
// short budget; conversions, polishing and downloads get the long one.
type Timeouts struct {
	Query   time.Duration
	Convert time.Duration
	Add     time.Duration
	LRF     time.Duration
	Debug   time.Duration
	Check   time.Duration
	SMTP    time.Duration
	Fetch   time.Duration
}

// DefaultTimeouts returns the stock timeout budget.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Query:   60 * time.Second,
		Convert: 300 * time.Second,
		Add:     120 * time.Second,
		LRF:     120 * time.Second,
		Debug:   180 * time.Second,
		Check:   180 * time.Second,
		SMTP:    60 * time.Second,
		Fetch:   60 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	def := DefaultTimeouts()
	if t.Query <= 0 {
		t.Query = def.Query
	}
	if t.Convert <= 0 {
		t.Convert = def.Convert
	}
	if t.Add <= 0 {
		t.Add = def.Add
	}
	if t.LRF <= 0 {
		t.LRF = def.LRF
	}
	if t.Debug <= 0 {
		t.Debug = def.Debug
	}
	if t.Check <= 0 {
		t.Check = def.Check
	}
	if t.SMTP <= 0 {
		t.SMTP = def.SMTP
	}
	if t.Fetch <= 0 {
		t.Fetch = def.Fetch
	}
	return t
}

// Options configures a Tools instance. The zero value gives a real process
// runner, PATH resolution, the system temp dir and stock timeouts.
type Options struct {
	Runner   Runner
	BinDir   string
	WorkDir  string
	Timeouts Timeouts
}

// Tools exposes one method per Calibre CLI operation. All state is provided at
// construction; there are no package-level mutables, so a single instance is
// safe for concurrent use.
type Tools struct {
	runner   Runner
	binDir   string
	workDir  string
	timeouts Timeouts
}

// NewTools builds a Tools instance from opts, filling in defaults for unset
// fields.
func NewTools(opts Options) *Tools {
	t := &Tools{
		runner:   opts.Runner,
		binDir:   opts.BinDir,
		workDir:  opts.WorkDir,
		timeouts: opts.Timeouts.withDefaults(),
	}
	if t.runner == nil {
		t.runner = NewExecRunner(opts.BinDir)
	}
	if t.workDir == "" {
		t.workDir = os.TempDir()
	}
	return t
}

// Timeouts returns the effective timeout budget.
func (t *Tools) Timeouts() Timeouts {
	return t.timeouts
}
