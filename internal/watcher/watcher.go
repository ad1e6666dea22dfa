// file: internal/watcher/watcher.go
// version: 1.0.0
// guid: 65f09178-24c5-49d3-927f-8a1efdd1b184

package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/jdfalk/calibre-api/internal/metrics"
)

// bookExtensions are the file extensions the inbox accepts.
var bookExtensions = map[string]bool{
	".epub": true,
	".mobi": true,
	".azw":  true,
	".azw3": true,
	".fb2":  true,
	".lit":  true,
	".lrf":  true,
	".pdb":  true,
	".pdf":  true,
	".rtf":  true,
	".txt":  true,
	".docx": true,
	".cbz":  true,
	".cbr":  true,
}

// DefaultQuiet is the default settle period. A dropped file must stop changing
// for this long before it is ingested, so half-copied files are left alone.
const DefaultQuiet = 5 * time.Second

// Subdirectories of the inbox that processed files are moved into.
const (
	ProcessedDirName = "processed"
	FailedDirName    = "failed"
)

// Ingest imports one settled inbox file and returns the library IDs it was
// assigned. A nil error with no IDs means the library refused the file as a
// duplicate.
type Ingest func(path string) ([]int, error)

// Watcher monitors a flat inbox directory for dropped e-book files. Each file
// that settles for the quiet period is handed to the ingest callback and then
// moved to processed/ or failed/ depending on the outcome.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	inboxDir  string
	quiet     time.Duration
	ingest    Ingest
	stop      chan struct{}
	stopped   chan struct{}
	mu        sync.Mutex
	pending   map[string]*time.Timer
	running   bool
}

// New creates a Watcher. Pass 0 for quiet to use DefaultQuiet.
func New(ingest Ingest, quiet time.Duration) *Watcher {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Watcher{
		quiet:   quiet,
		ingest:  ingest,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
}

// Start begins watching inboxDir and schedules any book files already sitting
// in it. It is safe to call only once.
func (w *Watcher) Start(inboxDir string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(inboxDir, ProcessedDirName), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(inboxDir, FailedDirName), 0o755); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsw
	w.inboxDir = inboxDir

	// Only the inbox itself is watched. processed/ and failed/ live inside it,
	// so a recursive watch would see our own moves as new drops.
	if err := fsw.Add(inboxDir); err != nil {
		fsw.Close()
		return err
	}

	// Files dropped while the service was down are still waiting.
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		fsw.Close()
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && IsBookFile(entry.Name()) {
			w.schedule(filepath.Join(inboxDir, entry.Name()))
		}
	}

	log.Printf("[INFO] watcher: watching inbox %s (quiet period %s)", inboxDir, w.quiet)
	go w.eventLoop()
	return nil
}

// Stop gracefully shuts down the watcher and waits for the event loop to exit.
// An ingest already in flight finishes in the background.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stop)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	<-w.stopped

	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsBookFile(event.Name) {
		return
	}

	// A removed or renamed-away file has no content left to ingest.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancel(event.Name)
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.schedule(event.Name)
	}
}

// schedule arms or re-arms the settle timer for path. Every write resets the
// clock, so a file in mid-copy keeps pushing its ingest out.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.quiet)
		return
	}

	w.pending[path] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.pending, path)
		running := w.running
		w.mu.Unlock()

		if running {
			w.process(path)
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

// process ingests one settled file and moves it out of the inbox.
func (w *Watcher) process(path string) {
	if _, err := os.Stat(path); err != nil {
		log.Printf("[WARN] watcher: %s vanished before processing", path)
		return
	}

	log.Printf("[INFO] watcher: ingesting %s", path)
	ids, err := w.ingest(path)
	switch {
	case err != nil:
		log.Printf("[ERROR] watcher: failed to add %s to library: %v", path, err)
		metrics.IncWatcherFile("failed")
		w.moveTo(path, FailedDirName)
	case len(ids) == 0:
		log.Printf("[WARN] watcher: library refused %s, likely a duplicate", path)
		metrics.IncWatcherFile("duplicate")
		w.moveTo(path, FailedDirName)
	default:
		log.Printf("[INFO] watcher: added %s as book id(s) %v", path, ids)
		metrics.IncWatcherFile("added")
		w.moveTo(path, ProcessedDirName)
	}
}

// moveTo relocates an inbox file into the named subdirectory, ULID-prefixing
// the name when an earlier file with the same name is already there.
func (w *Watcher) moveTo(path, subdir string) {
	base := filepath.Base(path)
	dest := filepath.Join(w.inboxDir, subdir, base)
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(w.inboxDir, subdir, ulid.Make().String()+"_"+base)
	}
	if err := os.Rename(path, dest); err != nil {
		log.Printf("[ERROR] watcher: could not move %s to %s: %v", path, subdir, err)
	}
}

// IsBookFile reports whether name has a recognized e-book extension.
func IsBookFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return bookExtensions[ext]
}
