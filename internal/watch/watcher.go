// Package watch reconverts workbooks when they change. It monitors
// directories for created or modified workbook files and hands each one,
// debounced, to a handler.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Config holds the watcher configuration.
type Config struct {
	Directories []string `json:"directories"`
	// Pattern is an optional glob matched against file names.
	Pattern    string   `json:"pattern,omitempty"`
	Extensions []string `json:"extensions"`
	Recursive  bool     `json:"recursive"`
	Debounce   int      `json:"debounceMs"` // Milliseconds to wait before processing
	OutDir     string   `json:"outDir,omitempty"`
	Format     string   `json:"format,omitempty"`
}

// Event is one file change and what became of it.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "converted", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler converts one changed file.
type Handler func(ctx context.Context, path string) error

// Status represents the current watcher status.
type Status struct {
	Running     bool     `json:"running"`
	PID         int      `json:"pid,omitempty"`
	Directories []string `json:"directories"`
	EventCount  int      `json:"eventCount"`
	Failures    int      `json:"failures"`
	StartedAt   string   `json:"startedAt,omitempty"`
}

// maxEvents bounds the event history.
const maxEvents = 500

// Watcher monitors directories for workbook changes.
type Watcher struct {
	Config  Config
	Logger  *log.Logger
	Handler Handler

	mu        sync.Mutex
	events    []Event
	failures  int
	startedAt time.Time
	watcher   *fsnotify.Watcher
	debounce  map[string]*time.Timer
	ctx       context.Context
}

// New creates a new Watcher with the given configuration.
func New(config Config, handler Handler, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".xlsx", ".xlsm"}
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	return &Watcher{
		Config:   config,
		Logger:   logger.WithPrefix("watch"),
		Handler:  handler,
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the configured directories. It blocks until the
// context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			if err := w.addRecursive(absDir); err != nil {
				return err
			}
		} else if err := w.watcher.Add(absDir); err != nil {
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
	}

	w.mu.Lock()
	w.ctx = ctx
	w.startedAt = time.Now()
	w.mu.Unlock()
	w.Logger.Info("Watching", "directories", len(w.Config.Directories), "recursive", w.Config.Recursive)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("Stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("Watch error", "err", err)
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if w.Config.OutDir != "" && sameDir(path, w.Config.OutDir) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name
	if !w.Matches(path) {
		return
	}

	// Debounce: saving a workbook fires several writes in a row
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	op := event.Op.String()
	w.debounce[path] = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		w.process(path, op)
	})
	w.mu.Unlock()
}

// Matches reports whether path is a workbook the watcher should convert.
// Office lock files are ignored.
func (w *Watcher) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	matched := false
	for _, e := range w.Config.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	if w.Config.Pattern != "" {
		ok, _ := filepath.Match(w.Config.Pattern, base)
		return ok
	}
	return true
}

func (w *Watcher) process(path, operation string) {
	w.mu.Lock()
	delete(w.debounce, path)
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	evt := Event{Time: time.Now(), Path: path, Operation: operation, Status: "converted"}
	if w.Handler != nil {
		if err := w.Handler(ctx, path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error("Conversion failed", "path", path, "err", err)
		} else {
			w.Logger.Info("Converted", "path", path, "op", operation)
		}
	}
	w.record(evt)
}

func (w *Watcher) record(evt Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if evt.Status == "error" {
		w.failures++
	}
	w.events = append(w.events, evt)
	if len(w.events) > maxEvents {
		w.events = w.events[len(w.events)-maxEvents:]
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.debounce {
		t.Stop()
		delete(w.debounce, path)
	}
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:     !w.startedAt.IsZero(),
		PID:         os.Getpid(),
		Directories: w.Config.Directories,
		EventCount:  len(w.events),
		Failures:    w.failures,
	}
	if !w.startedAt.IsZero() {
		s.StartedAt = w.startedAt.Format(time.RFC3339)
	}
	return s
}

// GetEvents returns the recorded events, oldest first.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

const (
	pidFile    = "watch.pid"
	configFile = "watch-config.json"
	statusFile = "watch-status.json"
)

// WritePIDFile writes the current process ID to the PID file in the given directory.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, pidFile), []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, pidFile))
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

// SaveConfig writes the watcher config to a JSON file.
func SaveConfig(dir string, config Config) error {
	return writeJSON(filepath.Join(dir, configFile), config)
}

// LoadConfig reads the watcher config from a JSON file.
func LoadConfig(dir string) (*Config, error) {
	var config Config
	if err := readJSON(filepath.Join(dir, configFile), &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}

// SaveStatus writes a status snapshot for `watch status`.
func SaveStatus(dir string, s Status) error {
	return writeJSON(filepath.Join(dir, statusFile), s)
}

// LoadStatus reads the last status snapshot.
func LoadStatus(dir string) (*Status, error) {
	var s Status
	if err := readJSON(filepath.Join(dir, statusFile), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// DefaultConfigDir returns the default state directory for the watcher.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetcanvas"
	}
	return filepath.Join(home, ".sheetcanvas")
}
