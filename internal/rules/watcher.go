package rules

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
)

// Applier receives validated rule sets as they load
type Applier interface {
	SetRules(r *classify.Rules)
}

// Watcher hot-reloads the rules file. Events are debounced so editors
// that save in bursts trigger a single reload, and unchanged content
// (by hash) is skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	applier  Applier
	logger   *zap.Logger

	fsw *fsnotify.Watcher

	reloadMu sync.Mutex
	timer    *time.Timer

	hashMu   sync.Mutex
	lastHash string
}

// NewWatcher creates a watcher for the rules file at path
func NewWatcher(path string, debounce time.Duration, applier Applier, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		applier:  applier,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Path returns the watched rules file path
func (w *Watcher) Path() string {
	return w.path
}

// Start applies the current file when present and begins watching. The
// parent directory is watched, not the file itself, so atomic saves
// (write to temp, then rename) keep delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.reload(false); err != nil {
		w.logger.Warn("rules not applied, keeping active rules", zap.Error(err))
	}

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching rules file", zap.String("path", w.path))

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.reloadMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.reloadMu.Unlock()
	return w.fsw.Close()
}

// Reload forces an immediate load, bypassing the unchanged check
func (w *Watcher) Reload() error {
	return w.reload(true)
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("rules watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("rules file event", zap.String("op", event.Op.String()))
	w.scheduleReload()
}

func (w *Watcher) scheduleReload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.reloadMu.Lock()
		w.timer = nil
		w.reloadMu.Unlock()

		if err := w.reload(false); err != nil {
			w.logger.Warn("rules not applied, keeping active rules", zap.Error(err))
		}
	})
}

// reload reads, validates, and applies the rules file. Failures leave
// the active rules untouched. A missing file is only an error when the
// caller forced the reload.
func (w *Watcher) reload(force bool) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) && !force {
			w.logger.Debug("no rules file, using active rules", zap.String("path", w.path))
			return nil
		}
		return fmt.Errorf("read rules file: %w", err)
	}

	sum := sha256.Sum256(data)
	cur := hex.EncodeToString(sum[:])

	w.hashMu.Lock()
	same := w.lastHash == cur
	w.lastHash = cur
	w.hashMu.Unlock()

	if same && !force {
		w.logger.Debug("rules file unchanged, skipping reload")
		return nil
	}

	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	w.applier.SetRules(parsed)
	w.logger.Info("rules applied",
		zap.Int("extra_keywords", len(parsed.ExtraKeywords)),
		zap.Int("extra_params", len(parsed.ExtraParams)),
		zap.Int("bypass_hosts", len(parsed.BypassHosts)),
		zap.Int("force_hosts", len(parsed.ForceHosts)),
	)
	return nil
}
