package config

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileProvider loads a YAML snapshot from disk and hot-reloads it on file
// changes. Updates are atomic pointer swaps, so in-flight requests keep the
// snapshot they started with.
type FileProvider struct {
	snap    atomic.Pointer[Snapshot]
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu       sync.Mutex
	onChange []func(Snapshot)
}

// NewFileProvider loads the file at path and returns a provider for it.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	p := &FileProvider{
		path:   path,
		logger: logger,
	}
	p.snap.Store(&s)
	return p, nil
}

// Snapshot returns the current snapshot.
// Safe to call concurrently from multiple goroutines.
func (p *FileProvider) Snapshot() Snapshot {
	return *p.snap.Load()
}

// OnChange registers a callback invoked after each successful reload.
func (p *FileProvider) OnChange(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// Watch starts watching the file for changes until ctx is cancelled.
// Rapid write bursts are debounced before reloading.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	p.watcher = watcher

	if err := watcher.Add(p.path); err != nil {
		_ = watcher.Close()
		return err
	}

	go p.watchLoop(ctx)
	return nil
}

func (p *FileProvider) watchLoop(ctx context.Context) {
	const debounceDelay = 500 * time.Millisecond
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = p.watcher.Close()
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, func() {
					p.reload()
				})
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", "error", err)
		}
	}
}

// reload re-reads the file. A failed reload keeps the last good snapshot.
func (p *FileProvider) reload() {
	s, err := LoadFromFile(p.path)
	if err != nil {
		p.logger.Error("config reload failed, keeping previous snapshot",
			"path", p.path,
			"error", err,
		)
		return
	}

	p.snap.Store(&s)
	p.logger.Info("config reloaded", "path", p.path)

	p.mu.Lock()
	callbacks := make([]func(Snapshot), len(p.onChange))
	copy(callbacks, p.onChange)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(s)
	}
}
