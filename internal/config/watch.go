package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads the configuration file when it changes and delivers each
// valid result on Updates. Invalid files are logged and skipped.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan *Config
	logger  *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// Watch starts watching path. The directory is watched so that editors
// replacing the file are noticed.
func Watch(ctx context.Context, path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		path:    path,
		fs:      fw,
		updates: make(chan *Config, 1),
		logger:  logger,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Updates delivers reloaded configurations. Only the latest pending one is
// kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload rejected", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)

	// Replace a pending, unconsumed update.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}
