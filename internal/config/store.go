package config

import (
	"log/slog"
	"sync"

	"github.com/sweeney/flower-controller/internal/color"
)

// Store holds the live configuration and persists the settings the flower
// changes itself. It implements behavior.Settings.
type Store struct {
	mu     sync.RWMutex
	path   string
	cfg    *Config
	logger *slog.Logger
}

// NewStore wraps cfg, persisting changes to path. An empty path keeps
// changes in memory.
func NewStore(path string, cfg *Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, cfg: cfg.Clone(), logger: logger}
}

// Config returns a copy of the current configuration.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace installs a reloaded configuration.
func (s *Store) Replace(cfg *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
}

func (s *Store) BluetoothEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Bluetooth.Enabled
}

func (s *Store) BluetoothAlwaysOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Bluetooth.AlwaysOn
}

// SetBluetoothAlwaysOn changes and persists bluetooth.always_on. A failed
// write is logged; the in-memory value still changes.
func (s *Store) SetBluetoothAlwaysOn(on bool) {
	s.mu.Lock()
	if s.cfg.Bluetooth.AlwaysOn == on {
		s.mu.Unlock()
		return
	}
	s.cfg.Bluetooth.AlwaysOn = on
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	s.logger.Info("bluetooth always on changed", "always_on", on)
	if s.path == "" {
		return
	}
	if err := Save(snapshot, s.path); err != nil {
		s.logger.Error("failed to persist config", "path", s.path, "error", err)
	}
}

func (s *Store) WifiEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Wifi.Enabled
}

func (s *Store) DeepSleepEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.DeepSleep.Enabled
}

// Palette returns the bloom colors. The slice must not be modified.
func (s *Store) Palette() []color.HSB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Palette
}
