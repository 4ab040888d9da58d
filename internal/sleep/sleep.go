// Package sleep puts the board into suspend through systemd-logind and
// leaves a marker so the restarted daemon knows it woke from sleep.
package sleep

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	logindService = "org.freedesktop.login1"
	logindPath    = "/org/freedesktop/login1"
	logindSuspend = "org.freedesktop.login1.Manager.Suspend"
)

type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Logind suspends the system. After the suspend request is queued the
// process exits; systemd restarts it after wake.
type Logind struct {
	manager caller
	marker  string
	exit    func(code int)
	logger  *slog.Logger
}

// NewLogind builds a sleeper on the system bus connection.
func NewLogind(conn *dbus.Conn, marker string, logger *slog.Logger) *Logind {
	return &Logind{
		manager: conn.Object(logindService, logindPath),
		marker:  marker,
		exit:    os.Exit,
		logger:  logger,
	}
}

// Sleep writes the wake marker, asks logind to suspend and exits. It only
// returns on failure, after removing the marker.
func (l *Logind) Sleep() error {
	if err := writeMarker(l.marker); err != nil {
		return err
	}
	if err := l.manager.Call(logindSuspend, 0, false).Err; err != nil {
		_ = os.Remove(l.marker)
		return fmt.Errorf("suspend: %w", err)
	}
	l.logger.Info("suspending")
	l.exit(0)
	return nil
}

func writeMarker(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("wake marker dir: %w", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("wake marker: %w", err)
	}
	return nil
}

// WokeUp reports whether the marker left by Sleep exists and consumes it.
func WokeUp(marker string) (bool, error) {
	err := os.Remove(marker)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("wake marker: %w", err)
	}
	return true, nil
}
