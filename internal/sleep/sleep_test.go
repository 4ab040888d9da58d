package sleep

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	calls []string
	args  [][]interface{}
	err   error
}

func (m *fakeManager) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	m.calls = append(m.calls, method)
	m.args = append(m.args, args)
	return &dbus.Call{Method: method, Err: m.err}
}

func newLogind(t *testing.T, m *fakeManager) (*Logind, *int) {
	t.Helper()
	code := -1
	return &Logind{
		manager: m,
		marker:  filepath.Join(t.TempDir(), "state", "sleeping"),
		exit:    func(c int) { code = c },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, &code
}

func TestSleepSuspendsAndExits(t *testing.T) {
	m := &fakeManager{}
	l, code := newLogind(t, m)

	require.NoError(t, l.Sleep())
	assert.Equal(t, []string{"org.freedesktop.login1.Manager.Suspend"}, m.calls)
	assert.Equal(t, []interface{}{false}, m.args[0], "not interactive")
	assert.Equal(t, 0, *code)

	woke, err := WokeUp(l.marker)
	require.NoError(t, err)
	assert.True(t, woke)

	woke, err = WokeUp(l.marker)
	require.NoError(t, err)
	assert.False(t, woke, "marker is consumed")
}

func TestSleepFailureRemovesMarker(t *testing.T) {
	m := &fakeManager{err: errors.New("org.freedesktop.login1.OperationInProgress")}
	l, code := newLogind(t, m)

	err := l.Sleep()
	assert.ErrorContains(t, err, "suspend")
	assert.Equal(t, -1, *code, "no exit on failure")
	_, statErr := os.Stat(l.marker)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWokeUpWithoutMarker(t *testing.T) {
	woke, err := WokeUp(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, woke)
}
