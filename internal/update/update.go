// Package update runs the over-the-air update helper as a child process.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrRunning is returned when an update is already in progress.
var ErrRunning = errors.New("update already running")

// Result describes a finished update job.
type Result struct {
	ID       string
	Ref      string
	Err      error
	Duration time.Duration
}

// Runner starts the configured update command. At most one job runs at a
// time; the job's reference is passed as the last argument.
type Runner struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger

	running atomic.Bool
	mu      sync.Mutex
	last    *Result
}

// NewRunner builds a runner. An empty command makes every start fail.
func NewRunner(command []string, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		command: command,
		timeout: timeout,
		logger:  logger,
	}
}

// Start launches the update for ref and returns its job ID.
func (r *Runner) Start(ref string) (string, error) {
	if len(r.command) == 0 {
		return "", errors.New("no update command configured")
	}
	if !r.running.CompareAndSwap(false, true) {
		return "", ErrRunning
	}
	id := uuid.NewString()
	args := append(append([]string{}, r.command[1:]...), ref)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	cmd := exec.CommandContext(ctx, r.command[0], args...)
	if err := cmd.Start(); err != nil {
		cancel()
		r.running.Store(false)
		return "", fmt.Errorf("start update: %w", err)
	}
	r.logger.Info("update started", "job", id, "ref", ref)

	go func() {
		defer cancel()
		began := time.Now()
		err := cmd.Wait()
		if ctx.Err() != nil {
			err = fmt.Errorf("update timed out after %s: %w", r.timeout, ctx.Err())
		}
		res := Result{ID: id, Ref: ref, Err: err, Duration: time.Since(began)}
		if err != nil {
			r.logger.Error("update failed", "job", id, "error", err)
		} else {
			r.logger.Info("update finished", "job", id, "duration", res.Duration)
		}
		r.mu.Lock()
		r.last = &res
		r.mu.Unlock()
		r.running.Store(false)
	}()
	return id, nil
}

// Running reports whether a job is in progress.
func (r *Runner) Running() bool { return r.running.Load() }

// Last returns the most recent finished job, if any.
func (r *Runner) Last() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Result{}, false
	}
	return *r.last, true
}
