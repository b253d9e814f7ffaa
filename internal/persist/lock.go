package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// WorkspaceLock is the lock file format a long-running session (REPL,
// agent loop) writes to claim exclusive management of a workspace's
// graph. One-shot CLI invocations do not take the lock; it exists so
// two interactive sessions don't fight over the same workspace.
type WorkspaceLock struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}

// lockFileName is relative to the workspace root.
const lockFileName = ".fg/.lock"

// AcquireWorkspaceLock creates the exclusive lock file for a workspace.
// A live lock held by another process fails the acquisition; a stale
// lock (holding process no longer exists on this host) is taken over.
// Returns the lock file path for cleanup on shutdown.
func AcquireWorkspaceLock(workspace, holder, version string) (string, error) {
	lockPath := filepath.Join(workspace, lockFileName)

	if data, err := os.ReadFile(lockPath); err == nil {
		var existing WorkspaceLock
		if json.Unmarshal(data, &existing) == nil {
			if isProcessAlive(existing.PID, existing.Hostname) {
				return "", fmt.Errorf("workspace is locked by %s (PID %d on %s, started %s)",
					existing.Holder, existing.PID, existing.Hostname,
					existing.StartedAt.Format(time.RFC3339))
			}
			// Stale lock, take it over.
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}

	lock := WorkspaceLock{
		Holder:    holder,
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
		Version:   version,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to create workspace lock: %w", err)
	}

	return lockPath, nil
}

// ReleaseWorkspaceLock removes the lock file. Call on shutdown (defer).
func ReleaseWorkspaceLock(lockPath string) error {
	if lockPath == "" {
		return nil
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove workspace lock: %w", err)
	}
	return nil
}

// isProcessAlive checks whether the lock-holding process still exists.
// Remote holders can't be checked, so they are assumed alive.
func isProcessAlive(pid int, hostname string) bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	if !strings.EqualFold(hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes for existence without sending anything.
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to someone else.
	return err == syscall.EPERM
}
