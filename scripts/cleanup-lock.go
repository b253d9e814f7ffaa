// scripts/cleanup-lock.go - Manual stale workspace lock cleanup tool
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/featuregraph/fg/internal/persist"
)

func main() {
	workspace := "."
	if len(os.Args) > 1 {
		workspace = os.Args[1]
	}

	lockPath := filepath.Join(workspace, ".fg", ".lock")

	data, err := os.ReadFile(lockPath)
	if os.IsNotExist(err) {
		fmt.Println("✓ No workspace lock found")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading lock: %v\n", err)
		os.Exit(1)
	}

	var lock persist.WorkspaceLock
	if err := json.Unmarshal(data, &lock); err == nil {
		fmt.Printf("Found lock held by %s (PID %d on %s, started %s)\n",
			lock.Holder, lock.PID, lock.Hostname, lock.StartedAt)
	}

	// Probe by attempting acquisition: a live holder refuses, a stale
	// lock is taken over and then released.
	acquired, err := persist.AcquireWorkspaceLock(workspace, "cleanup-lock", "manual")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock is still live, not removing: %v\n", err)
		os.Exit(1)
	}
	if err := persist.ReleaseWorkspaceLock(acquired); err != nil {
		fmt.Fprintf(os.Stderr, "Error releasing lock: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Cleaned up stale workspace lock")
}
