// Package persist owns the canonical on-disk graph file for each
// workspace. It is the sole writer of that file: every mutation flows
// through Persist, which serializes writers per workspace path and
// writes atomically so readers never observe a partial file.
package persist

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/featuregraph/fg/internal/codec"
	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/types"
)

// DefaultGraphFile is the graph file location relative to the
// workspace root.
const DefaultGraphFile = ".fg/graph.yaml"

// Coordinator reads and writes workspace graph files with
// at-most-one-writer discipline per workspace path.
type Coordinator struct {
	// GraphFile is the path of the graph file relative to the
	// workspace root. Empty means DefaultGraphFile.
	GraphFile string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	loads singleflight.Group
}

// NewCoordinator creates a coordinator using the default graph file
// location.
func NewCoordinator() *Coordinator {
	return &Coordinator{locks: make(map[string]*sync.Mutex)}
}

// GraphPath returns the absolute graph file path for a workspace.
func (c *Coordinator) GraphPath(workspace string) string {
	name := c.GraphFile
	if name == "" {
		name = DefaultGraphFile
	}
	return filepath.Join(workspace, name)
}

// pathLock returns the mutex serializing writes to one graph path.
func (c *Coordinator) pathLock(path string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks == nil {
		c.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := c.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[path] = lock
	}
	return lock
}

// Load reads the workspace's graph file into a snapshot. If the file
// does not exist yet, a fresh empty version-1 graph is persisted and
// returned, so first use is frictionless. Concurrent loads of the same
// workspace are coalesced into one read.
func (c *Coordinator) Load(ctx context.Context, workspace string) (*graph.Store, error) {
	path := c.GraphPath(workspace)
	v, err, _ := c.loads.Do(path, func() (interface{}, error) {
		return c.loadOne(ctx, workspace, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Store), nil
}

func (c *Coordinator) loadOne(ctx context.Context, workspace, path string) (*graph.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fresh := types.EmptyGraphFile()
		if err := c.Persist(ctx, fresh, workspace); err != nil {
			return nil, err
		}
		return graph.New(fresh)
	}

	file, err := codec.Load(path)
	if err != nil {
		return nil, err
	}
	return graph.New(file)
}

// Persist writes the serialized, canonically ordered graph file for
// the workspace. The write is atomic from a reader's perspective:
// content goes to a temp file in the same directory, which is then
// renamed over the destination. At most one write per workspace path
// is in flight at a time; later writers wait rather than race.
func (c *Coordinator) Persist(ctx context.Context, file *types.GraphFile, workspace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := c.GraphPath(workspace)

	data, err := codec.Serialize(file)
	if err != nil {
		return err
	}

	lock := c.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &types.PersistenceError{Op: "persist", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".graph-*.yaml.tmp")
	if err != nil {
		return &types.PersistenceError{Op: "persist", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &types.PersistenceError{Op: "persist", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &types.PersistenceError{Op: "persist", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &types.PersistenceError{Op: "persist", Path: path, Err: err}
	}
	return nil
}
