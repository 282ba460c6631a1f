package workspace

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another dockman process holds the project lock
// and the context expires before it is released.
var ErrLocked = errors.New("project is locked by another dockman process")

// Lock is a cross-process lock scoped to one project root.
type Lock struct {
	fl    *flock.Flock
	retry time.Duration
}

// NewLock creates the lock for projectRoot under the default state directory
// (~/.dockman/locks). The DOCKMAN_HOME env var overrides the base directory.
func NewLock(projectRoot string) (*Lock, error) {
	var baseDir string
	if home := os.Getenv("DOCKMAN_HOME"); home != "" {
		baseDir = filepath.Join(home, "locks")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".dockman", "locks")
	}
	return NewLockAt(baseDir, projectRoot)
}

// NewLockAt creates the lock for projectRoot inside baseDir. Useful for testing.
func NewLockAt(baseDir, projectRoot string) (*Lock, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(projectRoot))
	name := fmt.Sprintf("%s-%x.lock", ProjectName(filepath.Base(projectRoot)), sum[:6])
	return &Lock{
		fl:    flock.New(filepath.Join(baseDir, name)),
		retry: 200 * time.Millisecond,
	}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *Lock) Lock(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, l.retry)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrLocked, l.fl.Path())
		}
		return fmt.Errorf("acquiring project lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, l.fl.Path())
	}
	return nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	return l.fl.Unlock()
}
