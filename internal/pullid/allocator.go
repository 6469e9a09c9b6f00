// Package pullid allocates durable, monotonically increasing pull ids.
//
// The last allocated id is persisted as 8 big-endian bytes in a counter
// file. Every read-modify-write of that file happens under an exclusive
// flock on the counter file itself, so independent hook processes racing on
// the same repository never hand out the same id.
package pullid

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

const (
	// DefaultPath is relative to the repository control directory.
	DefaultPath = "info/pull_id.count"
	counterLen  = 8
)

var ErrOverflow = errors.New("pullid: counter overflow")

// Allocator hands out ids from one counter file.
type Allocator struct {
	path string
	log  zerolog.Logger
}

func New(path string, log zerolog.Logger) *Allocator {
	return &Allocator{
		path: path,
		log:  log.With().Str("component", "pullid").Str("counter", path).Logger(),
	}
}

func (a *Allocator) Path() string {
	return a.path
}

// lock blocks until the lock on the counter file is held. The lock lives on
// its own descriptor, separate from the one used for reads and writes.
// There is no timeout; a holder that dies loses its lock when the kernel
// closes its files.
func (a *Allocator) lock(shared bool) (func(), error) {
	fl := flock.New(a.path)
	lockFn := fl.Lock
	if shared {
		lockFn = fl.RLock
	}
	if err := lockFn(); err != nil {
		return nil, fmt.Errorf("pullid: acquire lock %s: %w", a.path, err)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			a.log.Warn().Err(err).Msg("release lock")
		}
	}, nil
}

// Allocate commits and returns the next id. On ErrOverflow the counter
// file is left unchanged.
func (a *Allocator) Allocate(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return 0, fmt.Errorf("pullid: create counter dir: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_RDWR|os.O_CREATE, 0o644) //nolint:gosec // counter lives in the repository control dir
	if err != nil {
		return 0, fmt.Errorf("pullid: open counter: %w", err)
	}
	defer f.Close()

	a.log.Debug().Msg("waiting for counter lock")
	unlock, err := a.lock(false)
	if err != nil {
		return 0, err
	}
	defer unlock()

	current, err := readCounter(f)
	if err != nil {
		return 0, err
	}
	if current == math.MaxUint64 {
		a.log.Error().Uint64("current", current).Msg("counter exhausted")
		return 0, ErrOverflow
	}
	next := current + 1

	if err := writeCounter(f, next); err != nil {
		return 0, err
	}
	a.log.Debug().Uint64("pull_id", next).Msg("allocated")
	return next, nil
}

// Current returns the last committed id without allocating. A missing
// counter file reads as 0.
func (a *Allocator) Current(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.Open(a.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pullid: open counter: %w", err)
	}
	defer f.Close()

	unlock, err := a.lock(true)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return readCounter(f)
}

// readCounter treats a file shorter than 8 bytes as holding 0.
func readCounter(f *os.File) (uint64, error) {
	var buf [counterLen]byte
	if _, err := f.ReadAt(buf[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("pullid: read counter: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeCounter(f *os.File, v uint64) error {
	var buf [counterLen]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("pullid: seek counter: %w", err)
	}
	if _, err := f.Write(buf[:]); err != nil {
		return fmt.Errorf("pullid: write counter: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("pullid: sync counter: %w", err)
	}
	return nil
}
