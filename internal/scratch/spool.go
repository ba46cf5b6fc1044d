// Package scratch buffers binary payloads to disk for the duration of a
// single call. A spool is created, read back, and removed; nothing outlives
// the request that made it.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrTooLarge indicates the payload exceeded the spool's size cap.
var ErrTooLarge = errors.New("payload exceeds size limit")

// Spool is a call-scoped temporary file. Close removes the file and must be
// called on every exit path, error paths included.
type Spool struct {
	path string
	size int64

	mu      sync.Mutex
	removed bool
}

// Write copies r into a new spool, enforcing maxBytes. On any failure the
// temporary file is removed before returning.
func Write(r io.Reader, maxBytes int64) (*Spool, error) {
	f, err := os.CreateTemp("", "agent-gateway-spool-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}
	path := f.Name()

	// Copy one byte past the cap so oversize payloads are detected without
	// buffering the whole stream.
	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write spool file: %w", err)
	}
	if n > maxBytes {
		os.Remove(path)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}

	return &Spool{path: path, size: n}, nil
}

// Size returns the spooled payload size in bytes.
func (s *Spool) Size() int64 {
	return s.size
}

// Bytes reads the spooled payload back into memory.
func (s *Spool) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return nil, fmt.Errorf("spool already closed")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spool file: %w", err)
	}
	return data, nil
}

// Close removes the underlying file. It is idempotent.
func (s *Spool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return nil
	}
	s.removed = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove spool file: %w", err)
	}
	return nil
}
