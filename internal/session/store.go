// Package session - store.go provides the single-owner mutable session cell
// with atomic replace-on-write semantics.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnvVar is the environment variable holding a serialized session blob.
// When set, it takes precedence over the session file.
const EnvVar = "SCOUT_SESSION"

// Store holds the current session. Reads are frequent, replacement is rare;
// readers never observe a partially-updated session.
type Store struct {
	mu      sync.RWMutex
	current *Session
	path    string
}

// NewStore creates an empty store persisting to path. An empty path disables
// file persistence (environment-only operation).
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load creates a store and populates it from the environment blob if set,
// otherwise from the session file at path. A missing file is not an error;
// the store simply starts empty.
func Load(path string) (*Store, error) {
	st := NewStore(path)

	if blob := os.Getenv(EnvVar); blob != "" {
		sess, err := Decode([]byte(blob))
		if err != nil {
			return nil, fmt.Errorf("invalid %s blob: %w", EnvVar, err)
		}
		st.current = sess
		return st, nil
	}

	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("failed to read session file %s: %w", path, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid session file %s: %w", path, err)
	}
	st.current = sess
	return st, nil
}

// Current returns the session currently held by the store, or nil.
func (st *Store) Current() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Valid validates the currently held session against the clock.
func (st *Store) Valid(now time.Time) error {
	return st.Current().Validate(now)
}

// Replace swaps in a new session and persists it. The swap is atomic: the
// file is written to a temp path and renamed, and the in-memory cell is
// updated under the write lock only after the write succeeds.
func (st *Store) Replace(sess *Session) error {
	if sess == nil {
		return fmt.Errorf("cannot replace with nil session")
	}
	if sess.SavedAt == 0 {
		sess.SavedAt = time.Now().Unix()
	}

	if st.path != "" {
		data, err := sess.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		tmp := st.path + ".tmp"
		if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return fmt.Errorf("failed to write session file: %w", err)
		}
		if err := os.Rename(tmp, st.path); err != nil {
			return fmt.Errorf("failed to replace session file: %w", err)
		}
	}

	st.mu.Lock()
	st.current = sess
	st.mu.Unlock()
	return nil
}
