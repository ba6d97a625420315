// Package session - manager.go wires the store, automated login, and the
// interactive credential broker into getValidSession semantics.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/venue-scout/internal/creds"
)

// ErrAuthRequired signals that a valid session could not be produced and the
// caller should treat the attempt as needing authentication.
var ErrAuthRequired = fmt.Errorf("authentication required")

// DefaultPromptTimeout bounds the wait for an interactive credential
// response. Long enough for a human to type a password, short enough that an
// unattended run fails instead of hanging.
const DefaultPromptTimeout = 2 * time.Minute

// Authenticator performs a login against the source surface and returns the
// resulting session. Implemented by the browser extractor.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Session, error)
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Store         *Store
	Auth          Authenticator
	Broker        *creds.Broker
	EnvEmail      string // credentials for the single automated login attempt
	EnvPassword   string
	PromptTimeout time.Duration
	Verbose       bool
}

// Manager produces valid sessions, falling back from the persisted store to
// one automated login and then one interactive credential round trip.
type Manager struct {
	store         *Store
	auth          Authenticator
	broker        *creds.Broker
	envEmail      string
	envPassword   string
	promptTimeout time.Duration
	verbose       bool
}

// NewManager creates a session manager.
func NewManager(opts ManagerOptions) *Manager {
	timeout := opts.PromptTimeout
	if timeout <= 0 {
		timeout = DefaultPromptTimeout
	}
	return &Manager{
		store:         opts.Store,
		auth:          opts.Auth,
		broker:        opts.Broker,
		envEmail:      opts.EnvEmail,
		envPassword:   opts.EnvPassword,
		promptTimeout: timeout,
		verbose:       opts.Verbose,
	}
}

// GetValidSession returns the stored session if it validates, otherwise
// attempts to establish a new one via Reauthenticate.
func (m *Manager) GetValidSession(ctx context.Context) (*Session, error) {
	err := m.store.Valid(time.Now())
	if err == nil {
		return m.store.Current(), nil
	}
	if m.verbose {
		log.Printf("[SESSION] stored session rejected: %v", err)
	}
	return m.Reauthenticate(ctx, err.Error())
}

// Reauthenticate establishes a fresh session, ignoring whatever the store
// currently holds. Used when the surface presents an auth wall even though
// the stored session looked valid. One automated login attempt, then one
// interactive round trip; no credential retry loop, to avoid lockouts.
func (m *Manager) Reauthenticate(ctx context.Context, reason string) (*Session, error) {
	if m.auth == nil {
		return nil, fmt.Errorf("no authenticator configured: %w", ErrAuthRequired)
	}

	if m.envEmail != "" && m.envPassword != "" {
		sess, err := m.auth.Login(ctx, m.envEmail, m.envPassword)
		if err == nil {
			if err := m.store.Replace(sess); err != nil {
				return nil, fmt.Errorf("failed to persist session: %w", err)
			}
			return sess, nil
		}
		if m.verbose {
			log.Printf("[SESSION] automated login failed: %v", err)
		}
	}

	if m.broker == nil {
		return nil, fmt.Errorf("no credential broker configured: %w", ErrAuthRequired)
	}

	msg := "login required"
	if reason != "" {
		msg = fmt.Sprintf("login required (%s)", reason)
	}
	resp, err := m.broker.Request(ctx, msg, m.promptTimeout)
	if err != nil {
		return nil, fmt.Errorf("interactive credentials unavailable: %w", err)
	}

	// Exactly one login attempt with the supplied credentials; the plaintext
	// is dropped immediately regardless of outcome.
	sess, loginErr := m.auth.Login(ctx, resp.Email, resp.Password)
	resp = creds.Response{} //nolint:ineffassign // drop the plaintext eagerly
	if loginErr != nil {
		return nil, fmt.Errorf("interactive login failed: %w", loginErr)
	}

	if err := m.store.Replace(sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return sess, nil
}
