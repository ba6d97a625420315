package strategy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/venue-scout/internal/browser"
	"github.com/jonathan/venue-scout/internal/creds"
	"github.com/jonathan/venue-scout/internal/session"
	"github.com/jonathan/venue-scout/internal/types"
)

// DefaultAttemptTimeout bounds a single strategy attempt.
const DefaultAttemptTimeout = 2 * time.Minute

// Strategy is one self-contained method of obtaining content from a target.
// Attempt either fully succeeds (Success true) or fully fails; a returned
// error or Success false both count as failure.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, target types.ExtractionTarget) (*types.StrategyResult, error)
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Chains         map[types.TargetKind][]Strategy
	Sessions       *session.Manager // used to re-authenticate on auth walls
	AttemptTimeout time.Duration
	Limiter        *rate.Limiter // per-account rate discipline across attempts
	Verbose        bool
}

// Coordinator tries strategies in priority order for a target, recording a
// diagnostic per attempt and stopping at the first success. Fallback order
// is fixed and deterministic; strategies for one target never run
// concurrently.
type Coordinator struct {
	chains         map[types.TargetKind][]Strategy
	sessions       *session.Manager
	attemptTimeout time.Duration
	limiter        *rate.Limiter
	verbose        bool
}

// NewCoordinator creates a coordinator.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	return &Coordinator{
		chains:         opts.Chains,
		sessions:       opts.Sessions,
		attemptTimeout: timeout,
		limiter:        opts.Limiter,
		verbose:        opts.Verbose,
	}
}

// Extract runs the strategy chain for the target's kind. It returns the
// first successful StrategyResult plus the diagnostics accumulated from
// failed attempts (one entry per attempted strategy, in attempted order).
// If every strategy fails the error is an ExhaustedError and the diagnostics
// trail is still returned; a credential timeout during re-authentication is
// terminal immediately.
func (c *Coordinator) Extract(ctx context.Context, target types.ExtractionTarget) (*types.StrategyResult, []string, error) {
	chain, ok := c.chains[target.Kind]
	if !ok || len(chain) == 0 {
		return nil, nil, fmt.Errorf("no strategies configured for target kind %q", target.Kind)
	}

	var diagnostics []string
	reauthed := false

	for _, strat := range chain {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, diagnostics, err
			}
		}

		result, err := c.attempt(ctx, strat, target)
		if err == nil && result != nil && result.Success {
			if c.verbose {
				log.Printf("[COORDINATOR] %s succeeded for %s", strat.Name(), target.URL)
			}
			return result, diagnostics, nil
		}

		note := failureNote(result, err)

		// An auth wall is recoverable exactly once per extraction attempt:
		// refresh the session and retry the same strategy.
		if err != nil && needsReauth(err) && !reauthed && c.sessions != nil {
			reauthed = true
			if c.verbose {
				log.Printf("[COORDINATOR] %s hit auth wall, re-authenticating", strat.Name())
			}
			_, reauthErr := c.sessions.Reauthenticate(ctx, err.Error())
			if reauthErr != nil {
				if errors.Is(reauthErr, creds.ErrTimeout) {
					diagnostics = append(diagnostics, fmt.Sprintf("%s: %s; re-authentication timed out", strat.Name(), note))
					return nil, diagnostics, reauthErr
				}
				diagnostics = append(diagnostics, fmt.Sprintf("%s: %s; re-authentication failed: %v", strat.Name(), note, reauthErr))
				continue
			}

			result, err = c.attempt(ctx, strat, target)
			if err == nil && result != nil && result.Success {
				return result, diagnostics, nil
			}
			note = fmt.Sprintf("%s (after re-authentication: %s)", note, failureNote(result, err))
		}

		diagnostics = append(diagnostics, fmt.Sprintf("%s: %s", strat.Name(), note))
		if c.verbose {
			log.Printf("[COORDINATOR] %s failed for %s: %s", strat.Name(), target.URL, note)
		}
	}

	return nil, diagnostics, &ExhaustedError{URL: target.URL, Attempts: len(chain)}
}

func (c *Coordinator) attempt(ctx context.Context, strat Strategy, target types.ExtractionTarget) (*types.StrategyResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return strat.Attempt(attemptCtx, target)
}

func needsReauth(err error) bool {
	return errors.Is(err, browser.ErrAuthWall) || errors.Is(err, session.ErrAuthRequired)
}

func failureNote(result *types.StrategyResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if result != nil && len(result.Diagnostics) > 0 {
		return result.Diagnostics[len(result.Diagnostics)-1]
	}
	return "success predicate not met"
}
