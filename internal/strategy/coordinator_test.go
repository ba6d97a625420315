package strategy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/venue-scout/internal/types"
)

// fakeStrategy scripts one attempt outcome and records invocations.
type fakeStrategy struct {
	name   string
	result *types.StrategyResult
	err    error
	calls  int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(_ context.Context, _ types.ExtractionTarget) (*types.StrategyResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func success(name string) *fakeStrategy {
	return &fakeStrategy{
		name:   name,
		result: &types.StrategyResult{StrategyName: name, Success: true, PageText: "karaoke thursdays 9pm at the venue"},
	}
}

func failure(name string) *fakeStrategy {
	return &fakeStrategy{name: name, err: &AttemptError{Strategy: name, Message: "boom"}}
}

func target() types.ExtractionTarget {
	return types.ExtractionTarget{URL: "https://www.facebook.com/somevenue", Kind: types.KindProfile}
}

func newTestCoordinator(chain ...Strategy) *Coordinator {
	return NewCoordinator(CoordinatorOptions{
		Chains:         map[types.TargetKind][]Strategy{types.KindProfile: chain},
		AttemptTimeout: time.Second,
	})
}

func TestFirstSuccessStops(t *testing.T) {
	first := success("authenticated-api")
	second := failure("authenticated-browser")

	c := newTestCoordinator(first, second)
	result, diags, err := c.Extract(context.Background(), target())
	require.NoError(t, err)
	assert.Equal(t, "authenticated-api", result.StrategyName)
	assert.Empty(t, diags)
	assert.Zero(t, second.calls, "later strategies must not run after a success")
}

func TestFallbackCarriesDiagnostics(t *testing.T) {
	first := failure("authenticated-api")
	second := success("authenticated-browser")

	c := newTestCoordinator(first, second)
	result, diags, err := c.Extract(context.Background(), target())
	require.NoError(t, err)
	assert.Equal(t, "authenticated-browser", result.StrategyName)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "authenticated-api")
}

func TestExhaustionIsTerminalWithOrderedDiagnostics(t *testing.T) {
	names := []string{"authenticated-api", "authenticated-browser", "public-meta-scrape"}
	chain := make([]Strategy, 0, len(names))
	for _, n := range names {
		chain = append(chain, failure(n))
	}

	c := newTestCoordinator(chain...)
	result, diags, err := c.Extract(context.Background(), target())
	assert.Nil(t, result)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)

	// One diagnostic per attempted strategy, in attempted order.
	require.Len(t, diags, len(names))
	for i, n := range names {
		assert.Contains(t, diags[i], n)
	}
}

func TestSuccessFalseCountsAsFailure(t *testing.T) {
	partial := &fakeStrategy{
		name: "authenticated-api",
		result: &types.StrategyResult{
			StrategyName: "authenticated-api",
			Success:      false,
			Diagnostics:  []string{"only 12 chars of text and no photo links"},
		},
	}
	last := success("public-meta-scrape")

	c := newTestCoordinator(partial, last)
	result, diags, err := c.Extract(context.Background(), target())
	require.NoError(t, err)
	assert.Equal(t, "public-meta-scrape", result.StrategyName)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "only 12 chars")
}

func TestUnknownKind(t *testing.T) {
	c := newTestCoordinator(success("authenticated-api"))
	_, _, err := c.Extract(context.Background(), types.ExtractionTarget{URL: "https://x", Kind: types.TargetKind("bogus")})
	assert.Error(t, err)
}

func TestAttemptErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := &AttemptError{Strategy: "authenticated-api", Message: "fetch failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "authenticated-api")
}
