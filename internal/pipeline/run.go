// Package pipeline wires the extraction subsystems into one runnable flow.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jonathan/venue-scout/internal/browser"
	"github.com/jonathan/venue-scout/internal/config"
	"github.com/jonathan/venue-scout/internal/creds"
	"github.com/jonathan/venue-scout/internal/fetch"
	"github.com/jonathan/venue-scout/internal/llm"
	"github.com/jonathan/venue-scout/internal/normalize"
	"github.com/jonathan/venue-scout/internal/observability"
	"github.com/jonathan/venue-scout/internal/pool"
	"github.com/jonathan/venue-scout/internal/session"
	"github.com/jonathan/venue-scout/internal/strategy"
	"github.com/jonathan/venue-scout/internal/types"
	"github.com/jonathan/venue-scout/internal/validate"
)

// Options holds configuration for building a Runner.
type Options struct {
	Config *config.Config
	Broker *creds.Broker // interactive credential channel; required
	Out    io.Writer     // verbose output destination, defaults to stdout
}

// Runner owns the wired subsystems for extraction runs. Build one with
// NewRunner, run any number of Extract calls, then Close.
type Runner struct {
	cfg         *config.Config
	printer     *observability.Printer
	client      llm.Client
	store       *session.Store
	sessions    *session.Manager
	coordinator *strategy.Coordinator
	normalizer  *normalize.Normalizer
	workers     *pool.Pool
}

// NewRunner wires the session store, browser extractor, strategy chain,
// worker pool, and normalizer from the given configuration.
func NewRunner(ctx context.Context, opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Broker == nil {
		return nil, fmt.Errorf("credential broker is required")
	}
	cfg := opts.Config
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	store, err := session.Load(cfg.SessionFile)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("loading session store: %w", err)
	}

	browserCfg := browser.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browserCfg.Verbose = cfg.Verbose
	if cfg.ScrollCycles > 0 {
		browserCfg.ScrollCycles = cfg.ScrollCycles
	}
	extractor := browser.New(browserCfg)

	sessions := session.NewManager(session.ManagerOptions{
		Store:         store,
		Auth:          extractor,
		Broker:        opts.Broker,
		EnvEmail:      cfg.Email,
		EnvPassword:   cfg.Password,
		PromptTimeout: time.Duration(cfg.PromptTimeoutSec) * time.Second,
		Verbose:       cfg.Verbose,
	})

	api := &strategy.APIStrategy{Sessions: sessions}
	br := &strategy.BrowserStrategy{Sessions: sessions, Extractor: extractor}
	meta := &strategy.MetaScrapeStrategy{}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 1)
	}

	coordinator := strategy.NewCoordinator(strategy.CoordinatorOptions{
		Chains:         strategy.DefaultChains(api, br, meta),
		Sessions:       sessions,
		AttemptTimeout: time.Duration(cfg.AttemptTimeoutSec) * time.Second,
		Limiter:        limiter,
		Verbose:        cfg.Verbose,
	})

	return &Runner{
		cfg:         cfg,
		printer:     observability.NewPrinter(out),
		client:      client,
		store:       store,
		sessions:    sessions,
		coordinator: coordinator,
		normalizer:  normalize.New(client, cfg.Verbose),
		workers:     pool.New(cfg.WorkerCap, cfg.Verbose),
	}, nil
}

// Close releases the LLM client connection.
func (r *Runner) Close() error {
	return r.client.Close()
}

// Extract runs the full flow for one target: strategy fallback, sub-item
// fan-out, normalization, and time correction. The returned AggregateResult
// always carries the diagnostics trail, including on terminal failure.
func (r *Runner) Extract(ctx context.Context, urlStr string, kind types.TargetKind) (*types.AggregateResult, error) {
	if !types.ValidKind(kind) {
		return nil, fmt.Errorf("unknown target kind %q", kind)
	}

	target := types.ExtractionTarget{URL: urlStr, Kind: kind}
	agg := &types.AggregateResult{
		RunID:  uuid.NewString(),
		Target: target,
	}

	result, diagnostics, err := r.coordinator.Extract(ctx, target)
	agg.Diagnostics = diagnostics
	if err != nil {
		return agg, fmt.Errorf("extraction failed for %s: %w", urlStr, err)
	}

	agg.Strategy = result.StrategyName
	agg.Succeeded = true

	records, noise := r.normalizeResult(ctx, target, result)
	agg.Diagnostics = append(agg.Diagnostics, noise...)

	// Time correction and day canonicalization over everything that survived
	// normalization. Candidate records its corrections on the returned
	// record's Issues.
	for i := range records {
		records[i], _ = validate.Candidate(records[i])
	}
	agg.Records = records

	if r.cfg.Verbose {
		r.printer.PrintAggregateResult(agg)
	}
	return agg, nil
}

// normalizeResult turns a raw strategy capture into schedule candidates.
// The main capture is normalized first, then discovered sub-items fan out
// through the worker pool. Sub-item failures degrade to diagnostics instead
// of failing the run.
func (r *Runner) normalizeResult(ctx context.Context, target types.ExtractionTarget, result *types.StrategyResult) ([]types.ScheduleRecordCandidate, []string) {
	var records []types.ScheduleRecordCandidate
	var noise []string

	nctx := normalize.Context{
		SourceURL: target.URL,
		Kind:      string(target.Kind),
		Origin:    originFor(result.StrategyName),
	}

	content := normalize.Content{Text: result.PageText}
	if strings.TrimSpace(result.PageText) == "" && len(result.Screenshot) > 0 {
		content = normalize.Content{Image: result.Screenshot, ImageFormat: "png"}
	}
	if strings.TrimSpace(content.Text) != "" || len(content.Image) > 0 {
		cands, err := r.normalizer.Normalize(ctx, content, nctx)
		if err != nil {
			noise = append(noise, fmt.Sprintf("normalize %s: %v", target.URL, err))
		} else {
			records = append(records, cands...)
		}
	}

	if len(result.SubItems) > 0 {
		if r.cfg.Verbose {
			fmt.Printf("[PIPELINE] Fanning out %d sub-items\n", len(result.SubItems))
		}
		results := r.workers.ProcessAll(ctx, result.SubItems, r.photoWorker())
		for _, wr := range results {
			if wr.Err != nil {
				noise = append(noise, fmt.Sprintf("sub-item %d: %v", wr.Index, wr.Err))
				continue
			}
			records = append(records, wr.Candidates...)
		}
	}

	return records, noise
}

// photoWorker builds the WorkFunc for one extraction run. Each item is a
// discovered photo URL: the asset is downloaded following redirects, and
// the candidate's source URL is the resolved content URL that was actually
// fetched, never the original share link.
func (r *Runner) photoWorker() pool.WorkFunc {
	return func(ctx context.Context, item types.WorkItem) types.WorkResult {
		asset, err := fetch.DownloadAsset(ctx, item.URL, fetch.DefaultOptions())
		if err != nil {
			return types.WorkResult{Index: item.Index, Err: err}
		}

		format, ok := asset.ImageFormat()
		if !ok {
			return types.WorkResult{
				Index:             item.Index,
				ResolvedSourceURL: asset.URL,
				Err:               fmt.Errorf("asset %s is not an image (%s)", asset.URL, asset.ContentType),
			}
		}

		cands, err := r.normalizer.Normalize(ctx,
			normalize.Content{Image: asset.Bytes, ImageFormat: format},
			normalize.Context{
				SourceURL: asset.URL,
				Kind:      string(types.KindPhoto),
				Origin:    normalize.OriginFreeText,
			})
		if err != nil {
			return types.WorkResult{Index: item.Index, ResolvedSourceURL: asset.URL, Err: err}
		}

		return types.WorkResult{
			Index:             item.Index,
			ResolvedSourceURL: asset.URL,
			Candidates:        cands,
		}
	}
}

// originFor maps a strategy to the confidence origin of its content. Meta
// scraping reads explicit og: fields; everything else is free-text page
// content.
func originFor(strategyName string) normalize.FieldOrigin {
	if strategyName == "public-meta-scrape" {
		return normalize.OriginStructured
	}
	return normalize.OriginFreeText
}
