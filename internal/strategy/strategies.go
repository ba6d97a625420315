package strategy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/venue-scout/internal/browser"
	"github.com/jonathan/venue-scout/internal/fetch"
	"github.com/jonathan/venue-scout/internal/session"
	"github.com/jonathan/venue-scout/internal/types"
)

// minContentLength is the minimum extracted text length for a text capture
// to satisfy a strategy's success predicate. Social pages shorter than this
// are stub/login shells.
const minContentLength = 100

// Compile-time interface checks.
var (
	_ Strategy = (*APIStrategy)(nil)
	_ Strategy = (*BrowserStrategy)(nil)
	_ Strategy = (*MetaScrapeStrategy)(nil)
)

// DefaultChains builds the fixed strategy order per target kind.
func DefaultChains(api *APIStrategy, br *BrowserStrategy, meta *MetaScrapeStrategy) map[types.TargetKind][]Strategy {
	return map[types.TargetKind][]Strategy{
		types.KindProfile: {api, br, meta},
		types.KindGroup:   {br, meta},
		types.KindPhoto:   {api, br, meta},
	}
}

// APIStrategy fetches the surface's server-rendered mobile endpoint over
// plain HTTP with the session cookies attached. Much cheaper than a browser
// when the surface still honors it.
type APIStrategy struct {
	Sessions *session.Manager
	Options  *fetch.Options
}

// Name identifies the strategy in diagnostics.
func (s *APIStrategy) Name() string { return "authenticated-api" }

// Attempt fetches the mobile mirror of the target URL with session cookies.
// Success predicate: substantial page text or at least one discovered photo
// link, and no login redirect.
func (s *APIStrategy) Attempt(ctx context.Context, target types.ExtractionTarget) (*types.StrategyResult, error) {
	sess, err := s.Sessions.GetValidSession(ctx)
	if err != nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "no valid session", Cause: fmt.Errorf("%w: %w", session.ErrAuthRequired, err)}
	}

	opts := s.Options
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	reqOpts := *opts
	reqOpts.Cookie = sess.CookieHeader()

	surface := fetch.DetectSurface(target.URL)
	fetchURL := mobileMirror(target.URL, surface)

	result, err := fetch.URL(ctx, fetchURL, &reqOpts)
	if err != nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "fetch failed", Cause: err}
	}

	if hitLogin(result.URL, surface) {
		return nil, &AttemptError{Strategy: s.Name(), Message: "redirected to login", Cause: session.ErrAuthRequired}
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.SurfaceContentSelectors(surface), fetch.SurfaceNoiseSelectors(surface)...)
	if err != nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "text extraction failed", Cause: err}
	}

	subItems, _ := fetch.ExtractPhotoLinks(result.HTML, result.URL, surface)

	res := &types.StrategyResult{
		StrategyName: s.Name(),
		PageText:     text,
		SubItems:     subItems,
	}
	if len(strings.TrimSpace(text)) >= minContentLength || len(subItems) > 0 {
		res.Success = true
	} else {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("only %d chars of text and no photo links", len(text)))
	}
	return res, nil
}

// BrowserStrategy drives the headless browser with the authenticated
// session restored.
type BrowserStrategy struct {
	Sessions  *session.Manager
	Extractor *browser.Extractor
}

// Name identifies the strategy in diagnostics.
func (s *BrowserStrategy) Name() string { return "authenticated-browser" }

// Attempt renders the target in the browser. Success predicate: substantial
// page text, discovered sub-items, or a screenshot capture.
func (s *BrowserStrategy) Attempt(ctx context.Context, target types.ExtractionTarget) (*types.StrategyResult, error) {
	sess, err := s.Sessions.GetValidSession(ctx)
	if err != nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "no valid session", Cause: fmt.Errorf("%w: %w", session.ErrAuthRequired, err)}
	}

	capture, err := s.Extractor.Run(ctx, sess, target)
	if err != nil {
		// ErrAuthWall stays visible to the coordinator for re-auth routing.
		return nil, &AttemptError{Strategy: s.Name(), Message: "browser capture failed", Cause: err}
	}

	res := &types.StrategyResult{
		StrategyName: s.Name(),
		PageText:     capture.PageText,
		Screenshot:   capture.Screenshot,
		SubItems:     capture.SubItems,
	}
	if len(strings.TrimSpace(capture.PageText)) >= minContentLength ||
		len(capture.SubItems) > 0 ||
		len(capture.Screenshot) > 0 {
		res.Success = true
	} else {
		res.Diagnostics = append(res.Diagnostics, "page rendered but no usable content captured")
	}
	return res, nil
}

// MetaScrapeStrategy scrapes public og: meta tags without authentication.
// The weakest strategy: it only sees what the surface exposes to link
// previews, but it needs no session and rarely trips anti-bot checks.
type MetaScrapeStrategy struct {
	Options *fetch.Options
}

// Name identifies the strategy in diagnostics.
func (s *MetaScrapeStrategy) Name() string { return "public-meta-scrape" }

// Attempt fetches the page anonymously and reads its og: tags. Success
// predicate: any of title/description/image present.
func (s *MetaScrapeStrategy) Attempt(ctx context.Context, target types.ExtractionTarget) (*types.StrategyResult, error) {
	opts := s.Options
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	// Non-200 responses are still parsed: interstitial and error pages on
	// these surfaces often carry the page's og: tags anyway. The status
	// error is kept so an empty result reports the real cause.
	result, fetchErr := fetch.URL(ctx, target.URL, opts)
	if result == nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "fetch failed", Cause: fetchErr}
	}

	og, err := fetch.ExtractOpenGraph(result.HTML)
	if err != nil {
		return nil, &AttemptError{Strategy: s.Name(), Message: "meta parsing failed", Cause: err}
	}

	res := &types.StrategyResult{
		StrategyName: s.Name(),
		PageText:     og.Text(),
	}
	if og.Image != "" {
		res.SubItems = []string{og.Image}
	}
	switch {
	case !og.Empty():
		res.Success = true
	case fetchErr != nil:
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("no og: meta tags found (%v)", fetchErr))
	default:
		res.Diagnostics = append(res.Diagnostics, "no og: meta tags found")
	}
	return res, nil
}

// mobileMirror rewrites a surface URL to its server-rendered mobile host.
func mobileMirror(urlStr string, surface fetch.Surface) string {
	if surface != fetch.SurfaceFacebook {
		return urlStr
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	host := strings.ToLower(parsed.Host)
	if strings.HasPrefix(host, "www.") || host == "facebook.com" {
		parsed.Host = "mbasic.facebook.com"
		return parsed.String()
	}
	return urlStr
}

func hitLogin(finalURL string, surface fetch.Surface) bool {
	for _, marker := range fetch.LoginURLMarkers(surface) {
		if strings.Contains(finalURL, marker) {
			return true
		}
	}
	return false
}
