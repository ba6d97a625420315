// Package browser drives a headless browser to authenticate, navigate,
// scroll, and capture content from surfaces that render nothing useful over
// plain HTTP.
package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/venue-scout/internal/fetch"
	"github.com/jonathan/venue-scout/internal/session"
	"github.com/jonathan/venue-scout/internal/types"
)

// ErrAuthWall signals that the surface redirected to its login wall. The
// coordinator routes this back through the session subsystem instead of
// treating it as a plain navigation failure.
var ErrAuthWall = fmt.Errorf("authentication wall detected")

// Config controls browser behavior.
type Config struct {
	Headless     bool
	Timeout      time.Duration
	ScrollCycles int           // scroll-and-wait passes to trigger lazy loading
	ScrollWait   time.Duration // wait after each scroll
	UserAgent    string
	Verbose      bool
}

// DefaultConfig returns sensible defaults for extraction runs.
func DefaultConfig() *Config {
	return &Config{
		Headless:     true,
		Timeout:      90 * time.Second,
		ScrollCycles: 4,
		ScrollWait:   2 * time.Second,
		UserAgent:    fetch.DefaultUserAgent,
	}
}

// CaptureResult holds everything captured from a navigation.
type CaptureResult struct {
	FinalURL         string
	PageText         string
	HTML             string
	Screenshot       []byte
	SubItems         []string
	AuthWallDetected bool
}

// Extractor drives headless Chrome for a single navigation at a time.
type Extractor struct {
	cfg *Config
}

// New creates an Extractor.
func New(cfg *Config) *Extractor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Extractor{cfg: cfg}
}

func (e *Extractor) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", e.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(e.cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, e.cfg.Timeout)

	cancel := func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	}
	return browserCtx, cancel
}

// restoreCookies injects the persisted session cookies before navigation.
func restoreCookies(sess *session.Session, host string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("failed to enable network domain: %w", err)
		}
		for _, c := range sess.Cookies {
			domain := strings.TrimPrefix(c.Domain, ".")
			if domain == "" {
				domain = host
			}
			path := c.Path
			if path == "" {
				path = "/"
			}
			setter := network.SetCookie(c.Name, c.Value).
				WithDomain(domain).
				WithPath(path).
				WithSecure(true).
				WithHTTPOnly(true)
			if c.Expires > 0 {
				ts := cdp.TimeSinceEpoch(time.Unix(c.Expires, 0))
				setter = setter.WithExpires(&ts)
			}
			if err := setter.Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// scrollCycles performs bounded scroll-and-wait passes to trigger lazy-loaded
// content.
func scrollCycles(n int, wait time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for i := 0; i < n; i++ {
			if err := chromedp.Evaluate(`window.scrollBy(0, document.body.scrollHeight)`, nil).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Sleep(wait).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func hitLoginWall(location string, surface fetch.Surface) bool {
	for _, marker := range fetch.LoginURLMarkers(surface) {
		if strings.Contains(location, marker) {
			return true
		}
	}
	return false
}

// Run restores the session into the browser, navigates to the target,
// scrolls to trigger lazy content, and captures page text plus either a
// screenshot (single-photo targets) or discovered photo links. An auth wall
// returns a CaptureResult with AuthWallDetected set and ErrAuthWall.
func (e *Extractor) Run(ctx context.Context, sess *session.Session, target types.ExtractionTarget) (*CaptureResult, error) {
	surface := fetch.DetectSurface(target.URL)
	host := hostOf(target.URL)

	if e.cfg.Verbose {
		log.Printf("[BROWSER] navigating to %s (%s, surface=%s)", target.URL, target.Kind, surface)
	}

	browserCtx, cancel := e.newBrowserContext(ctx)
	defer cancel()

	actions := []chromedp.Action{}
	if sess != nil {
		actions = append(actions, restoreCookies(sess, host))
	}

	var html, location string
	actions = append(actions,
		chromedp.Navigate(target.URL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		scrollCycles(e.cfg.ScrollCycles, e.cfg.ScrollWait),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)

	var screenshot []byte
	if target.Kind == types.KindPhoto {
		actions = append(actions, chromedp.CaptureScreenshot(&screenshot))
	}

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser navigation failed: %w", err)
	}

	result := &CaptureResult{
		FinalURL:   location,
		HTML:       html,
		Screenshot: screenshot,
	}

	if hitLoginWall(location, surface) {
		result.AuthWallDetected = true
		if e.cfg.Verbose {
			log.Printf("[BROWSER] auth wall at %s", location)
		}
		return result, ErrAuthWall
	}

	text, err := fetch.ExtractMainText(html, fetch.SurfaceContentSelectors(surface), fetch.SurfaceNoiseSelectors(surface)...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page text: %w", err)
	}
	result.PageText = text

	if target.Kind != types.KindPhoto {
		links, err := fetch.ExtractPhotoLinks(html, result.FinalURL, surface)
		if err == nil {
			result.SubItems = links
		}
	}

	if e.cfg.Verbose {
		log.Printf("[BROWSER] captured %d chars of text, %d sub-items", len(result.PageText), len(result.SubItems))
	}

	return result, nil
}

func hostOf(urlStr string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(urlStr, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}
