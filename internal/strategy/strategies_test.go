package strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/venue-scout/internal/fetch"
	"github.com/jonathan/venue-scout/internal/types"
)

func TestMetaScrapeReportsHTTPStatusWhenNoTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><head><title>Not Found</title></head></html>")
	}))
	defer srv.Close()

	s := &MetaScrapeStrategy{}
	res, err := s.Attempt(context.Background(), types.ExtractionTarget{URL: srv.URL, Kind: types.KindProfile})
	require.NoError(t, err)

	assert.False(t, res.Success)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "no og: meta tags found")
	assert.Contains(t, res.Diagnostics[0], "HTTP status 404")
}

func TestMetaScrapeParsesTagsOnErrorPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><head><meta property="og:title" content="Mel's Tavern"/></head></html>`)
	}))
	defer srv.Close()

	s := &MetaScrapeStrategy{}
	res, err := s.Attempt(context.Background(), types.ExtractionTarget{URL: srv.URL, Kind: types.KindProfile})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Contains(t, res.PageText, "Mel's Tavern")
}

func TestMobileMirror(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		surface  fetch.Surface
		expected string
	}{
		{
			"www rewritten",
			"https://www.facebook.com/somevenue/photos",
			fetch.SurfaceFacebook,
			"https://mbasic.facebook.com/somevenue/photos",
		},
		{
			"bare host rewritten",
			"https://facebook.com/somevenue",
			fetch.SurfaceFacebook,
			"https://mbasic.facebook.com/somevenue",
		},
		{
			"mobile host untouched",
			"https://m.facebook.com/somevenue",
			fetch.SurfaceFacebook,
			"https://m.facebook.com/somevenue",
		},
		{
			"instagram untouched",
			"https://www.instagram.com/p/Cxyz/",
			fetch.SurfaceInstagram,
			"https://www.instagram.com/p/Cxyz/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mobileMirror(tt.url, tt.surface))
		})
	}
}

func TestDefaultChainsOrder(t *testing.T) {
	api := &APIStrategy{}
	br := &BrowserStrategy{}
	meta := &MetaScrapeStrategy{}
	chains := DefaultChains(api, br, meta)

	profile := chains["profile"]
	if assert.Len(t, profile, 3) {
		assert.Equal(t, "authenticated-api", profile[0].Name())
		assert.Equal(t, "authenticated-browser", profile[1].Name())
		assert.Equal(t, "public-meta-scrape", profile[2].Name())
	}

	group := chains["group"]
	if assert.Len(t, group, 2) {
		assert.Equal(t, "authenticated-browser", group[0].Name())
	}

	assert.Len(t, chains["single-photo"], 3)
}
