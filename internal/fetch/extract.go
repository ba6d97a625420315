// Package fetch - extract.go provides DOM extraction helpers for meta tags
// and photo link discovery.
package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OpenGraph holds the relevant og:/meta properties from a page head.
// Public pages expose title, description, and image even behind auth walls.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// Empty reports whether nothing useful was found.
func (og *OpenGraph) Empty() bool {
	return og.Title == "" && og.Description == "" && og.Image == ""
}

// Text renders the meta content as plain text for normalization.
func (og *OpenGraph) Text() string {
	var sb strings.Builder
	if og.Title != "" {
		sb.WriteString(og.Title)
		sb.WriteString("\n")
	}
	if og.Description != "" {
		sb.WriteString(og.Description)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// ExtractOpenGraph parses og: meta tags from HTML.
func ExtractOpenGraph(html string) (*OpenGraph, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	og := &OpenGraph{}
	doc.Find("meta[property], meta[name]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if prop == "" {
			prop, _ = s.Attr("name")
		}
		content, _ := s.Attr("content")
		if content == "" {
			return
		}
		switch prop {
		case "og:title":
			og.Title = content
		case "og:description", "description":
			if og.Description == "" {
				og.Description = content
			}
		case "og:image":
			og.Image = content
		case "og:url":
			og.URL = content
		}
	})

	return og, nil
}

// ExtractPhotoLinks extracts photo permalinks from HTML using the surface's
// photo anchor selectors. Relative hrefs are resolved against baseURL,
// fragments dropped, and duplicates removed while preserving first-seen
// order so worker indices stay stable.
func ExtractPhotoLinks(html string, baseURL string, surface Surface) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	linkSet := make(map[string]bool)
	links := make([]string, 0)

	selector := strings.Join(SurfacePhotoSelectors(surface), ", ")
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		absolute := base.ResolveReference(linkURL)
		absolute.Fragment = ""
		urlString := strings.TrimSuffix(absolute.String(), "/")

		if !linkSet[urlString] {
			linkSet[urlString] = true
			links = append(links, urlString)
		}
	})

	return links, nil
}
