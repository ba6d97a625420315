// Package fetch - platform.go provides surface detection and surface-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Surface represents a known social-media surface.
type Surface string

const (
	// SurfaceFacebook covers facebook.com and its mobile mirrors
	SurfaceFacebook Surface = "facebook"
	// SurfaceInstagram covers instagram.com
	SurfaceInstagram Surface = "instagram"
	// SurfaceUnknown is an unrecognized surface
	SurfaceUnknown Surface = "unknown"
)

// DetectSurface identifies the social surface from a URL.
func DetectSurface(urlStr string) Surface {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SurfaceUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "facebook.com") ||
		strings.Contains(host, "fb.com") ||
		strings.Contains(host, "fb.watch") {
		return SurfaceFacebook
	}

	if strings.Contains(host, "instagram.com") {
		return SurfaceInstagram
	}

	return SurfaceUnknown
}

// SurfaceContentSelectors returns content selectors for a surface's main
// feed/post region.
func SurfaceContentSelectors(surface Surface) []string {
	switch surface {
	case SurfaceFacebook:
		return []string{
			"[role='main']",
			"[data-pagelet='ProfileTimeline']",
			"[data-pagelet='GroupFeed']",
			"#content",
			".story_body_container", // mbasic
			"main",
		}
	case SurfaceInstagram:
		return []string{
			"main[role='main']",
			"article",
			"main",
		}
	default:
		return []string{"main", "article", ".content", "#content"}
	}
}

// SurfaceNoiseSelectors returns noise exclusion selectors for a surface.
func SurfaceNoiseSelectors(surface Surface) []string {
	common := []string{
		"[role='banner']",
		"[role='navigation']",
		"[role='complementary']",
		"[aria-label='Sponsored']",
		".login_form_container",
		"form[action*='login']",
		"[data-testid='cookie-policy-manage-dialog']",
	}

	switch surface {
	case SurfaceFacebook:
		return append(common,
			"[data-pagelet='RightRail']",
			"[aria-label='Create a post']",
			"#pagelet_sidebar",
		)
	case SurfaceInstagram:
		return append(common, "section nav", "[role='presentation'] header")
	default:
		return common
	}
}

// SurfacePhotoSelectors returns anchor selectors whose hrefs point at
// individual photos within a media section.
func SurfacePhotoSelectors(surface Surface) []string {
	switch surface {
	case SurfaceFacebook:
		return []string{
			"a[href*='/photo/']",
			"a[href*='/photo.php']",
			"a[href*='fbid=']",
			"a[href*='/photos/']",
		}
	case SurfaceInstagram:
		return []string{
			"a[href*='/p/']",
		}
	default:
		return []string{"a[href*='photo']", "a img[src]"}
	}
}

// LoginURLMarkers returns URL substrings that indicate the surface has
// redirected to its login wall.
func LoginURLMarkers(surface Surface) []string {
	switch surface {
	case SurfaceFacebook:
		return []string{"/login", "login.php", "/checkpoint"}
	case SurfaceInstagram:
		return []string{"/accounts/login"}
	default:
		return []string{"/login"}
	}
}
