// Package session persists and validates the authenticated cookie session
// used to access the source surface.
package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NeverExpires is the sentinel expiry for cookies without an expiration.
const NeverExpires int64 = -1

// RequiredCookies is the fixed set of cookie names the surface requires for
// an authenticated session. A session missing any of them is incomplete
// regardless of expiry.
var RequiredCookies = []string{"c_user", "xs", "datr", "fr"}

// Cookie is a single named session token with an optional absolute expiry
// in epoch seconds.
type Cookie struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Domain  string `json:"domain,omitempty"`
	Path    string `json:"path,omitempty"`
	Expires int64  `json:"expires,omitempty"`
}

// Expired reports whether the cookie has an expiry in the past.
func (c Cookie) Expired(now time.Time) bool {
	if c.Expires == NeverExpires || c.Expires == 0 {
		return false
	}
	return c.Expires < now.Unix()
}

// Session is a named collection of cookies captured after a successful
// login. Sessions are replaced wholesale, never partially mutated.
type Session struct {
	Cookies []Cookie `json:"cookies"`
	SavedAt int64    `json:"saved_at,omitempty"`
}

// ExpiredError reports cookies whose expiry timestamp is in the past.
type ExpiredError struct {
	Names []string
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("session expired: cookies past expiry: %s", strings.Join(e.Names, ", "))
}

// IncompleteError reports required cookie names missing from the session.
// Distinct from ExpiredError so diagnostics can tell the two apart.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("session incomplete: missing required cookies: %s", strings.Join(e.Missing, ", "))
}

// Get returns the cookie with the given name, if present.
func (s *Session) Get(name string) (Cookie, bool) {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Validate checks the session against the required-cookie set and per-cookie
// expiry. Missing required cookies are reported before expiry so the two
// failure classes stay distinct.
func (s *Session) Validate(now time.Time) error {
	if s == nil || len(s.Cookies) == 0 {
		return &IncompleteError{Missing: append([]string(nil), RequiredCookies...)}
	}

	var missing []string
	for _, name := range RequiredCookies {
		if _, ok := s.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}

	var expired []string
	for _, c := range s.Cookies {
		if c.Expired(now) {
			expired = append(expired, c.Name)
		}
	}
	if len(expired) > 0 {
		sort.Strings(expired)
		return &ExpiredError{Names: expired}
	}

	return nil
}

// CookieHeader renders the session as an HTTP Cookie header value.
func (s *Session) CookieHeader() string {
	pairs := make([]string, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// Encode serializes the session to its persisted JSON form.
func (s *Session) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses a persisted session blob.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session blob: %w", err)
	}
	return &s, nil
}
