// Package browser - login.go performs a browser-driven login and captures
// the resulting session cookies.
package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/venue-scout/internal/session"
)

// loginURL is the surface's login form.
const loginURL = "https://www.facebook.com/login"

// Login navigates to the login form, submits the supplied credentials once,
// and builds a Session from the cookies the browser ends up holding. The
// caller is responsible for discarding the plaintext credentials.
func (e *Extractor) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	if e.cfg.Verbose {
		log.Printf("[BROWSER] attempting login for %s", email)
	}

	browserCtx, cancel := e.newBrowserContext(ctx)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`input#email`),
		chromedp.SendKeys(`input#email`, email),
		chromedp.SendKeys(`input#pass`, password),
		chromedp.Click(`button[name="login"]`),
		// Give the redirect and cookie issuance time to settle.
		chromedp.Sleep(5*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().WithURLs([]string{"https://www.facebook.com/"}).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser login failed: %w", err)
	}

	sess := &session.Session{SavedAt: time.Now().Unix()}
	for _, c := range cookies {
		expires := session.NeverExpires
		if c.Expires > 0 {
			expires = int64(c.Expires)
		}
		sess.Cookies = append(sess.Cookies, session.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: expires,
		})
	}

	// A login that did not produce the required cookies did not succeed,
	// whatever the page claimed.
	if err := sess.Validate(time.Now()); err != nil {
		return nil, fmt.Errorf("login did not produce a usable session: %w", err)
	}

	if e.cfg.Verbose {
		log.Printf("[BROWSER] login succeeded, captured %d cookies", len(sess.Cookies))
	}
	return sess, nil
}
