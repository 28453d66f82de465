package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/jobscout/jobscout/internal/browser"
)

const loginURL = "https://www.linkedin.com/login"

var (
	loginUserSelectors = selectors{"input[name='session_key']"}
	loginPassSelectors = selectors{"input[name='session_password']"}
	loginSubmitButton  = selectors{"button[type='submit']"}

	// URL fragments that mark a verification challenge. A challenge means
	// the human has to log in manually; the attempt is never retried.
	challengeMarkers = []string{"checkpoint", "challenge"}
)

// Login authenticates the page against the listing site. It makes exactly
// one attempt: bad credentials, a detected verification challenge or a
// timeout all fail the session without retry.
func Login(page browser.Page, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("login credentials are not configured")
	}

	if err := page.Goto(loginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	page.Wait(3 * time.Second)

	DismissConsent(page)

	// An already-authenticated session lands on the feed.
	if LoggedInURL(page.URL()) {
		return nil
	}

	user := page.Find(loginUserSelectors...)
	pass := page.Find(loginPassSelectors...)
	if user == nil || pass == nil {
		return fmt.Errorf("login form not found")
	}

	if err := user.Fill(email); err != nil {
		return fmt.Errorf("fill login: %w", err)
	}
	if err := pass.Fill(password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	submit := page.Find(loginSubmitButton...)
	if submit == nil {
		return fmt.Errorf("login submit button not found")
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	page.Wait(5 * time.Second)

	url := page.URL()
	for _, marker := range challengeMarkers {
		if strings.Contains(url, marker) {
			return fmt.Errorf("verification challenge detected, log in manually first")
		}
	}

	if !LoggedInURL(url) && !strings.Contains(url, "linkedin.com") {
		return fmt.Errorf("login did not reach an authenticated page: %s", url)
	}

	return nil
}

// LoggedInURL reports whether the URL belongs to an authenticated surface.
func LoggedInURL(url string) bool {
	return strings.Contains(url, "/feed") || strings.Contains(url, "/jobs")
}
