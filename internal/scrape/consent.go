package scrape

import (
	"strings"
	"time"

	"github.com/jobscout/jobscout/internal/browser"
)

// Consent interstitial locators. Button selectors are tried first, then
// buttons inside known banner containers are matched by their label text.
var (
	consentButtons = selectors{
		"button[action-type='ACCEPT']",
		"[data-tracking-control-name='ga-cookie.consent.accept.v4']",
		"#onetrust-accept-btn-handler",
		"#accept-cookie-consent",
		".cookie-consent-accept",
		"[data-testid='cookie-accept']",
		"button[id*='accept'][id*='cookie']",
		"button[class*='accept'][class*='cookie']",
	}

	consentContainers = selectors{
		"#onetrust-banner-sdk",
		".cookie-banner",
		".cookie-consent",
		"[class*='cookie']",
		"[id*='cookie']",
		".gdpr",
		"#gdpr",
	}

	consentLabels = map[string]bool{
		"accept":         true,
		"accept all":     true,
		"accept cookies": true,
		"agree":          true,
		"i agree":        true,
		"ok":             true,
		"got it":         true,
		"allow":          true,
		"allow all":      true,
	}
)

// DismissConsent makes a single attempt to dismiss a consent interstitial.
// It never loops and never blocks progress: a failed dismissal just reports
// false and the caller carries on.
func DismissConsent(page browser.Page) bool {
	if btn := page.Find(consentButtons...); btn != nil && btn.Visible() {
		if err := btn.Click(); err == nil {
			page.Wait(time.Second)
			return true
		}
	}

	for _, container := range consentContainers {
		root := page.Find(container)
		if root == nil || !root.Visible() {
			continue
		}
		for _, btn := range root.FindAll("button") {
			if !btn.Visible() {
				continue
			}
			label := strings.ToLower(strings.TrimSpace(btn.Text()))
			if !consentLabels[label] {
				continue
			}
			if err := btn.Click(); err == nil {
				page.Wait(time.Second)
				return true
			}
		}
	}

	return false
}
