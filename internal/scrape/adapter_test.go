package scrape

import (
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/store"
)

const indeedCardHTML = `
<div class="mosaic-provider-jobcards">
  <div class="job_seen_beacon" data-jk="abc123">
    <h2 class="jobTitle"><span>VP Data Science</span></h2>
    <span data-testid="company-name">Acme</span>
    <div data-testid="text-location">Remote</div>
    <div class="job-snippet">Lead the data science org.</div>
    <div class="salary-snippet-container">$250,000 a year</div>
  </div>
</div>`

func TestIndeedExtract(t *testing.T) {
	page, err := browser.NewStaticPage(indeedCardHTML)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	cards := page.FindAll(indeedSelectors.cards...)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}

	adapter := NewIndeed(nil)
	posting, err := adapter.extract(cards[0])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if posting == nil {
		t.Fatalf("expected a posting")
	}

	if posting.Title != "VP Data Science" {
		t.Fatalf("wrong title: %q", posting.Title)
	}
	if posting.Company != "Acme" {
		t.Fatalf("wrong company: %q", posting.Company)
	}
	if posting.URL != "https://www.indeed.com/viewjob?jk=abc123" {
		t.Fatalf("wrong url: %q", posting.URL)
	}
	if !strings.Contains(posting.Description, "| $250,000 a year") {
		t.Fatalf("salary not appended to description: %q", posting.Description)
	}
	if posting.Source != "indeed" {
		t.Fatalf("wrong source: %q", posting.Source)
	}
	if posting.ScrapedAt.IsZero() {
		t.Fatalf("scraped_at not stamped")
	}
}

func TestIndeedExtractSkipsNewRibbon(t *testing.T) {
	page, err := browser.NewStaticPage(`
<div class="result">
  <h2 class="jobTitle"><span>new</span></h2>
  <span data-testid="company-name">Acme</span>
</div>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	adapter := NewIndeed(nil)
	posting, err := adapter.extract(page.FindAll(indeedSelectors.cards...)[0])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if posting != nil {
		t.Fatalf("ribbon-only card must be dropped, got %+v", posting)
	}
}

func TestIndeedJobURLFromHref(t *testing.T) {
	page, err := browser.NewStaticPage(`
<div class="result">
  <h2 class="jobTitle"><a href="/rc/clk?jk=def456&from=web"><span>AI Director</span></a></h2>
</div>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	adapter := NewIndeed(nil)
	card := page.FindAll(indeedSelectors.cards...)[0]
	if got := adapter.jobURL(card); got != "https://www.indeed.com/viewjob?jk=def456" {
		t.Fatalf("wrong job url: %q", got)
	}
}

func TestLinkedInExtract(t *testing.T) {
	page, err := browser.NewStaticPage(`
<li class="job-card-container" data-job-id="789">
  <strong>Head of Machine Learning</strong>
  <span class="artdeco-entity-lockup__subtitle">Beta</span>
  <span class="artdeco-entity-lockup__caption">Remote</span>
</li>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	adapter := NewLinkedIn(nil)
	card := page.FindAll(linkedInSelectors.cards...)[0]

	posting, err := adapter.extract(page, card)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if posting == nil {
		t.Fatalf("expected a posting")
	}

	if posting.Title != "Head of Machine Learning" {
		t.Fatalf("wrong title: %q", posting.Title)
	}
	if posting.URL != "https://www.linkedin.com/jobs/view/789/" {
		t.Fatalf("job key fallback url wrong: %q", posting.URL)
	}
	if posting.Source != "linkedin" {
		t.Fatalf("wrong source: %q", posting.Source)
	}
}

func TestLinkedInExtractCanonicalizesLink(t *testing.T) {
	page, err := browser.NewStaticPage(`
<li class="job-card-container">
  <strong>Director of Analytics</strong>
  <a href="/jobs/view/101/?refId=zz&trackingId=yy">view</a>
</li>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	adapter := NewLinkedIn(nil)
	posting, err := adapter.extract(page, page.FindAll(linkedInSelectors.cards...)[0])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if posting.URL != "https://www.linkedin.com/jobs/view/101/" {
		t.Fatalf("tracking params must be stripped: %q", posting.URL)
	}
}

func TestLinkedInSearchURL(t *testing.T) {
	adapter := NewLinkedIn(nil)

	cases := []struct {
		window string
		tpr    string
	}{
		{store.TimePast24Hour, "r86400"},
		{store.TimePastWeek, "r604800"},
		{store.TimePastMonth, "r2592000"},
		{store.TimeAny, ""},
	}

	for _, tc := range cases {
		u, err := url.Parse(adapter.searchURL("VP data science", tc.window))
		if err != nil {
			t.Fatalf("parse search url: %v", err)
		}
		if got := u.Query().Get("keywords"); got != "VP data science" {
			t.Fatalf("wrong keywords: %q", got)
		}
		if got := u.Query().Get("f_TPR"); got != tc.tpr {
			t.Fatalf("window %q: f_TPR = %q, want %q", tc.window, got, tc.tpr)
		}
	}
}

func TestIndeedSearchURL(t *testing.T) {
	adapter := NewIndeed(nil)

	u, err := url.Parse(adapter.searchURL("data science director", store.TimePastWeek))
	if err != nil {
		t.Fatalf("parse search url: %v", err)
	}

	if got := u.Query().Get("q"); got != "data science director" {
		t.Fatalf("wrong query: %q", got)
	}
	if got := u.Query().Get("sc"); got != remoteFilter {
		t.Fatalf("remote filter missing: %q", got)
	}
	if got := u.Query().Get("fromage"); got != "7" {
		t.Fatalf("wrong fromage: %q", got)
	}
}

func TestClipRunesKeepsMultiByteTextIntact(t *testing.T) {
	long := strings.Repeat("é", 600)

	got := clipRunes(long, 500)
	if !utf8.ValidString(got) {
		t.Fatalf("clipped text is not valid utf-8")
	}
	if n := utf8.RuneCountInString(got); n != 500 {
		t.Fatalf("clipped to %d runes, want 500", n)
	}

	if got := clipRunes("short", 500); got != "short" {
		t.Fatalf("text under the limit must pass through, got %q", got)
	}
}

func TestIndeedExtractClipsDescriptionOnRuneBoundary(t *testing.T) {
	page, err := browser.NewStaticPage(`
<div class="result" data-jk="jk9">
  <h2 class="jobTitle"><span>Chef de la Science des Données</span></h2>
  <span data-testid="company-name">Acme</span>
  <div class="job-snippet">` + strings.Repeat("é", 600) + `</div>
</div>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	adapter := NewIndeed(nil)
	posting, err := adapter.extract(page.FindAll(indeedSelectors.cards...)[0])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if posting == nil {
		t.Fatalf("expected a posting")
	}

	if !utf8.ValidString(posting.Description) {
		t.Fatalf("description is not valid utf-8: %q", posting.Description)
	}
	if n := utf8.RuneCountInString(posting.Description); n != 500 {
		t.Fatalf("description clipped to %d runes, want 500", n)
	}
}

type consentButton struct {
	label  string
	clicks int
}

func (b *consentButton) Text() string                      { return b.label }
func (b *consentButton) Attr(string) string                { return "" }
func (b *consentButton) Value() string                     { return "" }
func (b *consentButton) Visible() bool                     { return true }
func (b *consentButton) Fill(string) error                 { return nil }
func (b *consentButton) Click() error                      { b.clicks++; return nil }
func (b *consentButton) Find(...string) browser.Element    { return nil }
func (b *consentButton) FindAll(string) []browser.Element  { return nil }

type consentPage struct {
	direct    *consentButton
	container *consentContainer
}

type consentContainer struct {
	consentButton
	buttons []*consentButton
}

func (c *consentContainer) FindAll(sel string) []browser.Element {
	if sel != "button" {
		return nil
	}
	out := make([]browser.Element, 0, len(c.buttons))
	for _, b := range c.buttons {
		out = append(out, b)
	}
	return out
}

func (p *consentPage) Goto(string) error { return nil }
func (p *consentPage) URL() string       { return "" }

func (p *consentPage) Find(sels ...string) browser.Element {
	for _, sel := range sels {
		if p.direct != nil && sel == "#onetrust-accept-btn-handler" {
			return p.direct
		}
		if p.container != nil && sel == ".cookie-banner" {
			return p.container
		}
	}
	return nil
}

func (p *consentPage) FindAll(...string) []browser.Element { return nil }
func (p *consentPage) Scroll(int)                          {}
func (p *consentPage) Wait(time.Duration)                  {}
func (p *consentPage) Screenshot(string) error             { return nil }
func (p *consentPage) Closed() bool                        { return true }

func TestDismissConsentDirectButton(t *testing.T) {
	btn := &consentButton{label: "Accept"}
	page := &consentPage{direct: btn}

	if !DismissConsent(page) {
		t.Fatalf("expected the direct button to dismiss the banner")
	}
	if btn.clicks != 1 {
		t.Fatalf("expected 1 click, got %d", btn.clicks)
	}
}

func TestDismissConsentLabelMatch(t *testing.T) {
	accept := &consentButton{label: "Accept all"}
	other := &consentButton{label: "Manage settings"}
	page := &consentPage{container: &consentContainer{buttons: []*consentButton{other, accept}}}

	if !DismissConsent(page) {
		t.Fatalf("expected the labeled button to dismiss the banner")
	}
	if accept.clicks != 1 || other.clicks != 0 {
		t.Fatalf("wrong button clicked: accept=%d other=%d", accept.clicks, other.clicks)
	}
}

func TestDismissConsentNonInteractivePage(t *testing.T) {
	page, err := browser.NewStaticPage(`<div id="onetrust-banner-sdk"><button>Accept</button></div>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	// Static pages cannot click; the dismissal must fail quietly.
	if DismissConsent(page) {
		t.Fatalf("a non-interactive page must never report a dismissal")
	}
}
