package apply

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/browser"
)

type fakeElement struct {
	text    string
	attrs   map[string]string
	value   string
	visible bool
	fills   []string
	clicks  int
}

func (e *fakeElement) Text() string            { return e.text }
func (e *fakeElement) Attr(name string) string { return e.attrs[name] }
func (e *fakeElement) Value() string           { return e.value }
func (e *fakeElement) Visible() bool           { return e.visible }

func (e *fakeElement) Fill(v string) error {
	e.fills = append(e.fills, v)
	e.value = v
	return nil
}

func (e *fakeElement) Click() error { e.clicks++; return nil }

func (e *fakeElement) Find(...string) browser.Element   { return nil }
func (e *fakeElement) FindAll(string) []browser.Element { return nil }

// radioGroup fakes a fieldset with a legend and option labels.
type radioGroup struct {
	fakeElement
	legend *fakeElement
	labels []*fakeElement
}

func (g *radioGroup) Find(selectors ...string) browser.Element {
	for _, sel := range selectors {
		if sel == "legend" || sel == "span[aria-hidden='true']" {
			return g.legend
		}
	}
	return nil
}

func (g *radioGroup) FindAll(sel string) []browser.Element {
	if sel != "label" {
		return nil
	}
	out := make([]browser.Element, 0, len(g.labels))
	for _, label := range g.labels {
		out = append(out, label)
	}
	return out
}

type fakePage struct {
	url      string
	loggedIn bool
	closed   bool
	elements map[string][]*fakeElement
	groups   []*radioGroup
	shots    []string
}

func (p *fakePage) Goto(url string) error {
	p.url = url
	if p.loggedIn && strings.Contains(url, "/login") {
		p.url = "https://www.linkedin.com/feed/"
	}
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Find(selectors ...string) browser.Element {
	for _, sel := range selectors {
		if els := p.elements[sel]; len(els) > 0 {
			return els[0]
		}
	}
	return nil
}

func (p *fakePage) FindAll(selectors ...string) []browser.Element {
	for _, sel := range selectors {
		if sel == "fieldset" && len(p.groups) > 0 {
			out := make([]browser.Element, 0, len(p.groups))
			for _, group := range p.groups {
				out = append(out, group)
			}
			return out
		}

		els := p.elements[sel]
		if len(els) == 0 {
			continue
		}
		out := make([]browser.Element, 0, len(els))
		for _, el := range els {
			out = append(out, el)
		}
		return out
	}
	return nil
}

func (p *fakePage) Scroll(int)         {}
func (p *fakePage) Wait(time.Duration) {}

func (p *fakePage) Screenshot(path string) error {
	p.shots = append(p.shots, path)
	return nil
}

func (p *fakePage) Closed() bool { return p.closed }

func testProfile() *Profile {
	return &Profile{
		Name:  "Ada Example Lovelace",
		Email: "ada@example.com",
		Phone: "555-0100",
	}
}

func startButton() *fakeElement {
	return &fakeElement{text: "Easy Apply", visible: true}
}

func TestRunExhaustsStepBudget(t *testing.T) {
	prefilled := &fakeElement{
		attrs:   map[string]string{"aria-label": "Email address"},
		value:   "already@example.com",
		visible: true,
	}

	page := &fakePage{
		loggedIn: true,
		closed:   true,
		elements: map[string][]*fakeElement{
			"button.jobs-apply-button": {startButton()},
			"input[type='text'], input[type='email'], input[type='tel']": {prefilled},
		},
	}

	budget := 3
	c := NewController(page, testProfile(), "user", "pass", nil, WithStepBudget(budget))
	session := c.Run(context.Background(), "https://www.linkedin.com/jobs/view/12345")

	if session.State != StateExhausted {
		t.Fatalf("expected exhausted state, got %s", session.State)
	}
	if len(session.StepsCompleted) != budget {
		t.Fatalf("expected exactly %d step entries, got %d: %v", budget, len(session.StepsCompleted), session.StepsCompleted)
	}
	if len(prefilled.fills) != 0 {
		t.Fatalf("a field with an existing value must never be overwritten, got fills %v", prefilled.fills)
	}
}

func TestRunStopsAtReviewGate(t *testing.T) {
	email := &fakeElement{
		attrs:   map[string]string{"aria-label": "Email address"},
		visible: true,
	}
	submit := &fakeElement{text: "Submit application", visible: true}

	page := &fakePage{
		loggedIn: true,
		closed:   true,
		elements: map[string][]*fakeElement{
			"button.jobs-apply-button": {startButton()},
			"input[type='text'], input[type='email'], input[type='tel']": {email},
			"button[aria-label='Submit application']":                    {submit},
		},
	}

	c := NewController(page, testProfile(), "user", "pass", nil, WithScreenshotPath("preview.png"))
	session := c.Run(context.Background(), "https://www.linkedin.com/jobs/view/12345")

	if session.State != StateAwaitingReview {
		t.Fatalf("expected awaiting_review, got %s", session.State)
	}
	if len(session.StepsCompleted) != 1 {
		t.Fatalf("expected one step entry, got %d", len(session.StepsCompleted))
	}
	if session.Screenshot != "preview.png" {
		t.Fatalf("expected a review screenshot, got %q", session.Screenshot)
	}
	if submit.clicks != 0 {
		t.Fatalf("the submit affordance must never be clicked, got %d clicks", submit.clicks)
	}
	if len(email.fills) != 1 || email.fills[0] != "ada@example.com" {
		t.Fatalf("email field not filled from profile: %v", email.fills)
	}
}

func TestRunAdvancesThroughContinue(t *testing.T) {
	next := &fakeElement{text: "Continue", visible: true}

	page := &fakePage{
		loggedIn: true,
		closed:   true,
		elements: map[string][]*fakeElement{
			"button.jobs-apply-button":                  {startButton()},
			"button[aria-label='Continue to next step']": {next},
		},
	}

	budget := 2
	c := NewController(page, testProfile(), "user", "pass", nil, WithStepBudget(budget))
	session := c.Run(context.Background(), "https://www.linkedin.com/jobs/view/12345")

	if session.State != StateExhausted {
		t.Fatalf("expected exhausted after an endless continue loop, got %s", session.State)
	}
	if next.clicks != budget {
		t.Fatalf("expected %d continue clicks, got %d", budget, next.clicks)
	}
}

func TestRunFallsBackWithoutStartAffordance(t *testing.T) {
	page := &fakePage{
		loggedIn: true,
		closed:   true,
		elements: map[string][]*fakeElement{},
	}

	c := NewController(page, testProfile(), "user", "pass", nil)
	session := c.Run(context.Background(), "https://www.example.com/careers/123")

	if session.State != StateManualFallback {
		t.Fatalf("expected manual_fallback, got %s", session.State)
	}
	if len(session.StepsCompleted) != 0 {
		t.Fatalf("fallback must not record flow steps, got %v", session.StepsCompleted)
	}
}

func TestRunLoginFailure(t *testing.T) {
	page := &fakePage{
		closed:   true,
		elements: map[string][]*fakeElement{},
	}

	c := NewController(page, testProfile(), "user", "pass", nil)
	session := c.Run(context.Background(), "https://www.linkedin.com/jobs/view/12345")

	if session.State != StateLoginFailed {
		t.Fatalf("expected login_failed, got %s", session.State)
	}
	if len(session.Errors) == 0 {
		t.Fatalf("login failure must be recorded in the session errors")
	}
}

func TestRunAnswersRadioGroups(t *testing.T) {
	yes := &fakeElement{text: "Yes", visible: true}
	group := &radioGroup{
		fakeElement: fakeElement{visible: true},
		legend:      &fakeElement{text: "Are you authorized to work in the United States?", visible: true},
		labels:      []*fakeElement{{text: "No", visible: true}, yes},
	}

	page := &fakePage{
		loggedIn: true,
		closed:   true,
		elements: map[string][]*fakeElement{
			"button.jobs-apply-button": {startButton()},
		},
		groups: []*radioGroup{group},
	}

	c := NewController(page, testProfile(), "user", "pass", nil, WithStepBudget(1))
	session := c.Run(context.Background(), "https://www.linkedin.com/jobs/view/12345")

	if yes.clicks != 1 {
		t.Fatalf("expected the matching option to be clicked once, got %d", yes.clicks)
	}
	found := false
	for _, field := range session.FilledFields {
		if strings.HasPrefix(field, "radio: ") {
			found = true
		}
	}
	if !found {
		t.Fatalf("answered group missing from filled fields: %v", session.FilledFields)
	}
}
