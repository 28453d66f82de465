package scrape

import (
	"strings"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/browser"
)

type loginField struct {
	filled []string
	clicks int
}

func (f *loginField) Text() string       { return "" }
func (f *loginField) Attr(string) string { return "" }
func (f *loginField) Value() string      { return "" }
func (f *loginField) Visible() bool      { return true }

func (f *loginField) Fill(v string) error {
	f.filled = append(f.filled, v)
	return nil
}

func (f *loginField) Click() error { f.clicks++; return nil }

func (f *loginField) Find(...string) browser.Element   { return nil }
func (f *loginField) FindAll(string) []browser.Element { return nil }

// loginSubmit moves the page to its post-submit URL when clicked.
type loginSubmit struct {
	loginField
	page *loginPage
}

func (b *loginSubmit) Click() error {
	b.clicks++
	b.page.url = b.page.afterSubmit
	return nil
}

type loginPage struct {
	url         string
	afterSubmit string
	user        *loginField
	pass        *loginField
	submit      *loginSubmit
}

func newLoginPage(afterSubmit string) *loginPage {
	p := &loginPage{
		afterSubmit: afterSubmit,
		user:        &loginField{},
		pass:        &loginField{},
	}
	p.submit = &loginSubmit{page: p}
	return p
}

func (p *loginPage) Goto(url string) error { p.url = url; return nil }
func (p *loginPage) URL() string           { return p.url }

func (p *loginPage) Find(sels ...string) browser.Element {
	for _, sel := range sels {
		switch sel {
		case "input[name='session_key']":
			return p.user
		case "input[name='session_password']":
			return p.pass
		case "button[type='submit']":
			return p.submit
		}
	}
	return nil
}

func (p *loginPage) FindAll(...string) []browser.Element { return nil }
func (p *loginPage) Scroll(int)                          {}
func (p *loginPage) Wait(time.Duration)                  {}
func (p *loginPage) Screenshot(string) error             { return nil }
func (p *loginPage) Closed() bool                        { return true }

func TestLoginDetectsVerificationChallenge(t *testing.T) {
	page := newLoginPage("https://www.linkedin.com/checkpoint/challenge/abc")

	err := Login(page, "user@example.com", "secret")
	if err == nil {
		t.Fatalf("expected a challenge error")
	}
	if !strings.Contains(err.Error(), "challenge") {
		t.Fatalf("wrong error: %v", err)
	}
	if page.submit.clicks != 1 {
		t.Fatalf("login must make exactly one attempt, got %d", page.submit.clicks)
	}
}

func TestLoginSucceedsOnAuthenticatedRedirect(t *testing.T) {
	page := newLoginPage("https://www.linkedin.com/feed/")

	if err := Login(page, "user@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := page.user.filled; len(got) != 1 || got[0] != "user@example.com" {
		t.Fatalf("unexpected login field fills: %v", got)
	}
	if got := page.pass.filled; len(got) != 1 || got[0] != "secret" {
		t.Fatalf("unexpected password field fills: %v", got)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	page := newLoginPage("https://www.linkedin.com/feed/")

	if err := Login(page, "", ""); err == nil {
		t.Fatalf("expected an error without credentials")
	}
	if page.submit.clicks != 0 {
		t.Fatalf("no attempt must be made without credentials")
	}
}
