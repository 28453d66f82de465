package browser

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession fetches pages over plain HTTP and exposes them through the
// element-locator capability. It supports guest-mode discovery on sites that
// serve listings without a rendered session; interaction methods report
// ErrNotInteractive.
type StaticSession struct {
	client    *http.Client
	userAgent string
}

func NewStaticSession(userAgent string) *StaticSession {
	return &StaticSession{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: userAgent,
	}
}

func (s *StaticSession) NewPage() (Page, error) {
	return &staticPage{session: s}, nil
}

func (s *StaticSession) Close() error { return nil }

type staticPage struct {
	session *StaticSession
	url     string
	doc     *goquery.Document
}

// NewStaticPage parses the provided HTML into a standalone page. Used by
// adapter tests and anywhere a pre-fetched document needs element lookup.
func NewStaticPage(html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &staticPage{doc: doc}, nil
}

func (p *staticPage) Goto(url string) error {
	if p.session == nil {
		return fmt.Errorf("page has no session: %w", ErrNotInteractive)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if p.session.userAgent != "" {
		req.Header.Set("User-Agent", p.session.userAgent)
	}

	resp, err := p.session.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	p.url = url
	p.doc = doc

	return nil
}

func (p *staticPage) URL() string { return p.url }

func (p *staticPage) Find(selectors ...string) Element {
	if p.doc == nil {
		return nil
	}
	for _, selector := range selectors {
		sel := p.doc.Find(selector)
		if sel.Length() > 0 {
			return &staticElement{sel: sel.First()}
		}
	}
	return nil
}

func (p *staticPage) FindAll(selectors ...string) []Element {
	if p.doc == nil {
		return nil
	}
	for _, selector := range selectors {
		sel := p.doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		return collect(sel)
	}
	return nil
}

func (p *staticPage) Scroll(int)             {}
func (p *staticPage) Wait(time.Duration)     {}
func (p *staticPage) Screenshot(string) error { return ErrNotInteractive }

// Closed is always true: a static page has no surface a human could hold
// open, so waits on it return immediately.
func (p *staticPage) Closed() bool { return true }

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *staticElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e *staticElement) Value() string {
	return e.sel.AttrOr("value", "")
}

func (e *staticElement) Visible() bool { return true }

func (e *staticElement) Fill(string) error { return ErrNotInteractive }

func (e *staticElement) Click() error { return ErrNotInteractive }

func (e *staticElement) Find(selectors ...string) Element {
	for _, selector := range selectors {
		sel := e.sel.Find(selector)
		if sel.Length() > 0 {
			return &staticElement{sel: sel.First()}
		}
	}
	return nil
}

func (e *staticElement) FindAll(selector string) []Element {
	return collect(e.sel.Find(selector))
}

func collect(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &staticElement{sel: s})
	})
	return elements
}
