package browser

import (
	"errors"
	"time"
)

// ErrNotInteractive is returned by page implementations that can locate and
// read elements but cannot interact with them (e.g. the static HTML page).
var ErrNotInteractive = errors.New("page is not interactive")

// Element is a located page element. Interaction methods are best-effort:
// a failed fill or click is reported, never raised.
type Element interface {
	// Text returns the trimmed visible text of the element.
	Text() string
	// Attr returns the named attribute, or "" when absent.
	Attr(name string) string
	// Value returns the current input value, or "" when not applicable.
	Value() string
	// Visible reports whether the element is rendered.
	Visible() bool
	Fill(value string) error
	Click() error
	// Find locates the first descendant matching any of the alternate
	// selectors, trying each once, in order. Returns nil when none match.
	Find(selectors ...string) Element
	FindAll(selector string) []Element
}

// Page is the element-locator capability the orchestration logic depends on.
// Concrete selector strings live in adapter selector tables, never here.
type Page interface {
	Goto(url string) error
	URL() string
	// Find locates the first element matching any of the alternate
	// selectors, trying each once, in order. Returns nil when none match.
	Find(selectors ...string) Element
	// FindAll returns the matches of the first selector that yields any.
	FindAll(selectors ...string) []Element
	Scroll(pixels int)
	Wait(d time.Duration)
	Screenshot(path string) error
	// Closed reports whether the surface has been closed by the human.
	Closed() bool
}

// Session owns a browsing surface and hands out pages on it.
type Session interface {
	NewPage() (Page, error)
	Close() error
}
