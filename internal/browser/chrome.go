package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

const (
	navigationTimeout  = 60 * time.Second
	interactionTimeout = 15 * time.Second
)

// ChromeSession drives a real browser through the DevTools protocol. It is
// the live implementation behind login and the application flow.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChromeSession launches a browser. The surface stays attached to the
// provided parent context; closing the browser window cancels it.
func NewChromeSession(parent context.Context, headless bool, userAgent string) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.WindowSize(1280, 900),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so launch failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &ChromeSession{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

func (s *ChromeSession) NewPage() (Page, error) {
	return &chromePage{ctx: s.ctx}, nil
}

func (s *ChromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

type chromePage struct {
	ctx context.Context
}

func (p *chromePage) Goto(url string) error {
	ctx, cancel := context.WithTimeout(p.ctx, navigationTimeout)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) URL() string {
	ctx, cancel := context.WithTimeout(p.ctx, interactionTimeout)
	defer cancel()

	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return ""
	}
	return url
}

func (p *chromePage) Find(selectors ...string) Element {
	for _, selector := range selectors {
		if nodes := p.query(selector); len(nodes) > 0 {
			return &chromeElement{page: p, node: nodes[0]}
		}
	}
	return nil
}

func (p *chromePage) FindAll(selectors ...string) []Element {
	for _, selector := range selectors {
		nodes := p.query(selector)
		if len(nodes) == 0 {
			continue
		}
		elements := make([]Element, 0, len(nodes))
		for _, node := range nodes {
			elements = append(elements, &chromeElement{page: p, node: node})
		}
		return elements
	}
	return nil
}

func (p *chromePage) query(selector string) []*cdp.Node {
	ctx, cancel := context.WithTimeout(p.ctx, interactionTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil
	}
	return nodes
}

func (p *chromePage) Scroll(pixels int) {
	ctx, cancel := context.WithTimeout(p.ctx, interactionTimeout)
	defer cancel()

	_ = chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil),
	)
}

func (p *chromePage) Wait(d time.Duration) {
	select {
	case <-p.ctx.Done():
	case <-time.After(d):
	}
}

func (p *chromePage) Screenshot(path string) error {
	ctx, cancel := context.WithTimeout(p.ctx, navigationTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	return os.WriteFile(path, buf, 0o644)
}

// Closed reports whether the browser surface is gone. The context is
// cancelled when the user closes the window, which is the manual-cancellation
// signal the application flow blocks on.
func (p *chromePage) Closed() bool {
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

type chromeElement struct {
	page *chromePage
	node *cdp.Node
}

func (e *chromeElement) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(e.page.ctx, interactionTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (e *chromeElement) Text() string {
	var text string
	if err := e.run(chromedp.Text(e.node.FullXPath(), &text)); err != nil {
		return ""
	}
	return text
}

func (e *chromeElement) Attr(name string) string {
	return e.node.AttributeValue(name)
}

func (e *chromeElement) Value() string {
	var value string
	if err := e.run(chromedp.Value(e.node.FullXPath(), &value)); err != nil {
		return ""
	}
	return value
}

func (e *chromeElement) Visible() bool {
	script := fmt.Sprintf(
		`(function() {
			var el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
			return el !== null && el.offsetParent !== null;
		})()`,
		e.node.FullXPath(),
	)

	var visible bool
	if err := e.run(chromedp.Evaluate(script, &visible)); err != nil {
		return false
	}
	return visible
}

func (e *chromeElement) Fill(value string) error {
	return e.run(
		chromedp.SetValue(e.node.FullXPath(), value),
	)
}

func (e *chromeElement) Click() error {
	return e.run(chromedp.Click(e.node.FullXPath()))
}

func (e *chromeElement) Find(selectors ...string) Element {
	for _, selector := range selectors {
		if nodes := e.query(selector); len(nodes) > 0 {
			return &chromeElement{page: e.page, node: nodes[0]}
		}
	}
	return nil
}

func (e *chromeElement) FindAll(selector string) []Element {
	nodes := e.query(selector)
	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &chromeElement{page: e.page, node: node})
	}
	return elements
}

func (e *chromeElement) query(selector string) []*cdp.Node {
	var nodes []*cdp.Node
	err := e.run(
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil
	}
	return nodes
}
