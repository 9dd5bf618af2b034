// Package browsertest provides a scriptable in-memory Page for tests.
// Markup is served from static strings and queried through goquery, so
// engine behavior can be exercised without launching a real browser.
package browsertest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"unisync-backend/lib/browser"
)

// Response is what a scripted navigation (or form submit) produces.
type Response struct {
	// Status defaults to 200 when zero.
	Status int
	HTML   string
	Title  string
	// URL overrides the address shown after the navigation, simulating
	// redirects. Defaults to the requested URL.
	URL string
	// Err aborts the navigation instead.
	Err error
}

// Page implements browser.Page against scripted responses.
type Page struct {
	mu sync.Mutex

	// Responses maps a navigated URL to its result. Navigating anywhere
	// else fails like a refused connection.
	Responses map[string]Response
	// AfterSubmit, when set, replaces the page content once a click or
	// an Enter press lands. Simulates the post-login redirect.
	AfterSubmit *Response
	// CookiesSet is reported by CookieCount.
	CookiesSet int

	// NavigatedURLs records every Navigate call in order.
	NavigatedURLs []string
	// Filled records the last value filled per selector.
	Filled map[string]string
	// Submitted reports whether a click/Enter consumed AfterSubmit.
	Submitted bool

	url    string
	title  string
	doc    *goquery.Document
	closed bool
}

func New() *Page {
	return &Page{
		Responses: map[string]Response{},
		Filled:    map[string]string{},
	}
}

// SetContent loads markup directly, bypassing navigation scripting.
func (p *Page) SetContent(url, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.apply(Response{HTML: html, URL: url})
}

func (p *Page) apply(res Response) {
	if res.URL != "" {
		p.url = res.URL
	}
	p.title = res.Title
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	p.doc = doc
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.NavigatedURLs = append(p.NavigatedURLs, url)
	res, ok := p.Responses[url]
	if !ok {
		return 0, errors.New("connection refused")
	}
	if res.Err != nil {
		return 0, res.Err
	}
	if res.Status == 0 {
		res.Status = 200
	}
	p.url = url
	p.apply(res)
	return res.Status, nil
}

func (p *Page) WaitSettle(ctx context.Context, timeout time.Duration) error {
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return "", nil
	}
	return p.doc.Html()
}

func (p *Page) Query(selector string) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return nil, browser.ErrNoMatch
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, browser.ErrNoMatch
	}
	return &element{page: p, sel: sel, selector: selector}, nil
}

func (p *Page) CookieCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CookiesSet
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether the session was torn down.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) submit() {
	if p.AfterSubmit == nil {
		return
	}
	p.Submitted = true
	p.apply(*p.AfterSubmit)
}

type element struct {
	page     *Page
	sel      *goquery.Selection
	selector string
}

func (e *element) Visible() (bool, error) {
	style, _ := e.sel.Attr("style")
	style = strings.ReplaceAll(style, " ", "")
	if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
		return false, nil
	}
	if _, hidden := e.sel.Attr("hidden"); hidden {
		return false, nil
	}
	return true, nil
}

func (e *element) Enabled() (bool, error) {
	_, disabled := e.sel.Attr("disabled")
	return !disabled, nil
}

func (e *element) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *element) Fill(text string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.Filled[e.selector] = text
	return nil
}

func (e *element) Click() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.submit()
	return nil
}

func (e *element) PressEnter() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.submit()
	return nil
}

func (e *element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}
