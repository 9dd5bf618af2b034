package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNoMatch is returned by Page.Query when the selector matches nothing.
var ErrNoMatch = errors.New("no element matches selector")

// Element is a live DOM element inside a Page.
type Element interface {
	Visible() (bool, error)
	Enabled() (bool, error)
	Text() (string, error)
	// Fill replaces the element's current value with text.
	Fill(text string) error
	Click() error
	// PressEnter submits the enclosing form via the keyboard, the
	// fallback path when no submit control can be resolved.
	PressEnter() error
	Attr(name string) (string, bool)
}

// Page is one tab inside an isolated browsing context. Every sync or
// validation job owns exactly one Page for its whole lifetime; pages are
// never shared across jobs or tenants.
type Page interface {
	// Navigate loads the url and waits for the document load event,
	// returning the HTTP status of the navigation response.
	Navigate(ctx context.Context, url string, timeout time.Duration) (int, error)
	// WaitSettle waits for the page's network/script activity to quiet
	// down, up to timeout.
	WaitSettle(ctx context.Context, timeout time.Duration) error
	URL() string
	Title() string
	HTML() (string, error)
	// Query returns the first element matching the selector, without
	// waiting for it to appear.
	Query(selector string) (Element, error)
	CookieCount() int
	Close() error
}
