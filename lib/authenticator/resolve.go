package authenticator

import (
	"errors"

	"unisync-backend/lib/browser"
)

// ErrSelectorNotFound is returned when every candidate in a selector list
// fails to produce a visible, enabled element.
var ErrSelectorNotFound = errors.New("no selector candidate matched")

// Resolve tries the candidates strictly in order and returns the first
// element that exists, is visible and is enabled. First fit wins; lists
// lead with the selector most likely to match the institution's current
// theme. Per-candidate lookup errors are treated as "no match" because
// live DOM probing races with page scripts; only full exhaustion is
// reported.
func Resolve(page browser.Page, candidates []string) (browser.Element, error) {
	for _, selector := range candidates {
		el, err := page.Query(selector)
		if err != nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		enabled, err := el.Enabled()
		if err != nil || !enabled {
			continue
		}
		return el, nil
	}
	return nil, ErrSelectorNotFound
}

// exists reports whether any candidate matches at all, ignoring
// visibility. Used for detection checks where hidden inputs count.
func exists(page browser.Page, candidates []string) bool {
	for _, selector := range candidates {
		if _, err := page.Query(selector); err == nil {
			return true
		}
	}
	return false
}
