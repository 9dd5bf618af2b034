package authenticator

import (
	"strings"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/textutil"
)

// PageKind classifies what kind of page the browser currently shows.
type PageKind string

const (
	PageRegularLogin PageKind = "REGULAR_LOGIN"
	PageCAS          PageKind = "CAS"
	PageSSO          PageKind = "SSO"
	PageDashboard    PageKind = "DASHBOARD"
	PageMaintenance  PageKind = "MAINTENANCE"
	PageUnknown      PageKind = "UNKNOWN"
)

// DetectPageKind is a read-only inspection of the current page. Checks run
// in priority order: maintenance beats everything because it is
// institution-wide, CAS and SSO beat a regular form because their pages
// also carry password fields.
func DetectPageKind(page browser.Page, profile institutions.Profile) PageKind {
	url := strings.ToLower(page.URL())
	content, err := page.HTML()
	if err != nil {
		content = ""
	}
	content = strings.ToLower(content)

	if textutil.ContainsAny(content, profile.Flow.MaintenanceKeywords) {
		return PageMaintenance
	}

	if containsAnyPart(url, profile.Flow.CASURLParts) ||
		exists(page, profile.Selectors.CASFields) ||
		textutil.ContainsAny(content, profile.Flow.CASContentParts) {
		return PageCAS
	}

	if containsAnyPart(url, profile.Flow.SSOURLParts) ||
		textutil.ContainsAny(content, profile.Flow.SSOContentParts) ||
		existsVisible(page, profile.Selectors.SSOButton) {
		return PageSSO
	}

	if _, err := Resolve(page, profile.Selectors.Password); err == nil {
		return PageRegularLogin
	}

	if !containsAnyPart(url, profile.Flow.LoginURLParts) &&
		(containsAnyPart(url, profile.Flow.SuccessURLParts) || exists(page, profile.Selectors.Success)) {
		return PageDashboard
	}

	return PageUnknown
}

func containsAnyPart(s string, parts []string) bool {
	for _, part := range parts {
		if part != "" && strings.Contains(s, strings.ToLower(part)) {
			return true
		}
	}
	return false
}

func existsVisible(page browser.Page, candidates []string) bool {
	_, err := Resolve(page, candidates)
	return err == nil
}
