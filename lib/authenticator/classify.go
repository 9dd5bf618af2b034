package authenticator

import (
	"strings"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/textutil"
)

const (
	invalidCredentialsHe = "שם משתמש או סיסמה שגויים"
	invalidCredentialsEn = "Invalid username or password"
)

// ClassifyResult inspects the page after a submitted login form and maps
// it onto an Outcome. Checks run in order, first match wins:
//
//  1. a visible error banner whose text matches the institution's
//     credential-error patterns
//  2. the URL contains a success indicator
//  3. the URL left the login surface entirely
//  4. a success DOM selector matches
//
// Anything else is INVALID_CREDENTIALS. The default is deliberately
// pessimistic; absence of evidence is not evidence of success.
func ClassifyResult(page browser.Page, profile institutions.Profile) Outcome {
	if text := findErrorText(page, profile); text != "" {
		return failure(ResultInvalidCredentials, text, invalidCredentialsEn)
	}

	url := strings.ToLower(page.URL())
	if containsAnyPart(url, profile.Flow.SuccessURLParts) {
		return successOutcome(page, profile)
	}
	if !containsAnyPart(url, profile.Flow.LoginURLParts) {
		return successOutcome(page, profile)
	}
	if exists(page, profile.Selectors.Success) {
		return successOutcome(page, profile)
	}

	return failure(ResultInvalidCredentials, invalidCredentialsHe, invalidCredentialsEn)
}

// findErrorText returns the first visible, non-empty error-banner text
// that matches the institution's credential-error patterns, verbatim. The
// pattern test filters out unrelated alerts (cookie notices, deadline
// reminders) that share the same CSS classes.
func findErrorText(page browser.Page, profile institutions.Profile) string {
	for _, selector := range profile.Selectors.Error {
		el, err := page.Query(selector)
		if err != nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if textutil.ContainsAny(text, profile.Flow.ErrorTextPatterns) {
			return text
		}
	}
	return ""
}

func successOutcome(page browser.Page, profile institutions.Profile) Outcome {
	return Outcome{
		Success:     true,
		Result:      ResultSuccess,
		MessageHe:   "התחברות למערכת " + profile.NameHe + " הצליחה",
		MessageEn:   profile.NameEn + " authentication successful",
		Fingerprint: captureFingerprint(page, profile),
	}
}

// captureFingerprint is best-effort diagnostics; any failure here must not
// downgrade a SUCCESS.
func captureFingerprint(page browser.Page, profile institutions.Profile) *Fingerprint {
	fp := &Fingerprint{
		URL:         page.URL(),
		Title:       page.Title(),
		CookieCount: page.CookieCount(),
	}
	if el, err := Resolve(page, profile.Selectors.DisplayName); err == nil {
		if name, err := el.Text(); err == nil {
			fp.DisplayName = strings.TrimSpace(name)
		}
	}
	return fp
}
