package authenticator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/institutions"
)

var tracer = otel.Tracer("lib/authenticator")

// Executor drives one login attempt against an institution. One generic
// flow serves every institution; all per-institution behavior (URLs,
// selectors, timeouts, the CAS/SSO pre-steps) comes from the profile.
type Executor struct {
	profile institutions.Profile
}

func NewExecutor(profile institutions.Profile) *Executor {
	return &Executor{profile: profile}
}

// Execute walks the profile's entry URLs in order until one of them
// produces a decisive outcome. MAINTENANCE and INVALID_CREDENTIALS are
// institution-wide and short-circuit the loop; everything else moves on
// to the next URL. The page is expected to be a fresh, isolated session
// owned by the caller.
func (e *Executor) Execute(ctx context.Context, page browser.Page, creds Credentials) Outcome {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.String("institution", e.profile.ID))

	started := time.Now()
	finish := func(out Outcome) Outcome {
		out.ResponseTimeMS = time.Since(started).Milliseconds()
		if !out.Success {
			span.SetStatus(codes.Error, string(out.Result))
		}
		span.SetAttributes(attribute.String("result", string(out.Result)))
		return out
	}

	var last Outcome
	attempted := false
	for _, url := range e.profile.EntryURLs {
		out, decisive := e.attemptURL(ctx, page, url, creds)
		if decisive {
			return finish(out)
		}
		last = out
		attempted = true
		slog.DebugContext(ctx, "entry url did not yield a decisive outcome",
			"institution", e.profile.ID, "url", url, "result", out.Result)
	}

	if !attempted || last.Result == ResultNetworkError {
		return finish(failure(
			ResultNetworkError,
			"לא הצלחתי להתחבר לאף אחת מהכתובות של "+e.profile.NameHe,
			"Failed to connect to any "+e.profile.NameEn+" URLs",
		))
	}
	return finish(last)
}

// attemptURL runs the whole flow against a single entry URL. The second
// return value reports whether the outcome is decisive: true means stop
// the URL loop and surface it, false means record it and try the next URL.
func (e *Executor) attemptURL(ctx context.Context, page browser.Page, url string, creds Credentials) (Outcome, bool) {
	ctx, span := tracer.Start(ctx, "attemptURL")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	timeouts := e.profile.Timeouts

	status, err := page.Navigate(ctx, url, timeouts.PageLoad())
	if err != nil {
		return navigationFailure(err), false
	}
	if status >= 400 {
		slog.DebugContext(ctx, "entry url returned an error status",
			"institution", e.profile.ID, "url", url, "status", status)
		return failure(
			ResultNetworkError,
			"השרת החזיר שגיאה",
			"Server returned an error status",
		), false
	}
	// Best effort; slow pages that never go idle still get the form fill.
	_ = page.WaitSettle(ctx, timeouts.NetworkIdle())

	switch DetectPageKind(page, e.profile) {
	case PageMaintenance:
		return failure(
			ResultMaintenance,
			"מערכת "+e.profile.NameHe+" נמצאת כעת בתחזוקה",
			e.profile.NameEn+" is currently under maintenance",
		), true
	case PageSSO:
		if out, ok := e.ssoPreStep(ctx, page); !ok {
			return out, false
		}
	case PageCAS:
		// CAS login forms carry hidden execution/service fields the
		// server fills in itself; they pass through untouched and the
		// visible form is filled like a regular one.
		_ = page.WaitSettle(ctx, timeouts.CASRedirect())
	}

	if _, err := Resolve(page, e.profile.Selectors.Password); err != nil {
		return failure(
			ResultUnknownError,
			"לא נמצא טופס התחברות בדף",
			"No login form found on page",
		), false
	}

	if out, ok := e.fillAndSubmit(ctx, page, creds); !ok {
		return out, false
	}

	_ = page.WaitSettle(ctx, timeouts.FormSubmit())
	if delay := timeouts.PostSubmitDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return navigationFailure(ctx.Err()), false
		}
	}

	out := ClassifyResult(page, e.profile)
	if out.Result == ResultSuccess || out.Result == ResultInvalidCredentials {
		return out, true
	}
	return out, false
}

// ssoPreStep clicks the SSO trigger and waits out the identity-provider
// redirect. Afterwards the page is expected to show a fillable form.
func (e *Executor) ssoPreStep(ctx context.Context, page browser.Page) (Outcome, bool) {
	el, err := Resolve(page, e.profile.Selectors.SSOButton)
	if err != nil {
		// Some SSO landing pages embed the form directly without a
		// separate trigger.
		return Outcome{}, true
	}
	if err := el.Click(); err != nil {
		return failure(
			ResultNetworkError,
			"לא הצלחתי להפעיל את ההתחברות המאוחדת",
			"Failed to trigger the SSO login",
		), false
	}
	_ = page.WaitSettle(ctx, e.profile.Timeouts.SSORedirect())
	return Outcome{}, true
}

func (e *Executor) fillAndSubmit(ctx context.Context, page browser.Page, creds Credentials) (Outcome, bool) {
	usernameEl, err := Resolve(page, e.profile.Selectors.Username)
	if err == nil {
		err = usernameEl.Fill(creds.Username)
	}
	if err != nil {
		return formFailure("לא הצלחתי למלא שדה שם משתמש", "Failed to fill username field"), false
	}

	passwordEl, err := Resolve(page, e.profile.Selectors.Password)
	if err == nil {
		err = passwordEl.Fill(creds.Password)
	}
	if err != nil {
		return formFailure("לא הצלחתי למלא שדה סיסמה", "Failed to fill password field"), false
	}

	if submitEl, err := Resolve(page, e.profile.Selectors.Submit); err == nil {
		if err := submitEl.Click(); err == nil {
			return Outcome{}, true
		}
	}
	// No clickable submit control resolved; submitting from the password
	// field works on every Moodle theme seen so far.
	if err := passwordEl.PressEnter(); err != nil {
		return formFailure("לא הצלחתי ללחוץ על כפתור התחברות", "Failed to click login button"), false
	}
	return Outcome{}, true
}

func formFailure(messageHe, messageEn string) Outcome {
	out := failure(ResultUnknownError, messageHe, messageEn)
	out.ErrorDetail = ErrorDetailFormError
	return out
}

func navigationFailure(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		out := failure(
			ResultTimeout,
			"תם הזמן המוקצב לטעינת הדף",
			"Page load timed out",
		)
		out.ErrorDetail = err.Error()
		return out
	}
	out := failure(
		ResultNetworkError,
		"שגיאת רשת בגישה לאתר המוסד",
		"Network error reaching the institution site",
	)
	if err != nil {
		out.ErrorDetail = err.Error()
	}
	return out
}
