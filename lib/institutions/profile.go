package institutions

import "time"

// Profile is the full per-institution configuration consumed by the login
// engine and the extractor. Profiles are value types; the registry hands out
// copies, so a running job never observes a hot reload mid-flight.
type Profile struct {
	ID     string `json:"id"`
	NameHe string `json:"name_he"`
	NameEn string `json:"name_en"`

	// EntryURLs are tried strictly in order until one serves a usable
	// login form.
	EntryURLs []string `json:"entry_urls"`

	Selectors SelectorSet `json:"selectors"`
	Flow      FlowMarkers `json:"flow"`
	Timeouts  Timeouts    `json:"timeouts"`
	RateLimit RateLimit   `json:"rate_limit"`
	Extract   ExtractSpec `json:"extract"`
}

// SelectorSet holds ordered candidate lists per logical form field. The
// first visible and enabled match wins, so each list leads with the
// selector most specific to the institution's current theme.
type SelectorSet struct {
	Username   []string `json:"username"`
	Password   []string `json:"password"`
	Submit     []string `json:"submit"`
	SSOButton  []string `json:"sso_button"`
	LoginToken []string `json:"login_token"`
	// CASFields are hidden inputs that identify a CAS login form. They
	// are pass-through: the engine never fills them, only detects them.
	CASFields []string `json:"cas_fields"`
	Error     []string `json:"error"`
	// Success are DOM selectors whose presence after submit confirms an
	// authenticated page.
	Success []string `json:"success"`
	// DisplayName candidates feed the best-effort session fingerprint.
	DisplayName []string `json:"display_name"`
}

// FlowMarkers drive page classification: which URLs, page texts and error
// texts mean what for this institution.
type FlowMarkers struct {
	// SuccessURLParts are substrings of a post-login URL that confirm
	// authentication.
	SuccessURLParts []string `json:"success_url_parts"`
	// ErrorTextPatterns disambiguate a genuine credential error from
	// unrelated alert banners. Bilingual, matched case-insensitively.
	ErrorTextPatterns []string `json:"error_text_patterns"`
	// MaintenanceKeywords in the page text mean the whole institution is
	// down for maintenance.
	MaintenanceKeywords []string `json:"maintenance_keywords"`
	// CASURLParts and CASContentParts identify a CAS login surface.
	CASURLParts     []string `json:"cas_url_parts"`
	CASContentParts []string `json:"cas_content_parts"`
	// SSOURLParts and SSOContentParts identify a federated SSO surface.
	SSOURLParts     []string `json:"sso_url_parts"`
	SSOContentParts []string `json:"sso_content_parts"`
	// LoginURLParts mark URLs that still belong to the login/auth
	// surface; leaving all of them behind counts as success evidence.
	LoginURLParts []string `json:"login_url_parts"`
}

// Timeouts is the institution's wait budget in milliseconds. The slower
// institutions get markedly longer budgets; the flow itself is identical.
type Timeouts struct {
	PageLoadMS    int `json:"page_load_ms"`
	NetworkIdleMS int `json:"network_idle_ms"`
	ElementWaitMS int `json:"element_wait_ms"`
	FormSubmitMS  int `json:"form_submit_ms"`
	SSORedirectMS int `json:"sso_redirect_ms"`
	CASRedirectMS int `json:"cas_redirect_ms"`
	// PostSubmitDelayMS is an extra stabilization wait after submit for
	// institutions whose login pages keep mutating the DOM after the
	// response lands.
	PostSubmitDelayMS int `json:"post_submit_delay_ms"`
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (t Timeouts) PageLoad() time.Duration        { return ms(t.PageLoadMS) }
func (t Timeouts) NetworkIdle() time.Duration     { return ms(t.NetworkIdleMS) }
func (t Timeouts) ElementWait() time.Duration     { return ms(t.ElementWaitMS) }
func (t Timeouts) FormSubmit() time.Duration      { return ms(t.FormSubmitMS) }
func (t Timeouts) SSORedirect() time.Duration     { return ms(t.SSORedirectMS) }
func (t Timeouts) CASRedirect() time.Duration     { return ms(t.CASRedirectMS) }
func (t Timeouts) PostSubmitDelay() time.Duration { return ms(t.PostSubmitDelayMS) }

// RateLimit is the institution's admission policy. RequestsPerMinute and
// ConcurrentSessions gate job admission; RetryDelaySec is the backoff base
// for retryable failures.
type RateLimit struct {
	RequestsPerMinute  int `json:"requests_per_minute"`
	ConcurrentSessions int `json:"concurrent_sessions"`
	RetryDelaySec      int `json:"retry_delay_sec"`
	MaxRetries         int `json:"max_retries"`
	CooldownSec        int `json:"cooldown_sec"`
}

func (r RateLimit) RetryDelay() time.Duration { return time.Duration(r.RetryDelaySec) * time.Second }
func (r RateLimit) Cooldown() time.Duration   { return time.Duration(r.CooldownSec) * time.Second }

// ExtractSpec configures post-authentication content extraction: which
// record kinds the institution exposes and where to look for them.
type ExtractSpec struct {
	// Kinds lists the record kinds this institution's pages actually
	// carry ("courses", "grades", "assignments").
	Kinds []string `json:"kinds"`
	// Selectors maps a record kind to its ordered candidate container
	// selectors.
	Selectors map[string][]string `json:"selectors"`
}

// Shared defaults. Individual profiles extend these, never shrink them.
var (
	defaultMaintenanceKeywords = []string{"maintenance", "תחזוקה", "זמנית לא זמין"}

	defaultLoginURLParts = []string{"login", "cas", "auth"}

	defaultErrorSelectors = []string{
		".alert-danger",
		".error",
		"#loginerrormessage",
		".alert-error",
		".login-error",
		"[role=\"alert\"]",
		".errormessage",
		".loginerrors",
		".alert.alert-danger",
	}

	defaultDisplayNameSelectors = []string{
		".username",
		".user-name",
		".user-info",
		"[data-username]",
		"#user-menu",
		".user-menu",
		".navbar-text",
		".user-profile",
	}
)
