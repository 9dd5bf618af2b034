package authenticator

// Result is the closed set of authentication outcomes. Everything a login
// attempt can produce maps onto one of these; raw errors never escape to
// callers.
type Result string

const (
	ResultSuccess            Result = "SUCCESS"
	ResultInvalidCredentials Result = "INVALID_CREDENTIALS"
	ResultNetworkError       Result = "NETWORK_ERROR"
	ResultTimeout            Result = "TIMEOUT"
	ResultCaptchaRequired    Result = "CAPTCHA_REQUIRED"
	ResultAccountLocked      Result = "ACCOUNT_LOCKED"
	ResultMaintenance        Result = "MAINTENANCE"
	ResultUnknownError       Result = "UNKNOWN_ERROR"
)

// ErrorDetailFormError marks an UNKNOWN_ERROR outcome caused by a
// fill/click failure. Selector drift, not wrong credentials; the fix is a
// selector-list update, so it must never be retried or counted as an
// invalid-credentials signal.
const ErrorDetailFormError = "FORM_ERROR"

// Fingerprint is lightweight post-login session metadata used for
// diagnostics only, never for re-authentication.
type Fingerprint struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	DisplayName string `json:"display_name,omitempty"`
	CookieCount int    `json:"cookie_count"`
}

// Outcome is the immutable result of one authentication attempt. Success
// is true iff Result is ResultSuccess.
type Outcome struct {
	Success        bool         `json:"success"`
	Result         Result       `json:"result"`
	MessageHe      string       `json:"message_he"`
	MessageEn      string       `json:"message_en"`
	ResponseTimeMS int64        `json:"response_time_ms"`
	Fingerprint    *Fingerprint `json:"session_fingerprint,omitempty"`
	ErrorDetail    string       `json:"error_detail,omitempty"`
}

func failure(result Result, messageHe, messageEn string) Outcome {
	return Outcome{
		Success:   false,
		Result:    result,
		MessageHe: messageHe,
		MessageEn: messageEn,
	}
}
