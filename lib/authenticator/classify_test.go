package authenticator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"unisync-backend/lib/browser/browsertest"
)

func TestClassifyPessimisticDefault(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<form><input id="password" type="password"/></form>`)

	out := ClassifyResult(page, testProfile())
	require.False(t, out.Success)
	require.Equal(t, ResultInvalidCredentials, out.Result)
	require.NotEmpty(t, out.MessageHe)
	require.NotEmpty(t, out.MessageEn)
}

func TestClassifyErrorBanner(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<div class="alert-danger">Invalid username or password</div>`)

	out := ClassifyResult(page, testProfile())
	require.False(t, out.Success)
	require.Equal(t, ResultInvalidCredentials, out.Result)
	require.Equal(t, "Invalid username or password", out.MessageEn)
	require.Equal(t, "Invalid username or password", out.MessageHe)
}

func TestClassifyHebrewErrorBannerSurfacedVerbatim(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<div class="alert-danger">שם המשתמש או הסיסמה שגויים</div>`)

	out := ClassifyResult(page, testProfile())
	require.Equal(t, ResultInvalidCredentials, out.Result)
	require.Equal(t, "שם המשתמש או הסיסמה שגויים", out.MessageHe)
}

func TestClassifyUnrelatedBannerDoesNotBlockSuccess(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/my/", `
		<div class="alert-danger">הגשת התרגיל עד יום חמישי</div>
		<div id="page-my-index"></div>`)

	out := ClassifyResult(page, testProfile())
	require.True(t, out.Success)
	require.Equal(t, ResultSuccess, out.Result)
}

func TestClassifySuccessByURL(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/my/", dashboardHTML)
	page.CookiesSet = 4

	out := ClassifyResult(page, testProfile())
	require.True(t, out.Success)
	require.Equal(t, ResultSuccess, out.Result)
	require.NotNil(t, out.Fingerprint)
	require.Equal(t, "ישראל ישראלי", out.Fingerprint.DisplayName)
	require.Equal(t, 4, out.Fingerprint.CookieCount)
}

func TestClassifySuccessByLeavingLoginSurface(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/welcome", `<div>ברוכים הבאים</div>`)

	out := ClassifyResult(page, testProfile())
	require.True(t, out.Success)
	require.Equal(t, ResultSuccess, out.Result)
}

func TestClassifyFingerprintFailureDoesNotDowngrade(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/my/", `<div>no user widget here</div>`)

	out := ClassifyResult(page, testProfile())
	require.True(t, out.Success)
	require.NotNil(t, out.Fingerprint)
	require.Empty(t, out.Fingerprint.DisplayName)
}
