package authenticator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"unisync-backend/lib/browser/browsertest"
)

func TestDetectMaintenanceBeatsEverything(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<div>האתר סגור עקב תחזוקה מתוכננת</div>
		<input id="password" type="password"/>`)

	require.Equal(t, PageMaintenance, DetectPageKind(page, testProfile()))
}

func TestDetectCASByURL(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://sso.testu.ac.il/cas/login?service=moodle", `
		<form id="fm1"><input id="password" type="password"/></form>`)

	require.Equal(t, PageCAS, DetectPageKind(page, testProfile()))
}

func TestDetectCASByHiddenFields(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<form>
			<input name="execution" type="hidden" value="e1s1"/>
			<input id="password" type="password"/>
		</form>`)

	require.Equal(t, PageCAS, DetectPageKind(page, testProfile()))
}

func TestDetectSSO(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/auth/index.php", `
		<a href="/auth/shibboleth/">התחברות מאוחדת</a>`)

	require.Equal(t, PageSSO, DetectPageKind(page, testProfile()))
}

func TestDetectRegularLogin(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", loginFormHTML)

	require.Equal(t, PageRegularLogin, DetectPageKind(page, testProfile()))
}

func TestDetectDashboard(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/my/", dashboardHTML)

	require.Equal(t, PageDashboard, DetectPageKind(page, testProfile()))
}

func TestDetectUnknown(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/somewhere/else", `<div>just a page</div>`)

	require.Equal(t, PageUnknown, DetectPageKind(page, testProfile()))
}
