package authenticator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"unisync-backend/lib/browser/browsertest"
)

func TestResolveSkipsHiddenAndDisabled(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<input id="first" style="display: none"/>
		<input id="second" disabled/>
		<input id="third"/>
		<input id="fourth"/>`)

	el, err := Resolve(page, []string{"#first", "#second", "#third", "#fourth"})
	require.NoError(t, err)

	id, ok := el.Attr("id")
	require.True(t, ok)
	require.Equal(t, "third", id)
}

func TestResolveFirstFitWins(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `
		<input id="primary"/>
		<input id="fallback"/>`)

	el, err := Resolve(page, []string{"#primary", "#fallback"})
	require.NoError(t, err)

	id, _ := el.Attr("id")
	require.Equal(t, "primary", id)
}

func TestResolveExhaustion(t *testing.T) {
	page := browsertest.New()
	page.SetContent("https://moodle.testu.ac.il/login/index.php", `<div>nothing here</div>`)

	_, err := Resolve(page, []string{"#username", "input[name=\"username\"]"})
	require.ErrorIs(t, err, ErrSelectorNotFound)
}
