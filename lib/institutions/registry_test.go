package institutions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"unisync-backend/lib/configutil"
)

func TestRegistryBuiltins(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"bgu", "tau", "huji"}, registry.IDs())

	bgu, err := registry.Get("bgu")
	require.NoError(t, err)
	require.Equal(t, "bgu", bgu.ID)
	require.NotEmpty(t, bgu.EntryURLs)
	require.NotEmpty(t, bgu.Selectors.Password)
	require.Equal(t, 30, bgu.RateLimit.RequestsPerMinute)

	huji, err := registry.Get("huji")
	require.NoError(t, err)
	require.NotEmpty(t, huji.Selectors.CASFields)
	require.Greater(t, huji.Timeouts.PostSubmitDelayMS, 0)
	require.Greater(t, huji.Timeouts.PageLoad(), bgu.Timeouts.PageLoad())
}

func TestRegistryUnknownInstitution(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	_, err = registry.Get("mit")
	require.ErrorIs(t, err, ErrUnknownInstitution)
}

func TestRegistryOverridesAndReload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configutil.EnvConfigDir, dir)

	override := `{
		bgu: {
			rate_limit: { requests_per_minute: 5 },
			selectors: { password: ["#patched_password"] },
		},
		onlineu: {
			name_en: "Online University",
			entry_urls: ["https://moodle.onlineu.example/login/index.php"],
		},
	}`
	err := os.WriteFile(filepath.Join(dir, ConfigName), []byte(override), 0o644)
	require.NoError(t, err)

	registry, err := NewRegistry()
	require.NoError(t, err)

	bgu, err := registry.Get("bgu")
	require.NoError(t, err)
	require.Equal(t, 5, bgu.RateLimit.RequestsPerMinute)
	require.Equal(t, []string{"#patched_password"}, bgu.Selectors.Password)
	// Untouched fields keep their builtin values.
	require.NotEmpty(t, bgu.EntryURLs)
	require.Equal(t, 30000, bgu.Timeouts.PageLoadMS)

	onlineu, err := registry.Get("onlineu")
	require.NoError(t, err)
	require.Equal(t, "onlineu", onlineu.ID)
	require.Equal(t, "Online University", onlineu.NameEn)

	// Dropping the override file and reloading restores builtins.
	require.NoError(t, os.Remove(filepath.Join(dir, ConfigName)))
	require.NoError(t, registry.Reload())

	bgu, err = registry.Get("bgu")
	require.NoError(t, err)
	require.Equal(t, 30, bgu.RateLimit.RequestsPerMinute)
	_, err = registry.Get("onlineu")
	require.ErrorIs(t, err, ErrUnknownInstitution)
}
