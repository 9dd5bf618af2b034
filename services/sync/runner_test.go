package sync

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/browser/browsertest"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/ratelimit"
	"unisync-backend/lib/telemetry"
	"unisync-backend/services/sync/db"
)

type staticCredentials struct {
	err error
}

func (s staticCredentials) GetCredentials(ctx context.Context, userID, tenantID, institutionID string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return "alice", "hunter2", nil
}

type sessionFunc func(ctx context.Context) (browser.Page, error)

func (f sessionFunc) NewSession(ctx context.Context) (browser.Page, error) {
	return f(ctx)
}

const bguLoginHTML = `
<html><body>
	<form>
		<input id="login_username" name="username" type="text"/>
		<input id="login_password" name="password" type="password"/>
		<input type="submit" value="התחבר"/>
	</form>
</body></html>`

const bguDashboardHTML = `
<html><body id="page-my-index">
	<div class="coursename">מבוא למדעי המחשב (201.1.12)</div>
	<div class="coursename">הודעות</div>
</body></html>`

func setupRunner(t testing.TB, sessions SessionSource, creds CredentialSource) (*Runner, Store, *ratelimit.Limiter) {
	cleanup := telemetry.SetupForTesting(t, "test:services/sync")
	t.Cleanup(cleanup)

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}

	registry, err := institutions.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	store := NewStore(sqlite)
	limiter := ratelimit.New()
	service := NewService(store, registry, limiter, creds, NewEmitter(EmitterConfig{}), sessions)
	return NewRunner(service, time.Millisecond*10), store, limiter
}

func TestRunnerCompletesJob(t *testing.T) {
	page := browsertest.New()
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		page.Responses["https://moodle.bgu.ac.il/moodle/local/mydashboard/"] = browsertest.Response{HTML: bguLoginHTML}
		page.AfterSubmit = &browsertest.Response{
			URL:  "https://moodle.bgu.ac.il/moodle/my/",
			HTML: bguDashboardHTML,
		}
		return page, nil
	})
	runner, store, _ := setupRunner(t, sessions, staticCredentials{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	job, err := store.Enqueue(ctx, "t1", "u1", "bgu", JobKindFullSync, 0)
	require.NoError(t, err)
	running, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	runner.RunOne(ctx, running)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, 100, got.Progress)
	require.NotNil(t, got.CompletedAt)

	records, err := store.Records(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "מבוא למדעי המחשב", records[0].Name)
	require.True(t, page.Closed())
}

func TestRunnerNeverRetriesInvalidCredentials(t *testing.T) {
	page := browsertest.New()
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		page.Responses["https://moodle.bgu.ac.il/moodle/local/mydashboard/"] = browsertest.Response{HTML: bguLoginHTML}
		page.AfterSubmit = &browsertest.Response{
			URL:  "https://moodle.bgu.ac.il/moodle/login/index.php",
			HTML: `<div class="alert-danger">שם משתמש או סיסמה שגויים</div>`,
		}
		return page, nil
	})
	runner, store, _ := setupRunner(t, sessions, staticCredentials{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	job, err := store.Enqueue(ctx, "t1", "u1", "bgu", JobKindFullSync, 0)
	require.NoError(t, err)
	running, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	runner.RunOne(ctx, running)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, 0, got.Attempt)
	require.Contains(t, got.ErrorDetail, "INVALID_CREDENTIALS")
	require.Equal(t, "שם משתמש או סיסמה שגויים", got.MessageHe)
	require.True(t, page.Closed())
}

func TestRunnerRetriesNetworkErrorUpToMax(t *testing.T) {
	// Every navigation is refused, so each attempt classifies as
	// NETWORK_ERROR.
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		return browsertest.New(), nil
	})
	runner, store, _ := setupRunner(t, sessions, staticCredentials{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	job, err := store.Enqueue(ctx, "t1", "u1", "bgu", JobKindFullSync, 0)
	require.NoError(t, err)
	running, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	runner.RunOne(ctx, running)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusQueued, got.Status)
	require.Equal(t, 1, got.Attempt)
	require.Contains(t, got.ErrorDetail, "NETWORK_ERROR")

	// Retry budget spent: the next attempt terminates the job, keeping
	// the last error detail.
	exhausted := got
	exhausted.Attempt = 3
	runner.RunOne(ctx, exhausted)

	got, err = store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Contains(t, got.ErrorDetail, "NETWORK_ERROR")
	require.NotEmpty(t, got.MessageHe)
	require.NotEmpty(t, got.MessageEn)
}

func TestRunnerRequeuesWhenRateLimited(t *testing.T) {
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		t.Fatal("no browser session should be opened for a rate-limited job")
		return nil, nil
	})
	runner, store, limiter := setupRunner(t, sessions, staticCredentials{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// Exhaust the tenant's window before the job runs.
	for i := 0; i < 30; i++ {
		require.True(t, limiter.Admit("t1", "bgu", 30))
	}

	job, err := store.Enqueue(ctx, "t1", "u1", "bgu", JobKindFullSync, 0)
	require.NoError(t, err)
	running, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	runner.RunOne(ctx, running)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusQueued, got.Status)
	require.Equal(t, 0, got.Attempt)

	// Still parked behind the cooldown, not redelivered yet.
	_, ok, err = store.Dequeue(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRunnerFailsWhenCredentialsMissing(t *testing.T) {
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		t.Fatal("no browser session should be opened without credentials")
		return nil, nil
	})
	runner, store, _ := setupRunner(t, sessions, staticCredentials{err: ErrCredentialsNotFound})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	job, err := store.Enqueue(ctx, "t1", "u1", "bgu", JobKindFullSync, 0)
	require.NoError(t, err)
	running, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	runner.RunOne(ctx, running)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Contains(t, got.ErrorDetail, "CREDENTIALS_NOT_FOUND")
}
