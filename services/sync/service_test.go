package sync

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"unisync-backend/lib/authenticator"
	"unisync-backend/lib/browser"
	"unisync-backend/lib/browser/browsertest"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/ratelimit"
	"unisync-backend/lib/telemetry"
	"unisync-backend/services/sync/db"
)

func setupService(t testing.TB, sessions SessionSource) Service {
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
	return NewService(NewStore(sqlite), registry, ratelimit.New(),
		staticCredentials{}, NewEmitter(EmitterConfig{}), sessions)
}

func TestSubmitAndGetJob(t *testing.T) {
	service := setupService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	job, err := service.SubmitJob(ctx, SubmitJobRequest{
		UserID:        "u1",
		TenantID:      "t1",
		InstitutionID: "huji",
		JobKind:       JobKindGrades,
		Priority:      1,
	})
	require.NoError(t, err)
	require.Equal(t, StatusQueued, job.Status)

	got, err := service.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, "huji", got.InstitutionID)
	require.Equal(t, JobKindGrades, got.JobKind)
}

func TestSubmitJobRejectsUnknownInstitution(t *testing.T) {
	service := setupService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SubmitJob(ctx, SubmitJobRequest{
		UserID:        "u1",
		TenantID:      "t1",
		InstitutionID: "mit",
		JobKind:       JobKindFullSync,
	})
	require.ErrorIs(t, err, institutions.ErrUnknownInstitution)
}

func TestSubmitJobRejectsUnknownKind(t *testing.T) {
	service := setupService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SubmitJob(ctx, SubmitJobRequest{
		UserID:        "u1",
		TenantID:      "t1",
		InstitutionID: "bgu",
		JobKind:       "homework",
	})
	require.Error(t, err)
}

func TestValidateCredentials(t *testing.T) {
	page := browsertest.New()
	sessions := sessionFunc(func(ctx context.Context) (browser.Page, error) {
		page.Responses["https://moodle.bgu.ac.il/moodle/local/mydashboard/"] = browsertest.Response{HTML: bguLoginHTML}
		page.AfterSubmit = &browsertest.Response{
			URL:  "https://moodle.bgu.ac.il/moodle/my/",
			HTML: bguDashboardHTML,
		}
		return page, nil
	})
	service := setupService(t, sessions)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	outcome, err := service.ValidateCredentials(ctx, ValidateRequest{
		InstitutionID: "bgu",
		TenantID:      "t1",
		Username:      "alice",
		Password:      "hunter2",
	})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, authenticator.ResultSuccess, outcome.Result)
	require.Equal(t, "alice", page.Filled["#login_username"])
	require.True(t, page.Closed())
}

func TestValidateCredentialsRateLimited(t *testing.T) {
	service := setupService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for i := 0; i < 30; i++ {
		require.True(t, service.limiter.Admit("t1", "bgu", 30))
	}

	_, err := service.ValidateCredentials(ctx, ValidateRequest{
		InstitutionID: "bgu",
		TenantID:      "t1",
		Username:      "alice",
		Password:      "hunter2",
	})
	require.ErrorIs(t, err, ErrRateLimited)
}
