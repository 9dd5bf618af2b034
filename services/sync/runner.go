package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"unisync-backend/lib/authenticator"
	"unisync-backend/lib/extract"
	"unisync-backend/lib/institutions"
)

// Progress milestones reported while a job runs.
const (
	progressStarted        = 0
	progressAuthenticating = 20
	progressExtracting     = 50
	progressPersisting     = 80
)

// Runner pulls jobs off the queue and executes them end to end. It owns
// the retry policy: NETWORK_ERROR and TIMEOUT back off and retry up to
// the institution's budget, UNKNOWN_ERROR retries exactly once, and
// everything else is terminal. Credential failures in particular are never
// retried; the credentials are presumed stable and a retry only burns
// rate budget.
type Runner struct {
	service      Service
	pollInterval time.Duration
}

func NewRunner(service Service, pollInterval time.Duration) *Runner {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Runner{service: service, pollInterval: pollInterval}
}

// Run processes jobs until the context is canceled. Many runners can run
// concurrently against the same store; Dequeue hands each job to exactly
// one of them.
func (r *Runner) Run(ctx context.Context) {
	for {
		job, ok, err := r.service.store.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.ErrorContext(ctx, "failed to dequeue job", "err", err)
		} else if ok {
			r.RunOne(ctx, job)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.pollInterval):
		}
	}
}

// RunOne executes a single already-dequeued job.
func (r *Runner) RunOne(ctx context.Context, job Job) {
	ctx, span := tracer.Start(ctx, "RunOne")
	defer span.End()
	span.SetAttributes(
		attribute.String("job_id", job.ID),
		attribute.String("institution", job.InstitutionID),
		attribute.String("job_kind", job.JobKind),
		attribute.Int("attempt", job.Attempt),
	)

	s := r.service
	profile, err := s.registry.Get(job.InstitutionID)
	if err != nil {
		r.fail(ctx, job, "UNKNOWN_INSTITUTION",
			"המוסד המבוקש אינו מוכר", "Unknown institution")
		return
	}

	// Admission control before a browser is even launched: a denied job
	// goes back to the queue, never dropped.
	if !s.limiter.Admit(job.TenantID, job.InstitutionID, profile.RateLimit.RequestsPerMinute) {
		r.requeue(ctx, job, profile.RateLimit.Cooldown(), job.Attempt, "rate limited")
		return
	}
	if !s.limiter.AcquireSession(job.InstitutionID, profile.RateLimit.ConcurrentSessions) {
		r.requeue(ctx, job, r.pollInterval*4, job.Attempt, "no free session slot")
		return
	}
	defer s.limiter.ReleaseSession(job.InstitutionID)

	r.progress(ctx, job, progressStarted, "מתחיל סנכרון", "Starting sync")

	username, password, err := s.creds.GetCredentials(ctx, job.UserID, job.TenantID, job.InstitutionID)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			r.fail(ctx, job, "CREDENTIALS_NOT_FOUND",
				"לא נמצאו פרטי התחברות שמורים", "No stored credentials found")
			return
		}
		r.retryOrFail(ctx, job, profile, authenticator.ResultNetworkError, err.Error(),
			"שגיאה בגישה לשירות ההזדהות", "Failed to reach the auth service")
		return
	}

	page, err := s.sessions.NewSession(ctx)
	if err != nil {
		r.retryOrFail(ctx, job, profile, authenticator.ResultNetworkError, err.Error(),
			"שגיאה בפתיחת דפדפן", "Failed to open a browser session")
		return
	}
	defer page.Close()

	r.progress(ctx, job, progressAuthenticating, "מתחבר למערכת המוסד", "Authenticating")

	outcome := authenticator.NewExecutor(profile).Execute(ctx, page, authenticator.Credentials{
		TenantID:      job.TenantID,
		UserID:        job.UserID,
		InstitutionID: job.InstitutionID,
		Username:      username,
		Password:      password,
	})
	span.SetAttributes(attribute.String("auth_result", string(outcome.Result)))

	if !outcome.Success {
		if isRetryable(outcome, job.Attempt) {
			r.retryOrFail(ctx, job, profile, outcome.Result, outcome.ErrorDetail,
				outcome.MessageHe, outcome.MessageEn)
			return
		}
		span.SetStatus(codes.Error, string(outcome.Result))
		r.failWithOutcome(ctx, job, outcome)
		return
	}

	r.progress(ctx, job, progressExtracting, "שולף נתונים", "Extracting data")

	records, err := extract.New(profile).Extract(ctx, page, kindsForJob(profile, job.JobKind))
	if err != nil {
		// Extraction failures are usually transient DOM or timing
		// issues; unlike auth failures they are always retry
		// candidates.
		r.retryOrFail(ctx, job, profile, authenticator.ResultUnknownError, err.Error(),
			"שגיאה בשליפת הנתונים", "Failed to extract data")
		return
	}

	r.progress(ctx, job, progressPersisting, "שומר נתונים", "Persisting data")

	counts, err := s.store.SaveRecords(ctx, job.ID, job.InstitutionID, records)
	if err != nil {
		r.retryOrFail(ctx, job, profile, authenticator.ResultUnknownError, err.Error(),
			"שגיאה בשמירת הנתונים", "Failed to persist data")
		return
	}

	if err := s.store.Complete(ctx, job.ID, "הסנכרון הושלם", "Sync completed"); err != nil {
		slog.ErrorContext(ctx, "failed to mark job completed", "job_id", job.ID, "err", err)
		return
	}
	s.emitter.SyncCompleted(ctx, job, counts)
	slog.InfoContext(ctx, "job completed", "job_id", job.ID, "counts", counts)
}

// isRetryable implements the retry taxonomy. Form errors are selector
// drift and need a profile update, not a retry, even though they surface
// as UNKNOWN_ERROR.
func isRetryable(outcome authenticator.Outcome, attempt int) bool {
	switch outcome.Result {
	case authenticator.ResultNetworkError, authenticator.ResultTimeout:
		return true
	case authenticator.ResultUnknownError:
		return outcome.ErrorDetail != authenticator.ErrorDetailFormError && attempt < 1
	default:
		return false
	}
}

// retryOrFail schedules another attempt with linear backoff, or fails the
// job once the institution's retry budget is spent. The last error detail
// is preserved either way.
func (r *Runner) retryOrFail(
	ctx context.Context,
	job Job,
	profile institutions.Profile,
	result authenticator.Result,
	errorDetail, messageHe, messageEn string,
) {
	maxRetries := profile.RateLimit.MaxRetries
	if result == authenticator.ResultUnknownError && maxRetries > 1 {
		maxRetries = 1
	}
	if job.Attempt >= maxRetries {
		r.fail(ctx, job, string(result)+": "+errorDetail, messageHe, messageEn)
		return
	}

	delay := profile.RateLimit.RetryDelay() * time.Duration(job.Attempt+1)
	slog.WarnContext(ctx, "job attempt failed, scheduling retry",
		"job_id", job.ID, "result", result, "attempt", job.Attempt, "delay", delay)
	err := r.service.store.Requeue(ctx, job.ID, time.Now().Add(delay), job.Attempt+1,
		string(result)+": "+errorDetail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to requeue job", "job_id", job.ID, "err", err)
	}
}

func (r *Runner) requeue(ctx context.Context, job Job, delay time.Duration, attempt int, reason string) {
	slog.DebugContext(ctx, "job deferred", "job_id", job.ID, "reason", reason, "delay", delay)
	err := r.service.store.Requeue(ctx, job.ID, time.Now().Add(delay), attempt, job.ErrorDetail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to requeue job", "job_id", job.ID, "err", err)
	}
}

func (r *Runner) failWithOutcome(ctx context.Context, job Job, outcome authenticator.Outcome) {
	detail := string(outcome.Result)
	if outcome.ErrorDetail != "" {
		detail += ": " + outcome.ErrorDetail
	}
	r.fail(ctx, job, detail, outcome.MessageHe, outcome.MessageEn)
}

func (r *Runner) fail(ctx context.Context, job Job, errorDetail, messageHe, messageEn string) {
	if err := r.service.store.Fail(ctx, job.ID, errorDetail, messageHe, messageEn); err != nil {
		slog.ErrorContext(ctx, "failed to mark job failed", "job_id", job.ID, "err", err)
	}
	r.service.emitter.SyncFailed(ctx, job, errorDetail, messageHe, messageEn)
	slog.WarnContext(ctx, "job failed", "job_id", job.ID, "detail", errorDetail)
}

func (r *Runner) progress(ctx context.Context, job Job, percent int, messageHe, messageEn string) {
	if err := r.service.store.SetProgress(ctx, job.ID, percent, messageHe, messageEn); err != nil {
		slog.ErrorContext(ctx, "failed to update job progress", "job_id", job.ID, "err", err)
	}
}

// kindsForJob maps a job kind onto the record kinds to extract, clipped
// to what the institution actually exposes.
func kindsForJob(profile institutions.Profile, jobKind string) []string {
	if jobKind == JobKindFullSync {
		return profile.Extract.Kinds
	}
	return []string{jobKind}
}
