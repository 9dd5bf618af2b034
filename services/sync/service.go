package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"unisync-backend/lib/authenticator"
	"unisync-backend/lib/browser"
	"unisync-backend/lib/extract"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/ratelimit"
)

var tracer = otel.Tracer("services/sync")

// ErrRateLimited means the (tenant, institution) pair has exhausted its
// admission budget for the current window; try again later.
var ErrRateLimited = errors.New("rate limit exceeded for institution")

// SessionSource opens isolated browser sessions. Satisfied by
// *browser.Browser in production.
type SessionSource interface {
	NewSession(ctx context.Context) (browser.Page, error)
}

type Service struct {
	store    Store
	registry *institutions.Registry
	limiter  *ratelimit.Limiter
	creds    CredentialSource
	emitter  *Emitter
	sessions SessionSource
}

func NewService(
	store Store,
	registry *institutions.Registry,
	limiter *ratelimit.Limiter,
	creds CredentialSource,
	emitter *Emitter,
	sessions SessionSource,
) Service {
	return Service{
		store:    store,
		registry: registry,
		limiter:  limiter,
		creds:    creds,
		emitter:  emitter,
		sessions: sessions,
	}
}

type SubmitJobRequest struct {
	UserID        string `json:"user_id"`
	TenantID      string `json:"tenant_id"`
	InstitutionID string `json:"institution_id"`
	JobKind       string `json:"job_kind"`
	Priority      int    `json:"priority"`
}

// SubmitJob enqueues a sync job and returns it in QUEUED state. The job
// is picked up by the runner; admission control happens at dequeue time,
// not here, so submission never blocks on the rate budget.
func (s Service) SubmitJob(ctx context.Context, req SubmitJobRequest) (Job, error) {
	ctx, span := tracer.Start(ctx, "SubmitJob")
	defer span.End()
	span.SetAttributes(
		attribute.String("institution", req.InstitutionID),
		attribute.String("job_kind", req.JobKind),
	)

	if _, err := s.registry.Get(req.InstitutionID); err != nil {
		span.SetStatus(codes.Error, "unknown institution")
		return Job{}, err
	}
	switch req.JobKind {
	case JobKindFullSync, JobKindCourses, JobKindGrades, JobKindAssignments:
	default:
		err := fmt.Errorf("unknown job kind: %s", req.JobKind)
		span.SetStatus(codes.Error, err.Error())
		return Job{}, err
	}

	job, err := s.store.Enqueue(ctx, req.TenantID, req.UserID, req.InstitutionID, req.JobKind, req.Priority)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enqueue job")
		return Job{}, err
	}
	slog.InfoContext(ctx, "job submitted",
		"job_id", job.ID, "institution", job.InstitutionID, "job_kind", job.JobKind)
	return job, nil
}

// GetJob returns the current status of a job, including its progress and
// localized status messages.
func (s Service) GetJob(ctx context.Context, jobID string) (Job, error) {
	ctx, span := tracer.Start(ctx, "GetJob")
	defer span.End()

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch job")
		return Job{}, err
	}
	return job, nil
}

// JobRecords returns the extracted output of a job.
func (s Service) JobRecords(ctx context.Context, jobID string) ([]extract.Record, error) {
	return s.store.Records(ctx, jobID)
}

type ValidateRequest struct {
	InstitutionID string `json:"institution_id"`
	TenantID      string `json:"tenant_id"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

// ValidateCredentials runs one live authentication attempt and returns
// the classified outcome. Counts against the same rate budget as sync
// jobs: a validation hits the institution's login endpoint just the same.
func (s Service) ValidateCredentials(ctx context.Context, req ValidateRequest) (authenticator.Outcome, error) {
	ctx, span := tracer.Start(ctx, "ValidateCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("institution", req.InstitutionID))

	profile, err := s.registry.Get(req.InstitutionID)
	if err != nil {
		span.SetStatus(codes.Error, "unknown institution")
		return authenticator.Outcome{}, err
	}

	if !s.limiter.Admit(req.TenantID, req.InstitutionID, profile.RateLimit.RequestsPerMinute) {
		span.SetStatus(codes.Error, "rate limited")
		return authenticator.Outcome{}, ErrRateLimited
	}
	if !s.limiter.AcquireSession(req.InstitutionID, profile.RateLimit.ConcurrentSessions) {
		span.SetStatus(codes.Error, "no session slot")
		return authenticator.Outcome{}, ErrRateLimited
	}
	defer s.limiter.ReleaseSession(req.InstitutionID)

	page, err := s.sessions.NewSession(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open browser session")
		return authenticator.Outcome{}, err
	}
	defer page.Close()

	outcome := authenticator.NewExecutor(profile).Execute(ctx, page, authenticator.Credentials{
		TenantID:      req.TenantID,
		InstitutionID: req.InstitutionID,
		Username:      req.Username,
		Password:      req.Password,
	})
	span.SetAttributes(attribute.String("result", string(outcome.Result)))
	return outcome, nil
}
