package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"unisync-backend/lib/telemetry"
)

// EmitterConfig points at the downstream collaborators' event endpoints.
// Empty URLs disable that target.
type EmitterConfig struct {
	NotificationBaseURL string `json:"notification_base_url"`
	AnalyticsBaseURL    string `json:"analytics_base_url"`
}

// Emitter fans job lifecycle events out to the notification and analytics
// services. Delivery is fire-and-forget: an unreachable collaborator must
// never fail a job, so errors are logged and dropped.
type Emitter struct {
	targets []*resty.Client
}

func NewEmitter(config EmitterConfig) *Emitter {
	e := &Emitter{}
	for _, baseURL := range []string{config.NotificationBaseURL, config.AnalyticsBaseURL} {
		if baseURL == "" {
			continue
		}
		client := resty.New().
			SetBaseURL(baseURL).
			SetTimeout(time.Second * 10)
		telemetry.InstrumentResty(client, "services/sync/events")
		e.targets = append(e.targets, client)
	}
	return e
}

type syncCompletedEvent struct {
	Event  string         `json:"event"`
	JobID  string         `json:"job_id"`
	UserID string         `json:"user_id"`
	Counts map[string]int `json:"counts"`
}

type syncFailedEvent struct {
	Event     string `json:"event"`
	JobID     string `json:"job_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
	MessageHe string `json:"message_he"`
	MessageEn string `json:"message_en"`
}

func (e *Emitter) SyncCompleted(ctx context.Context, job Job, counts map[string]int) {
	e.post(ctx, syncCompletedEvent{
		Event:  "sync.completed",
		JobID:  job.ID,
		UserID: job.UserID,
		Counts: counts,
	})
}

func (e *Emitter) SyncFailed(ctx context.Context, job Job, reason, messageHe, messageEn string) {
	e.post(ctx, syncFailedEvent{
		Event:     "sync.failed",
		JobID:     job.ID,
		UserID:    job.UserID,
		Reason:    reason,
		MessageHe: messageHe,
		MessageEn: messageEn,
	})
}

func (e *Emitter) post(ctx context.Context, body any) {
	for _, client := range e.targets {
		res, err := client.R().
			SetContext(ctx).
			SetBody(body).
			Post("/events")
		if err != nil {
			slog.WarnContext(ctx, "failed to deliver event", "target", client.BaseURL, "err", err)
			continue
		}
		if res.IsError() {
			slog.WarnContext(ctx, "event endpoint returned an error",
				"target", client.BaseURL, "status", res.StatusCode())
		}
	}
}
