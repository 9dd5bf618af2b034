package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unisync-backend/lib/extract"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job kinds. A full sync extracts everything the institution exposes.
const (
	JobKindFullSync    = "full_sync"
	JobKindCourses     = "courses"
	JobKindGrades      = "grades"
	JobKindAssignments = "assignments"
)

type Job struct {
	ID            string     `json:"job_id"`
	TenantID      string     `json:"tenant_id"`
	UserID        string     `json:"user_id"`
	InstitutionID string     `json:"institution_id"`
	JobKind       string     `json:"job_kind"`
	Priority      int        `json:"priority"`
	Status        Status     `json:"status"`
	Progress      int        `json:"progress_percent"`
	MessageHe     string     `json:"message_he"`
	MessageEn     string     `json:"message_en"`
	ErrorDetail   string     `json:"error_detail,omitempty"`
	Attempt       int        `json:"attempt"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Store persists jobs and extracted records in sqlite. The jobs table
// doubles as the work queue: Dequeue claims the oldest eligible queued
// job and flips it to running in one transaction.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

const jobColumns = `id, tenant_id, user_id, institution_id, job_kind, priority,
	status, progress_percent, message_he, message_en, error_detail, attempt,
	created_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (Job, error) {
	var job Job
	var createdAt int64
	var completedAt sql.NullInt64
	err := row.Scan(
		&job.ID, &job.TenantID, &job.UserID, &job.InstitutionID, &job.JobKind,
		&job.Priority, &job.Status, &job.Progress, &job.MessageHe, &job.MessageEn,
		&job.ErrorDetail, &job.Attempt, &createdAt, &completedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.CreatedAt = time.Unix(createdAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		job.CompletedAt = &t
	}
	return job, nil
}

func (s Store) Enqueue(ctx context.Context, tenantID, userID, institutionID, jobKind string, priority int) (Job, error) {
	job := Job{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		UserID:        userID,
		InstitutionID: institutionID,
		JobKind:       jobKind,
		Priority:      priority,
		Status:        StatusQueued,
		CreatedAt:     time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_jobs (id, tenant_id, user_id, institution_id, job_kind, priority, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.TenantID, job.UserID, job.InstitutionID, job.JobKind,
		job.Priority, job.Status, job.CreatedAt.Unix(),
	)
	if err != nil {
		return Job{}, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job, nil
}

func (s Store) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM sync_jobs WHERE id = ?`, id)
	return scanJob(row)
}

// Dequeue claims the highest-priority eligible queued job, or reports
// that the queue is empty.
func (s Store) Dequeue(ctx context.Context) (Job, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Job{}, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM sync_jobs
		WHERE status = ? AND not_before <= ?
		ORDER BY priority DESC, created_at ASC
		LIMIT 1`,
		StatusQueued, time.Now().Unix(),
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sync_jobs SET status = ? WHERE id = ?`, StatusRunning, job.ID)
	if err != nil {
		return Job{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Job{}, false, err
	}
	job.Status = StatusRunning
	return job, true, nil
}

// Requeue puts a running job back in the queue, eligible again at
// notBefore. A denied rate check keeps the current attempt count; a retry
// after a failure bumps it.
func (s Store) Requeue(ctx context.Context, id string, notBefore time.Time, attempt int, errorDetail string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs SET status = ?, not_before = ?, attempt = ?, error_detail = ?
		WHERE id = ?`,
		StatusQueued, notBefore.Unix(), attempt, errorDetail, id,
	)
	return err
}

func (s Store) SetProgress(ctx context.Context, id string, percent int, messageHe, messageEn string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs SET progress_percent = ?, message_he = ?, message_en = ?
		WHERE id = ?`,
		percent, messageHe, messageEn, id,
	)
	return err
}

func (s Store) Complete(ctx context.Context, id string, messageHe, messageEn string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs SET status = ?, progress_percent = 100, message_he = ?, message_en = ?, completed_at = ?
		WHERE id = ?`,
		StatusCompleted, messageHe, messageEn, time.Now().Unix(), id,
	)
	return err
}

func (s Store) Fail(ctx context.Context, id string, errorDetail, messageHe, messageEn string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs SET status = ?, message_he = ?, message_en = ?, error_detail = ?, completed_at = ?
		WHERE id = ?`,
		StatusFailed, messageHe, messageEn, errorDetail, time.Now().Unix(), id,
	)
	return err
}

// SaveRecords persists extracted records as the job's output, one row per
// record, payload serialized as json. Returns per-kind counts for the
// completion event.
func (s Store) SaveRecords(ctx context.Context, jobID, institutionID string, records map[string][]extract.Record) (map[string]int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	counts := map[string]int{}
	for kind, list := range records {
		for _, record := range list {
			payload, err := json.Marshal(record)
			if err != nil {
				return nil, err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO extracted_records (job_id, kind, institution_id, payload, extracted_at)
				VALUES (?, ?, ?, ?, ?)`,
				jobID, kind, institutionID, string(payload), record.ExtractedAt.Unix(),
			)
			if err != nil {
				return nil, err
			}
		}
		counts[kind] = len(list)
	}
	return counts, tx.Commit()
}

// Records returns the extracted output of a completed job.
func (s Store) Records(ctx context.Context, jobID string) ([]extract.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM extracted_records WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var record extract.Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
