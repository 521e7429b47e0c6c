package db

import (
	"context"
	"encoding/json"
	"time"
)

// Job statuses. Transitions only move forward: queued -> running ->
// completed|failed. A redelivered queue message for a finished job is a
// no-op.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type EvalJob struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Texts     []string        `json:"-"`
	Results   json.RawMessage `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CreateEvalJobParams struct {
	ID    string
	Texts []string
}

const createEvalJobSQL = `
INSERT INTO eval_jobs (id, status, texts)
VALUES ($1, $2, $3)
RETURNING id, status, texts, created_at, updated_at;
`

func (q *Queries) CreateEvalJob(ctx context.Context, arg CreateEvalJobParams) (EvalJob, error) {
	texts, err := json.Marshal(arg.Texts)
	if err != nil {
		return EvalJob{}, err
	}

	var j EvalJob
	var rawTexts []byte
	err = q.db.QueryRow(ctx, createEvalJobSQL, arg.ID, JobStatusQueued, texts).
		Scan(&j.ID, &j.Status, &rawTexts, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return EvalJob{}, err
	}
	if err := json.Unmarshal(rawTexts, &j.Texts); err != nil {
		return EvalJob{}, err
	}
	return j, nil
}

const getEvalJobSQL = `
SELECT id, status, texts, results, error, created_at, updated_at
FROM eval_jobs
WHERE id = $1;
`

func (q *Queries) GetEvalJob(ctx context.Context, id string) (EvalJob, error) {
	var j EvalJob
	var rawTexts []byte
	var results *json.RawMessage
	var jobErr *string
	err := q.db.QueryRow(ctx, getEvalJobSQL, id).
		Scan(&j.ID, &j.Status, &rawTexts, &results, &jobErr, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return EvalJob{}, err
	}
	if err := json.Unmarshal(rawTexts, &j.Texts); err != nil {
		return EvalJob{}, err
	}
	if results != nil {
		j.Results = *results
	}
	if jobErr != nil {
		j.Error = *jobErr
	}
	return j, nil
}

const markEvalJobRunningSQL = `
UPDATE eval_jobs
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3;
`

// MarkEvalJobRunning moves a queued job to running. Returns false when the
// job was not in the queued state, which signals a duplicate delivery.
func (q *Queries) MarkEvalJobRunning(ctx context.Context, id string) (bool, error) {
	tag, err := q.db.Exec(ctx, markEvalJobRunningSQL, id, JobStatusRunning, JobStatusQueued)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const completeEvalJobSQL = `
UPDATE eval_jobs
SET status = $2, results = $3, updated_at = now()
WHERE id = $1;
`

func (q *Queries) CompleteEvalJob(ctx context.Context, id string, results json.RawMessage) error {
	_, err := q.db.Exec(ctx, completeEvalJobSQL, id, JobStatusCompleted, results)
	return err
}

const failEvalJobSQL = `
UPDATE eval_jobs
SET status = $2, error = $3, updated_at = now()
WHERE id = $1;
`

func (q *Queries) FailEvalJob(ctx context.Context, id string, message string) error {
	_, err := q.db.Exec(ctx, failEvalJobSQL, id, JobStatusFailed, message)
	return err
}

const requeueEvalJobSQL = `
UPDATE eval_jobs
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3;
`

// RequeueEvalJob resets a running job back to queued so a retried queue
// message can pick it up again.
func (q *Queries) RequeueEvalJob(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, requeueEvalJobSQL, id, JobStatusQueued, JobStatusRunning)
	return err
}
