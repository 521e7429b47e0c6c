package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cohera/internal/db"
	"cohera/pkg/coherence"
	"cohera/pkg/leaselock"
	"cohera/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EvaluateJobMsg is the queue payload for one asynchronous job. The texts
// live in Postgres; the message only carries the job id, so redeliveries
// stay cheap and the job row is the single source of truth.
type EvaluateJobMsg struct {
	JobID string `json:"job_id"`
}

// JobResultItem is one text's outcome inside a batch job. Failed texts carry
// an error and zero scores; they never abort the rest of the batch.
type JobResultItem struct {
	Index            int                        `json:"index"`
	CoherenceScore   float64                    `json:"coherence_score"`
	CoherencePercent int                        `json:"coherence_percent"`
	DisruptionReport []coherence.DisruptionItem `json:"disruption_report"`
	Error            string                     `json:"error,omitempty"`
}

// ProcessEvaluateMessage handles one delivery from the evaluate queue: claim
// the job under a lease, move it to running, score every text, persist the
// results. A returned error sends the message through the retry/DLQ path.
func ProcessEvaluateMessage(
	ctx context.Context,
	pipeline *coherence.Pipeline,
	locker *leaselock.Locker,
	conn *pgxpool.Pool,
	body string,
) error {
	var msg EvaluateJobMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal evaluate message: %w", err)
	}
	if msg.JobID == "" {
		return errors.New("evaluate message has no job id")
	}

	return locker.WithClaim(ctx, "eval_job:"+msg.JobID, leaselock.Options{
		TTL: 10 * time.Minute,
	}, func(ctx context.Context) error {
		return processJob(ctx, pipeline, conn, msg.JobID)
	})
}

func processJob(ctx context.Context, pipeline *coherence.Pipeline, conn *pgxpool.Pool, jobID string) error {
	q := db.New(conn)

	job, err := q.GetEvalJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	started, err := q.MarkEvalJobRunning(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job %s running: %w", jobID, err)
	}
	if !started {
		// Duplicate delivery for a job that already ran (or is running
		// under another lease that expired). Nothing to do.
		logger.Info("Skipping job not in queued state", "job_id", jobID, "status", job.Status)
		return nil
	}

	items := make([]JobResultItem, len(job.Texts))
	for i, text := range job.Texts {
		item := JobResultItem{Index: i}

		result, err := pipeline.EvaluateText(ctx, text, false)
		if err != nil {
			if ctx.Err() != nil {
				// Shutdown or lost lease: put the job back so a retry
				// delivery can finish it.
				_ = q.RequeueEvalJob(context.WithoutCancel(ctx), jobID)
				return ctx.Err()
			}
			logger.Warn("Text in batch job failed", "job_id", jobID, "index", i, "err", err)
			item.Error = err.Error()
			item.DisruptionReport = []coherence.DisruptionItem{}
		} else {
			item.CoherenceScore = result.CoherenceScore
			item.CoherencePercent = result.CoherencePercent
			item.DisruptionReport = result.DisruptionReport
		}
		items[i] = item
	}

	results, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal job results: %w", err)
	}
	if err := q.CompleteEvalJob(ctx, jobID, results); err != nil {
		return fmt.Errorf("failed to persist job results: %w", err)
	}

	logger.Info("Batch job completed", "job_id", jobID, "texts", len(job.Texts))
	return nil
}
