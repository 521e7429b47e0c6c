package routes

import (
	"encoding/json"
	"net/http"

	"cohera/internal/db"
	"cohera/internal/queue"
	"cohera/internal/server/middleware"
	"cohera/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type createJobBody struct {
	Texts []string `json:"texts" validate:"required,min=1,max=500,dive,required"`
}

type createJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateJobHandler persists an asynchronous batch job and enqueues it for
// the worker. Returns 202 with the job id to poll.
func CreateJobHandler(c echo.Context) error {
	data := new(createJobBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	id, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate job id", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	q := db.New(app.DBConn)
	job, err := q.CreateEvalJob(ctx, db.CreateEvalJobParams{ID: id, Texts: data.Texts})
	if err != nil {
		logger.Error("Failed to create job", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	msg, err := json.Marshal(queue.EvaluateJobMsg{JobID: job.ID})
	if err != nil {
		logger.Error("Failed to marshal job message", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := queue.Publish(app.Queue, queue.EvaluateQueue, msg); err != nil {
		logger.Error("Failed to publish job", "job_id", job.ID, "err", err)
		if failErr := q.FailEvalJob(ctx, job.ID, "failed to enqueue job"); failErr != nil {
			logger.Error("Failed to mark unpublished job failed", "job_id", job.ID, "err", failErr)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, createJobResponse{JobID: job.ID, Status: job.Status})
}
