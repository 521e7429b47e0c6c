package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cohera/internal/db"
	"cohera/internal/server/middleware"
	"cohera/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type getJobResponse struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"`
	Results   json.RawMessage `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetJobHandler returns an asynchronous job's status and, once completed,
// its per-text results.
func GetJobHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing job id"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	job, err := db.New(app.DBConn).GetEvalJob(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
		}
		logger.Error("Failed to load job", "job_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, getJobResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Results:   job.Results,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	})
}
