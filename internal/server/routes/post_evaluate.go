package routes

import (
	"errors"
	"net/http"

	"cohera/internal/server/middleware"
	"cohera/pkg/ai"
	"cohera/pkg/coherence"
	"cohera/pkg/logger"
	"cohera/pkg/textseg"

	"github.com/labstack/echo/v4"
)

type evaluateOptions struct {
	Visualize bool `json:"visualize"`
}

type evaluateBody struct {
	Text    string          `json:"text" validate:"required"`
	Options evaluateOptions `json:"options"`
}

// EvaluateHandler scores one paragraph synchronously.
func EvaluateHandler(c echo.Context) error {
	data := new(evaluateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	result, err := app.Pipeline.EvaluateText(ctx, data.Text, data.Options.Visualize)
	if err != nil {
		return evaluationError(c, err)
	}

	if !data.Options.Visualize {
		result.Graph = nil
	}
	return c.JSON(http.StatusOK, result)
}

// evaluationError maps pipeline failures onto HTTP statuses: caller mistakes
// are 400, embedding backend failures are 502, everything else is 500.
func evaluationError(c echo.Context, err error) error {
	var invalid *coherence.InvalidInputError
	switch {
	case errors.Is(err, textseg.ErrEmptyInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Text contains no sentences"})
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": invalid.Error()})
	default:
		var embErr *ai.EmbeddingError
		if errors.As(err, &embErr) {
			logger.Error("Embedding backend failed", "err", err)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Embedding backend unavailable"})
		}
		logger.Error("Evaluation failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
