package routes

import (
	"net/http"

	"cohera/internal/server/middleware"
	"cohera/internal/storage"
	"cohera/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetExamplesHandler serves the curated example paragraphs.
func GetExamplesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	examples, err := storage.LoadExamples(ctx, app.S3)
	if err != nil {
		logger.Error("Failed to load examples", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Examples unavailable"})
	}

	return c.JSON(http.StatusOK, map[string][]storage.Example{"examples": examples})
}
