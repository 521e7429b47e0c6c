package server

import (
	"net/http"

	"cohera/internal/server/middleware"
	"cohera/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		app := c.(*middleware.AppContext).App
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
			"model":   app.Pipeline.Model(),
		})
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Evaluation routes
	apiRoutes.POST("/evaluate", routes.EvaluateHandler)
	apiRoutes.POST("/batch-evaluate", routes.BatchEvaluateHandler)

	// Asynchronous job routes
	apiRoutes.POST("/jobs", routes.CreateJobHandler)
	apiRoutes.GET("/jobs/:id", routes.GetJobHandler)

	// Supporting routes
	apiRoutes.POST("/contact", routes.ContactHandler)
	apiRoutes.GET("/examples", routes.GetExamplesHandler)
}
