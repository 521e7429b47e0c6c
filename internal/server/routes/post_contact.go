package routes

import (
	"net/http"

	"cohera/internal/db"
	"cohera/internal/server/middleware"
	"cohera/internal/util"
	"cohera/pkg/logger"

	"github.com/labstack/echo/v4"
)

type contactBody struct {
	Name         string `json:"name" form:"name" validate:"required,max=200"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	Organization string `json:"organization" form:"organization" validate:"max=200"`
	Message      string `json:"message" form:"message" validate:"required,max=5000"`
}

// ContactHandler persists a contact form submission.
func ContactHandler(c echo.Context) error {
	data := new(contactBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	_, err := db.New(app.DBConn).CreateContact(ctx, db.CreateContactParams{
		Name:         util.SanitizePostgresText(data.Name),
		Email:        util.SanitizePostgresText(data.Email),
		Organization: util.SanitizePostgresText(data.Organization),
		Message:      util.SanitizePostgresText(data.Message),
	})
	if err != nil {
		logger.Error("Failed to store contact submission", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Thank you for reaching out"})
}
