package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"cohera/pkg/coherence"
)

// AppUser is the authenticated caller, resolved by AuthMiddleware.
type AppUser struct {
	Subject string
	Master  bool
}

// App holds the process-wide collaborators handlers need. The pipeline (and
// the embedder inside it) is constructed once at startup and shared; per
// request construction would defeat the encoder parameter cache and the
// provider's concurrency limits.
type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	S3       *s3.Client
	Pipeline *coherence.Pipeline

	MasterAPIKey string
	JWTSecret    []byte
	Key          keyfunc.Keyfunc
}

// AppContext wraps echo's context with the app collaborators and, after
// auth, the caller identity.
type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

// AppContextMiddleware attaches the shared App to every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app, nil})
		}
	}
}
