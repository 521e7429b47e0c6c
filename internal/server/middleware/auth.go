package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware authenticates API requests from the Authorization header.
// The master API key bypasses token validation entirely; otherwise the
// bearer token is a JWT, verified against the JWKS endpoint when one is
// configured and against the HS256 shared secret otherwise.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		cc := c.(*AppContext)
		app := cc.App

		if app.MasterAPIKey != "" && token == app.MasterAPIKey {
			cc.User = &AppUser{Subject: "master", Master: true}
			return next(c)
		}

		var parsed *jwt.Token
		var err error
		switch {
		case app.Key != nil:
			parsed, err = jwt.Parse(token, app.Key.Keyfunc)
		case len(app.JWTSecret) > 0:
			parsed, err = jwt.Parse(token, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return app.JWTSecret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
		default:
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		subject := ""
		if claims, ok := parsed.Claims.(jwt.MapClaims); ok {
			if sub, err := claims.GetSubject(); err == nil {
				subject = sub
			}
		}

		cc.User = &AppUser{Subject: subject}
		return next(c)
	}
}
