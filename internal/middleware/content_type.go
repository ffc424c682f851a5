package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ActivityContentTypeMiddleware creates an Echo middleware that rejects inbox
// posts lacking an ActivityPub content type
func ActivityContentTypeMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contentType := c.Request().Header.Get(echo.HeaderContentType)
			if !strings.Contains(contentType, "application/activity+json") &&
				!strings.Contains(contentType, "application/ld+json") &&
				!strings.Contains(contentType, "application/json") {
				return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Expected an ActivityPub content type")
			}
			return next(c)
		}
	}
}
