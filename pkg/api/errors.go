package api

import (
	echo "github.com/labstack/echo/v5"

	"github.com/opencity/insight/pkg/apperror"
)

// mapError maps an apperror.Error to an echo.HTTPError carrying the
// {kind, message} JSON body non-streaming endpoints use for failures.
func mapError(err error) *echo.HTTPError {
	if aerr, ok := err.(*apperror.Error); ok {
		return echo.NewHTTPError(aerr.Kind.HTTPStatus(), ErrorResponse{
			Kind:    string(aerr.Kind),
			Message: aerr.Message,
		})
	}
	return echo.NewHTTPError(500, ErrorResponse{Kind: "Internal", Message: err.Error()})
}

// securityHeaders sets standard response headers on every request.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			return next(c)
		}
	}
}
