package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/share"
)

// LegacyView honours the old ?view= parameter.  Any value hides the admin
// controls, since such links are handed to viewers; a recognised one also
// selects the audience.
func LegacyView() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			q := share.ParseQuery(c.QueryParams())
			c.Set(CtxAdminControls, q.AdminControls)
			if q.View != "" {
				c.Set(CtxAudience, q.View)
			}
			return next(c)
		}
	}
}

// AudienceFrom returns the audience chosen by LegacyView, if any.
func AudienceFrom(c echo.Context) (model.Audience, bool) {
	a, ok := c.Get(CtxAudience).(model.Audience)
	return a, ok
}

// AdminControls reports whether the request may show and use the admin
// controls.  It defaults to true when LegacyView did not run.
func AdminControls(c echo.Context) bool {
	v, ok := c.Get(CtxAdminControls).(bool)
	return !ok || v
}

// RequireAdminControls rejects requests made from a shared ?view= link.
// It must run after LegacyView.
func RequireAdminControls() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !AdminControls(c) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin controls are disabled for this link"})
			}
			return next(c)
		}
	}
}
