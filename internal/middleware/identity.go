package middleware

// identity.go derives a stable viewer identifier for rate limiting and logs.
// There are no accounts: a viewer is known by the personal token in their
// link, by the session they drive, or not at all.

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wrapped-story/internal/share"
)

// Context keys set by the middleware in this package.
const (
	CtxViewerID      = "viewer_id"
	CtxAudience      = "audience"
	CtxAdminControls = "admin_controls"
)

// SessionHeader lets clients name the session they act for on routes that
// do not carry it in the path.
const SessionHeader = "X-Session-ID"

// Identify stores the viewer identifier under CtxViewerID.
func Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CtxViewerID, resolveViewer(c))
			return next(c)
		}
	}
}

func resolveViewer(c echo.Context) string {
	q := c.QueryParams()
	if g := strings.TrimSpace(q.Get(share.ParamGuest)); g != "" {
		return "guest:" + g
	}
	if s := strings.TrimSpace(q.Get(share.ParamStaff)); s != "" {
		return "staff:" + s
	}
	if id := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); id != "" {
		return "session:" + id
	}
	return "anon"
}

// ViewerID returns the identifier stored by Identify, or "anon".
func ViewerID(c echo.Context) string {
	if s, ok := c.Get(CtxViewerID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
