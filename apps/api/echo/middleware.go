package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core/nav"
)

// sectionMiddleware gates a route group on the nav matrix: the session's
// active role must have access to the section.
func sectionMiddleware(sectionKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := contextSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}
			if !nav.CanAccess(sectionKey, sess.ActiveRole) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
