package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/nav"
	"github.com/dentacamp/portal/core/session"
)

type sessionApi struct {
	svc      *session.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *ServerDeps) {
	api := sessionApi{
		svc:      deps.SessionSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/magic-link", api.requestMagicLink)
	ag.POST("/consume", api.consume)

	// authed endpoints
	sg := ag.Group("", auth)
	sg.GET("/session", api.retrieve)
	sg.POST("/refresh", api.refresh)
	sg.PUT("/active-role", api.switchRole)
	sg.PUT("/active-membership", api.switchMembership)
	sg.POST("/logout", api.logout)

	g.GET("/nav", api.nav, auth)
}

// Handlers

func (api *sessionApi) requestMagicLink(ctx echo.Context) error {
	var data session.MagicLinkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MagicLinkRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// an unknown email gets the same answer as a known one
	if err := api.svc.RequestLogin(ctx.Request().Context(), data.Email); err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return errors.Wrap(err, "requesting magic link")
		}
	}
	return ctx.JSON(http.StatusAccepted, echo.Map{"detail": "magic link sent"})
}

func (api *sessionApi) consume(ctx echo.Context) error {
	var data session.ConsumeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConsumeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Consume(ctx.Request().Context(), data.Token)
	if err != nil {
		return errors.Wrap(err, "consuming magic link")
	}
	if err = setSessionCookie(ctx, api.conf, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// refresh re-fetches the account and memberships from the platform API and
// re-resolves the active role.
func (api *sessionApi) refresh(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	sess, err = api.svc.Refresh(ctx.Request().Context(), sess)
	if err != nil {
		if errors.Cause(err) == core.ErrUnauthenticated {
			clearSessionCookie(ctx, api.conf)
			return err
		}
		return errors.Wrap(err, "refreshing session")
	}
	if err = setSessionCookie(ctx, api.conf, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) switchRole(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data session.SwitchRole
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SwitchRole")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sess, err = api.svc.SwitchRole(ctx.Request().Context(), sess, data.Role)
	if err != nil {
		return err
	}
	if err = setSessionCookie(ctx, api.conf, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) switchMembership(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data session.SwitchMembership
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SwitchMembership")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sess, err = api.svc.SwitchMembership(ctx.Request().Context(), sess, data.MembershipID)
	if err != nil {
		return err
	}
	if err = setSessionCookie(ctx, api.conf, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) logout(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Logout(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "logging out")
	}
	clearSessionCookie(ctx, api.conf)
	return ctx.NoContent(http.StatusNoContent)
}

// nav returns the menu the active role is allowed to see.
func (api *sessionApi) nav(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nav.MenuFor(sess.ActiveRole))
}
