package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/nav"
	"github.com/dentacamp/portal/core/screening"
)

type screeningApi struct {
	svc      *screening.Service
	validate *validator.Validate
}

func registerScreeningAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *ServerDeps) {
	api := screeningApi{
		svc:      deps.ScreeningSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/screenings", auth, sectionMiddleware(nav.SectionScreenings))
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/chart", api.chart)
	sg.GET("/:id", api.retrieve)
}

// Handlers

func (api *screeningApi) query(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := screening.QueryFilter{
		StudentID: ctx.QueryParam("student_id"),
		CampID:    ctx.QueryParam("camp_id"),
	}
	scrs, err := api.svc.Filter(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying screenings")
	}
	return ctx.JSON(http.StatusOK, scrs)
}

func (api *screeningApi) create(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data screening.NewScreening
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScreening")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	scr, err := api.svc.Submit(ctx.Request().Context(), sess.Token, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, scr)
}

func (api *screeningApi) retrieve(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	scr, err := api.svc.Get(ctx.Request().Context(), sess.Token, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scr)
}

// chart returns a blank chart for the requested dentition, every tooth healthy.
func (api *screeningApi) chart(ctx echo.Context) error {
	dentition := screening.Dentition(ctx.QueryParam("dentition"))
	if dentition == "" {
		dentition = screening.DentitionPermanent
	}
	switch dentition {
	case screening.DentitionPermanent, screening.DentitionPrimary, screening.DentitionMixed:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "dentition", Error: "unknown dentition"})
	}
	return ctx.JSON(http.StatusOK, screening.NewChart(dentition))
}
