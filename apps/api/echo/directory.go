package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core/directory"
	"github.com/dentacamp/portal/core/nav"
)

type directoryApi struct {
	svc      *directory.Service
	validate *validator.Validate
}

func registerDirectoryAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *ServerDeps) {
	api := directoryApi{
		svc:      deps.DirectorySvc,
		validate: deps.Validate,
	}

	fg := g.Group("/franchises", auth, sectionMiddleware(nav.SectionFranchises))
	fg.GET("", api.queryFranchises)
	fg.POST("", api.createFranchise)

	sg := g.Group("/schools", auth, sectionMiddleware(nav.SectionSchools))
	sg.GET("", api.querySchools)
	sg.POST("", api.createSchool)

	cg := g.Group("/camps", auth, sectionMiddleware(nav.SectionCamps))
	cg.GET("", api.queryCamps)
	cg.POST("", api.createCamp)

	ug := g.Group("/users", auth, sectionMiddleware(nav.SectionUsers))
	ug.GET("", api.queryUsers)
}

// Handlers

func (api *directoryApi) queryFranchises(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := directoryFilter(ctx)
	frs, err := api.svc.QueryFranchises(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying franchises")
	}
	return ctx.JSON(http.StatusOK, frs)
}

func (api *directoryApi) createFranchise(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data directory.NewFranchise
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFranchise")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	fr, err := api.svc.CreateFranchise(ctx.Request().Context(), sess.Token, data)
	if err != nil {
		return errors.Wrap(err, "creating franchise")
	}
	return ctx.JSON(http.StatusCreated, fr)
}

func (api *directoryApi) querySchools(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := directoryFilter(ctx)
	schs, err := api.svc.QuerySchools(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return ctx.JSON(http.StatusOK, schs)
}

func (api *directoryApi) createSchool(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data directory.NewSchool
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.CreateSchool(ctx.Request().Context(), sess.Token, data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *directoryApi) queryCamps(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := directoryFilter(ctx)
	camps, err := api.svc.QueryCamps(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying camps")
	}
	return ctx.JSON(http.StatusOK, camps)
}

func (api *directoryApi) createCamp(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data directory.NewCamp
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCamp")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	camp, err := api.svc.CreateCamp(ctx.Request().Context(), sess.Token, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, camp)
}

func (api *directoryApi) queryUsers(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := directoryFilter(ctx)
	users, err := api.svc.QueryUsers(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func directoryFilter(ctx echo.Context) directory.QueryFilter {
	filter := directory.QueryFilter{
		Search:      ctx.QueryParam("search"),
		FranchiseID: ctx.QueryParam("franchise_id"),
		SchoolID:    ctx.QueryParam("school_id"),
		Role:        ctx.QueryParam("role"),
	}
	filter.Clean()
	return filter
}
