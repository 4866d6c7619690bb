package echoapi

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core/nav"
	"github.com/dentacamp/portal/core/report"
)

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *ServerDeps) {
	api := reportApi{
		svc:      deps.ReportSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/reports", auth, sectionMiddleware(nav.SectionReports))
	rg.GET("", api.query)
	rg.POST("/generate", api.generate)
	rg.GET("/:id/download", api.download)
	rg.POST("/:id/email", api.email)
}

// Handlers

func (api *reportApi) query(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := report.QueryFilter{
		StudentID: ctx.QueryParam("student_id"),
		CampID:    ctx.QueryParam("camp_id"),
		Status:    ctx.QueryParam("status"),
	}
	rpts, err := api.svc.Query(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	return ctx.JSON(http.StatusOK, rpts)
}

func (api *reportApi) generate(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data report.GenerateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	rpt, err := api.svc.Generate(ctx.Request().Context(), sess.Token, data.ScreeningID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, rpt)
}

// download streams the report file as the platform API sent it.
func (api *reportApi) download(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	dl, err := api.svc.Download(ctx.Request().Context(), sess.Token, ctx.Param("id"))
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	if dl.Filename != "" {
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+dl.Filename+`"`)
	}
	if dl.Size > 0 {
		ctx.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(dl.Size, 10))
	}
	return ctx.Stream(http.StatusOK, dl.ContentType, dl.Body)
}

func (api *reportApi) email(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data report.EmailRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	to := mail.Address{Address: data.To}
	if err = api.svc.EmailToParent(ctx.Request().Context(), sess.Token, ctx.Param("id"), to); err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, echo.Map{"detail": "report email queued"})
}
