package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/nav"
	"github.com/dentacamp/portal/core/student"
)

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/students", auth, sectionMiddleware(nav.SectionStudents))
	sg.GET("", api.query)
	sg.POST("", api.create)

	// roster uploads have their own gate
	ug := g.Group("/students/upload", auth, sectionMiddleware(nav.SectionUpload))
	ug.POST("", api.previewUpload)
	ug.POST("/:batch/confirm", api.confirmUpload)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	filter := student.QueryFilter{
		SchoolID: ctx.QueryParam("school_id"),
		Search:   ctx.QueryParam("search"),
		Class:    ctx.QueryParam("class"),
	}
	stds, err := api.svc.Query(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, stds)
}

func (api *studentApi) create(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Register(ctx.Request().Context(), sess.Token, data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// previewUpload parses an uploaded xlsx roster and returns a per-row preview.
// Nothing is submitted to the platform API until the batch is confirmed.
func (api *studentApi) previewUpload(ctx echo.Context) error {
	_, err := contextSession(ctx)
	if err != nil {
		return err
	}

	schoolID := core.CleanString(ctx.FormValue("school_id"))
	if schoolID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "school_id", Error: "this field is required"})
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a roster file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded roster")
	}
	defer f.Close()

	preview, err := api.svc.PreviewUpload(ctx.Request().Context(), schoolID, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, preview)
}

func (api *studentApi) confirmUpload(ctx echo.Context) error {
	sess, err := contextSession(ctx)
	if err != nil {
		return err
	}

	stds, err := api.svc.ConfirmUpload(ctx.Request().Context(), sess.Token, ctx.Param("batch"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, stds)
}
