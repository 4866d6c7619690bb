package student

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

const (
	studentCachePrefix = "students:"
	batchCachePrefix   = "upload:"
)

var ErrBatchNotFound = pkgerrors.New("upload batch not found or expired")

type (
	// Platform is the slice of the platform API the student service needs.
	Platform interface {
		CreateStudent(ctx context.Context, bearer string, ns NewStudent) (Student, error)
		FilterStudents(ctx context.Context, bearer string, filter QueryFilter) ([]Student, error)
		BulkCreateStudents(ctx context.Context, bearer string, students []NewStudent) ([]Student, error)
	}

	Service struct {
		api      Platform
		cache    core.Cache
		validate *validator.Validate
		conf     *core.Config
		logger   core.Logger
	}
)

func NewService(api Platform, cache core.Cache, validate *validator.Validate, conf *core.Config, logger core.Logger) *Service {
	return &Service{api: api, cache: cache, validate: validate, conf: conf, logger: logger}
}

func (svc *Service) Register(ctx context.Context, bearer string, ns NewStudent) (Student, error) {
	stu, err := svc.api.CreateStudent(ctx, bearer, ns)
	if err != nil {
		return Student{}, err
	}
	svc.invalidate(ctx)
	return stu, nil
}

func (svc *Service) Query(ctx context.Context, bearer string, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	key := fmt.Sprintf("%sschool=%s&search=%s&class=%s", studentCachePrefix, filter.SchoolID, filter.Search, filter.Class)

	var cached []Student
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading student cache", err)
	} else if hit {
		return cached, nil
	}

	students, err := svc.api.FilterStudents(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	if cErr := svc.cache.Set(ctx, key, students, svc.conf.Cache.TTL); cErr != nil {
		svc.logger.Warn("writing student cache", cErr)
	}
	return students, nil
}

// PreviewUpload parses an uploaded xlsx roster and holds the preview under a
// batch ID until it is confirmed or expires. Nothing reaches the platform API
// at this stage.
func (svc *Service) PreviewUpload(ctx context.Context, schoolID string, r io.Reader) (Preview, error) {
	rows, err := parseRoster(r, schoolID, svc.conf.Upload.MaxRows, svc.validate)
	if err != nil {
		return Preview{}, core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}

	preview := Preview{
		BatchID:  uuid.NewString(),
		SchoolID: schoolID,
		Rows:     rows,
	}
	for _, row := range rows {
		if row.OK() {
			preview.ValidCount++
		} else {
			preview.ErrorCount++
		}
	}

	if err = svc.cache.Set(ctx, batchCachePrefix+preview.BatchID, preview, svc.conf.Upload.BatchTTL); err != nil {
		return Preview{}, pkgerrors.Wrap(err, "storing upload batch")
	}
	return preview, nil
}

// ConfirmUpload submits the valid rows of a previously previewed batch and
// drops the batch. Rows with errors are skipped, never fixed up silently.
func (svc *Service) ConfirmUpload(ctx context.Context, bearer, batchID string) ([]Student, error) {
	var preview Preview
	hit, err := svc.cache.Get(ctx, batchCachePrefix+batchID, &preview)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading upload batch")
	}
	if !hit {
		return nil, core.NewValidationError(ErrBatchNotFound, core.FieldError{Field: "batch_id", Error: ErrBatchNotFound.Error()})
	}

	var valid []NewStudent
	for _, row := range preview.Rows {
		if row.OK() {
			valid = append(valid, row.Student)
		}
	}
	if valid == nil {
		return nil, core.NewValidationError(pkgerrors.New("upload batch has no importable rows"),
			core.FieldError{Field: "batch_id", Error: "upload batch has no importable rows"})
	}

	students, err := svc.api.BulkCreateStudents(ctx, bearer, valid)
	if err != nil {
		return nil, err
	}

	if dErr := svc.cache.Delete(ctx, batchCachePrefix+batchID); dErr != nil {
		svc.logger.Warn("dropping upload batch", dErr)
	}
	svc.invalidate(ctx)
	return students, nil
}

func (svc *Service) invalidate(ctx context.Context) {
	if err := svc.cache.DeletePrefix(ctx, studentCachePrefix); err != nil {
		svc.logger.Warn("invalidating student cache", err)
	}
}
