package report

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

const reportCachePrefix = "reports:"

var ErrNotReady = errors.New("report is not ready for download")

type (
	// Platform is the slice of the platform API the report service needs.
	Platform interface {
		FilterReports(ctx context.Context, bearer string, filter QueryFilter) ([]Report, error)
		GetReport(ctx context.Context, bearer, id string) (Report, error)
		GenerateReport(ctx context.Context, bearer, screeningID string) (Report, error)
		DownloadReport(ctx context.Context, bearer, id string) (Download, error)
	}

	Service struct {
		api    Platform
		cache  core.Cache
		mail   core.EmailService
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(api Platform, cache core.Cache, mail core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{api: api, cache: cache, mail: mail, conf: conf, logger: logger}
}

func (svc *Service) Query(ctx context.Context, bearer string, filter QueryFilter) ([]Report, error) {
	key := cacheKey(filter)

	var cached []Report
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading report cache", err)
	} else if hit {
		return cached, nil
	}

	reports, err := svc.api.FilterReports(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	if err = svc.cache.Set(ctx, key, reports, svc.conf.Cache.TTL); err != nil {
		svc.logger.Warn("writing report cache", err)
	}
	return reports, nil
}

func (svc *Service) Get(ctx context.Context, bearer, id string) (Report, error) {
	return svc.api.GetReport(ctx, bearer, id)
}

func (svc *Service) Generate(ctx context.Context, bearer, screeningID string) (Report, error) {
	rpt, err := svc.api.GenerateReport(ctx, bearer, screeningID)
	if err != nil {
		return Report{}, err
	}
	svc.logger.Info(fmt.Sprintf("report generation requested for screening %s", screeningID))
	svc.invalidate(ctx)
	return rpt, nil
}

// Download streams the report file from the platform API. The caller owns
// the returned body and must close it; the bytes pass through untouched.
func (svc *Service) Download(ctx context.Context, bearer, id string) (Download, error) {
	rpt, err := svc.api.GetReport(ctx, bearer, id)
	if err != nil {
		return Download{}, err
	}
	if !rpt.Ready() {
		return Download{}, core.NewValidationError(ErrNotReady,
			core.FieldError{Field: "id", Error: ErrNotReady.Error()})
	}
	return svc.api.DownloadReport(ctx, bearer, id)
}

// EmailToParent downloads a report and mails it as an attachment.
func (svc *Service) EmailToParent(ctx context.Context, bearer, id string, to mail.Address) error {
	dl, err := svc.Download(ctx, bearer, id)
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("%s - Dental Screening Report", svc.conf.AppName),
		TemplateName: "report-email",
		TemplateData: struct{ Filename string }{dl.Filename},
	}
	if err = msg.Attach(dl.Body, dl.Filename, dl.ContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}

	svc.mail.SendMessages(msg)
	svc.logger.Info(fmt.Sprintf("report %s emailed to %s", id, to.Address))
	return nil
}

func (svc *Service) invalidate(ctx context.Context) {
	if err := svc.cache.DeletePrefix(ctx, reportCachePrefix); err != nil {
		svc.logger.Warn("invalidating report cache", err)
	}
}

func cacheKey(filter QueryFilter) string {
	return fmt.Sprintf("%sstudent=%s&camp=%s&status=%s",
		reportCachePrefix, filter.StudentID, filter.CampID, filter.Status)
}
