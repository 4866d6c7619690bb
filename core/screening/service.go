package screening

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

const cachePrefix = "screenings:"

type (
	// Platform is the slice of the platform API the screening service needs.
	Platform interface {
		CreateScreening(ctx context.Context, bearer string, ns NewScreening) (Screening, error)
		GetScreening(ctx context.Context, bearer, id string) (Screening, error)
		FilterScreenings(ctx context.Context, bearer string, filter QueryFilter) ([]Screening, error)
	}

	Service struct {
		api    Platform
		cache  core.Cache
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(api Platform, cache core.Cache, conf *core.Config, logger core.Logger) *Service {
	return &Service{api: api, cache: cache, conf: conf, logger: logger}
}

// Submit posts a screening. Duplicate submissions for the same student and
// camp are rejected by the platform API and surface as a ValidationError.
func (svc *Service) Submit(ctx context.Context, bearer string, ns NewScreening) (Screening, error) {
	scr, err := svc.api.CreateScreening(ctx, bearer, ns)
	if err != nil {
		return Screening{}, err
	}
	if cErr := svc.cache.DeletePrefix(ctx, cachePrefix); cErr != nil {
		svc.logger.Warn("invalidating screening cache", cErr)
	}
	return scr, nil
}

func (svc *Service) Get(ctx context.Context, bearer, id string) (Screening, error) {
	return svc.api.GetScreening(ctx, bearer, id)
}

// Filter lists screenings through the query cache.
func (svc *Service) Filter(ctx context.Context, bearer string, filter QueryFilter) ([]Screening, error) {
	filter.Clean()
	key := fmt.Sprintf("%sstudent=%s&camp=%s", cachePrefix, filter.StudentID, filter.CampID)

	var cached []Screening
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading screening cache", err)
	} else if hit {
		return cached, nil
	}

	scrs, err := svc.api.FilterScreenings(ctx, bearer, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listing screenings")
	}
	if cErr := svc.cache.Set(ctx, key, scrs, svc.conf.Cache.TTL); cErr != nil {
		svc.logger.Warn("writing screening cache", cErr)
	}
	return scrs, nil
}
