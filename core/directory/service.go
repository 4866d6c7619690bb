package directory

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

// cache key prefixes, one per collection
const (
	franchiseCachePrefix = "franchises:"
	schoolCachePrefix    = "schools:"
	campCachePrefix      = "camps:"
	userCachePrefix      = "users:"
)

var errCampOutsideSchoolPeriod = errors.New("camp dates fall outside the school's active period")

type (
	// Platform is the slice of the platform API the directory service needs.
	Platform interface {
		CreateFranchise(ctx context.Context, bearer string, nf NewFranchise) (Franchise, error)
		FilterFranchises(ctx context.Context, bearer string, filter QueryFilter) ([]Franchise, error)
		CreateSchool(ctx context.Context, bearer string, ns NewSchool) (School, error)
		GetSchool(ctx context.Context, bearer, id string) (School, error)
		FilterSchools(ctx context.Context, bearer string, filter QueryFilter) ([]School, error)
		CreateCamp(ctx context.Context, bearer string, nc NewCamp) (Camp, error)
		FilterCamps(ctx context.Context, bearer string, filter QueryFilter) ([]Camp, error)
		FilterUsers(ctx context.Context, bearer string, filter QueryFilter) ([]User, error)
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

func (svc *Service) CreateFranchise(ctx context.Context, bearer string, nf NewFranchise) (Franchise, error) {
	fr, err := svc.api.CreateFranchise(ctx, bearer, nf)
	if err != nil {
		return Franchise{}, err
	}
	svc.invalidate(ctx, franchiseCachePrefix)
	return fr, nil
}

func (svc *Service) QueryFranchises(ctx context.Context, bearer string, filter QueryFilter) ([]Franchise, error) {
	filter.Clean()
	key := cacheKey(franchiseCachePrefix, filter)

	var cached []Franchise
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading directory cache", err)
	} else if hit {
		return cached, nil
	}

	frs, err := svc.api.FilterFranchises(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	svc.store(ctx, key, frs)
	return frs, nil
}

func (svc *Service) CreateSchool(ctx context.Context, bearer string, ns NewSchool) (School, error) {
	sch, err := svc.api.CreateSchool(ctx, bearer, ns)
	if err != nil {
		return School{}, err
	}
	svc.invalidate(ctx, schoolCachePrefix)
	return sch, nil
}

func (svc *Service) QuerySchools(ctx context.Context, bearer string, filter QueryFilter) ([]School, error) {
	filter.Clean()
	key := cacheKey(schoolCachePrefix, filter)

	var cached []School
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading directory cache", err)
	} else if hit {
		return cached, nil
	}

	schs, err := svc.api.FilterSchools(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	svc.store(ctx, key, schs)
	return schs, nil
}

// CreateCamp schedules a camp; when the school declares an active period the
// camp window must fall inside it.
func (svc *Service) CreateCamp(ctx context.Context, bearer string, nc NewCamp) (Camp, error) {
	sch, err := svc.api.GetSchool(ctx, bearer, nc.SchoolID)
	if err != nil {
		return Camp{}, pkgerrors.Wrap(err, "fetching school")
	}
	if !campWithinPeriod(nc, sch) {
		return Camp{}, core.NewValidationError(errCampOutsideSchoolPeriod,
			core.FieldError{Field: "starts_at", Error: errCampOutsideSchoolPeriod.Error()})
	}

	camp, err := svc.api.CreateCamp(ctx, bearer, nc)
	if err != nil {
		return Camp{}, err
	}
	svc.invalidate(ctx, campCachePrefix)
	return camp, nil
}

func (svc *Service) QueryCamps(ctx context.Context, bearer string, filter QueryFilter) ([]Camp, error) {
	filter.Clean()
	key := cacheKey(campCachePrefix, filter)

	var cached []Camp
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading directory cache", err)
	} else if hit {
		return cached, nil
	}

	camps, err := svc.api.FilterCamps(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	svc.store(ctx, key, camps)
	return camps, nil
}

func (svc *Service) QueryUsers(ctx context.Context, bearer string, filter QueryFilter) ([]User, error) {
	filter.Clean()
	key := cacheKey(userCachePrefix, filter)

	var cached []User
	if hit, err := svc.cache.Get(ctx, key, &cached); err != nil {
		svc.logger.Warn("reading directory cache", err)
	} else if hit {
		return cached, nil
	}

	users, err := svc.api.FilterUsers(ctx, bearer, filter)
	if err != nil {
		return nil, err
	}
	svc.store(ctx, key, users)
	return users, nil
}

// store and invalidate degrade to direct platform calls on cache failure.
func (svc *Service) store(ctx context.Context, key string, val interface{}) {
	if err := svc.cache.Set(ctx, key, val, svc.conf.Cache.TTL); err != nil {
		svc.logger.Warn("writing directory cache", err)
	}
}

func (svc *Service) invalidate(ctx context.Context, prefix string) {
	if err := svc.cache.DeletePrefix(ctx, prefix); err != nil {
		svc.logger.Warn("invalidating directory cache", err)
	}
}

func cacheKey(prefix string, filter QueryFilter) string {
	return fmt.Sprintf("%ssearch=%s&franchise=%s&school=%s&role=%s",
		prefix, filter.Search, filter.FranchiseID, filter.SchoolID, filter.Role)
}

func campWithinPeriod(nc NewCamp, sch School) bool {
	if !sch.ActiveFrom.IsZero() && nc.StartsAt.Before(sch.ActiveFrom) {
		return false
	}
	if !sch.ActiveTo.IsZero() && nc.EndsAt.After(sch.ActiveTo) {
		return false
	}
	return true
}
