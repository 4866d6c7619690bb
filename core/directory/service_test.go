package directory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/directory"
	memcache "github.com/dentacamp/portal/storage/cache/inmem"
	"github.com/dentacamp/portal/tests"
)

type fakePlatform struct {
	directory.Platform

	schools      map[string]directory.School
	franchises   []directory.Franchise
	filterCalls  int
	createdCamps []directory.NewCamp
}

func (f *fakePlatform) FilterFranchises(_ context.Context, _ string, _ directory.QueryFilter) ([]directory.Franchise, error) {
	f.filterCalls++
	return f.franchises, nil
}

func (f *fakePlatform) GetSchool(_ context.Context, _, id string) (directory.School, error) {
	return f.schools[id], nil
}

func (f *fakePlatform) CreateCamp(_ context.Context, _ string, nc directory.NewCamp) (directory.Camp, error) {
	f.createdCamps = append(f.createdCamps, nc)
	return directory.Camp{ID: "camp-1", SchoolID: nc.SchoolID, Name: nc.Name, StartsAt: nc.StartsAt, EndsAt: nc.EndsAt}, nil
}

func (f *fakePlatform) CreateFranchise(_ context.Context, _ string, nf directory.NewFranchise) (directory.Franchise, error) {
	fr := directory.Franchise{ID: "fr-new", Name: nf.Name, Region: nf.Region}
	f.franchises = append(f.franchises, fr)
	return fr, nil
}

func setup(t *testing.T, api directory.Platform) *directory.Service {
	t.Helper()
	conf := testutil.NewConfig(t)
	return directory.NewService(api, memcache.NewCache(), conf, testutil.NewLogger(t))
}

func Test_Service_QueryFranchises_cachesListings(t *testing.T) {
	api := &fakePlatform{franchises: []directory.Franchise{{ID: "fr-1", Name: "Bright Smiles"}}}
	svc := setup(t, api)
	ctx := context.Background()

	frs, err := svc.QueryFranchises(ctx, "tok", directory.QueryFilter{})
	assert.NoError(t, err)
	assert.Len(t, frs, 1)
	assert.Equal(t, 1, api.filterCalls)

	// second read is served from the cache
	frs, err = svc.QueryFranchises(ctx, "tok", directory.QueryFilter{})
	assert.NoError(t, err)
	assert.Len(t, frs, 1)
	assert.Equal(t, 1, api.filterCalls)

	// distinct filters miss
	_, err = svc.QueryFranchises(ctx, "tok", directory.QueryFilter{Search: "bright"})
	assert.NoError(t, err)
	assert.Equal(t, 2, api.filterCalls)
}

func Test_Service_CreateFranchise_invalidatesCache(t *testing.T) {
	api := &fakePlatform{franchises: []directory.Franchise{{ID: "fr-1", Name: "Bright Smiles"}}}
	svc := setup(t, api)
	ctx := context.Background()

	_, err := svc.QueryFranchises(ctx, "tok", directory.QueryFilter{})
	assert.NoError(t, err)
	assert.Equal(t, 1, api.filterCalls)

	_, err = svc.CreateFranchise(ctx, "tok", directory.NewFranchise{Name: "Tooth Truck", Region: "North"})
	assert.NoError(t, err)

	frs, err := svc.QueryFranchises(ctx, "tok", directory.QueryFilter{})
	assert.NoError(t, err)
	assert.Len(t, frs, 2)
	assert.Equal(t, 2, api.filterCalls, "mutation must invalidate the listing cache")
}

func Test_Service_CreateCamp_schoolPeriod(t *testing.T) {
	termStart := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	termEnd := time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC)
	api := &fakePlatform{schools: map[string]directory.School{
		"sch-term": {ID: "sch-term", Name: "Hillside Primary", ActiveFrom: termStart, ActiveTo: termEnd},
		"sch-open": {ID: "sch-open", Name: "Lakeview Academy"},
	}}
	svc := setup(t, api)
	ctx := context.Background()

	inTerm := directory.NewCamp{
		SchoolID:   "sch-term",
		Name:       "Autumn Screening Camp",
		StartsAt:   termStart.AddDate(0, 1, 0),
		EndsAt:     termStart.AddDate(0, 1, 2),
		DentistIDs: []string{"u-dent-1"},
	}
	_, err := svc.CreateCamp(ctx, "tok", inTerm)
	assert.NoError(t, err)

	outOfTerm := inTerm
	outOfTerm.StartsAt = termEnd.AddDate(0, 0, 1)
	outOfTerm.EndsAt = termEnd.AddDate(0, 0, 3)
	_, err = svc.CreateCamp(ctx, "tok", outOfTerm)
	assert.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	assert.True(t, ok)
	assert.NotEmpty(t, vErr.Fields)

	// schools without an active period accept any window
	openSchool := inTerm
	openSchool.SchoolID = "sch-open"
	openSchool.StartsAt = termEnd.AddDate(1, 0, 0)
	openSchool.EndsAt = termEnd.AddDate(1, 0, 2)
	_, err = svc.CreateCamp(ctx, "tok", openSchool)
	assert.NoError(t, err)

	assert.Len(t, api.createdCamps, 2)
}
