package platform

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dentacamp/portal/core/directory"
)

var _ directory.Platform = (*Client)(nil)

func (c *Client) CreateFranchise(ctx context.Context, bearer string, nf directory.NewFranchise) (directory.Franchise, error) {
	var fr directory.Franchise
	err := c.do(ctx, http.MethodPost, "/franchises", bearer, nil, nf, &fr)
	return fr, err
}

func (c *Client) FilterFranchises(ctx context.Context, bearer string, filter directory.QueryFilter) ([]directory.Franchise, error) {
	var frs []directory.Franchise
	err := c.do(ctx, http.MethodGet, "/franchises", bearer, directoryQuery(filter), nil, &frs)
	return frs, err
}

func (c *Client) CreateSchool(ctx context.Context, bearer string, ns directory.NewSchool) (directory.School, error) {
	var sch directory.School
	err := c.do(ctx, http.MethodPost, "/schools", bearer, nil, ns, &sch)
	return sch, err
}

func (c *Client) GetSchool(ctx context.Context, bearer, id string) (directory.School, error) {
	var sch directory.School
	err := c.do(ctx, http.MethodGet, fmtPath("/schools/%s", id), bearer, nil, nil, &sch)
	return sch, err
}

func (c *Client) FilterSchools(ctx context.Context, bearer string, filter directory.QueryFilter) ([]directory.School, error) {
	var schs []directory.School
	err := c.do(ctx, http.MethodGet, "/schools", bearer, directoryQuery(filter), nil, &schs)
	return schs, err
}

func (c *Client) CreateCamp(ctx context.Context, bearer string, nc directory.NewCamp) (directory.Camp, error) {
	var camp directory.Camp
	err := c.do(ctx, http.MethodPost, "/camps", bearer, nil, nc, &camp)
	return camp, err
}

func (c *Client) FilterCamps(ctx context.Context, bearer string, filter directory.QueryFilter) ([]directory.Camp, error) {
	var camps []directory.Camp
	err := c.do(ctx, http.MethodGet, "/camps", bearer, directoryQuery(filter), nil, &camps)
	return camps, err
}

func (c *Client) FilterUsers(ctx context.Context, bearer string, filter directory.QueryFilter) ([]directory.User, error) {
	var users []directory.User
	err := c.do(ctx, http.MethodGet, "/users", bearer, directoryQuery(filter), nil, &users)
	return users, err
}

func directoryQuery(filter directory.QueryFilter) url.Values {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.FranchiseID != "" {
		query.Set("franchise_id", filter.FranchiseID)
	}
	if filter.SchoolID != "" {
		query.Set("school_id", filter.SchoolID)
	}
	if filter.Role != "" {
		query.Set("role", filter.Role)
	}
	if len(query) == 0 {
		return nil
	}
	return query
}
