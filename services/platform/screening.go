package platform

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dentacamp/portal/core/screening"
)

var _ screening.Platform = (*Client)(nil)

func (c *Client) CreateScreening(ctx context.Context, bearer string, ns screening.NewScreening) (screening.Screening, error) {
	var scr screening.Screening
	err := c.do(ctx, http.MethodPost, "/screenings", bearer, nil, ns, &scr)
	return scr, err
}

func (c *Client) GetScreening(ctx context.Context, bearer, id string) (screening.Screening, error) {
	var scr screening.Screening
	err := c.do(ctx, http.MethodGet, fmtPath("/screenings/%s", id), bearer, nil, nil, &scr)
	return scr, err
}

func (c *Client) FilterScreenings(ctx context.Context, bearer string, filter screening.QueryFilter) ([]screening.Screening, error) {
	query := url.Values{}
	if filter.StudentID != "" {
		query.Set("student_id", filter.StudentID)
	}
	if filter.CampID != "" {
		query.Set("camp_id", filter.CampID)
	}

	var scrs []screening.Screening
	err := c.do(ctx, http.MethodGet, "/screenings", bearer, query, nil, &scrs)
	return scrs, err
}
