package platform

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dentacamp/portal/core/student"
)

var _ student.Platform = (*Client)(nil)

func (c *Client) CreateStudent(ctx context.Context, bearer string, ns student.NewStudent) (student.Student, error) {
	var std student.Student
	err := c.do(ctx, http.MethodPost, "/students", bearer, nil, ns, &std)
	return std, err
}

func (c *Client) FilterStudents(ctx context.Context, bearer string, filter student.QueryFilter) ([]student.Student, error) {
	query := url.Values{}
	if filter.SchoolID != "" {
		query.Set("school_id", filter.SchoolID)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Class != "" {
		query.Set("class", filter.Class)
	}

	var stds []student.Student
	err := c.do(ctx, http.MethodGet, "/students", bearer, query, nil, &stds)
	return stds, err
}

func (c *Client) BulkCreateStudents(ctx context.Context, bearer string, students []student.NewStudent) ([]student.Student, error) {
	body := struct {
		Students []student.NewStudent `json:"students"`
	}{students}
	var stds []student.Student
	err := c.do(ctx, http.MethodPost, "/students/bulk", bearer, nil, body, &stds)
	return stds, err
}
