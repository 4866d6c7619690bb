package platform

import (
	"context"
	"mime"
	"net/http"
	"net/url"

	"github.com/dentacamp/portal/core/report"
)

var _ report.Platform = (*Client)(nil)

func (c *Client) FilterReports(ctx context.Context, bearer string, filter report.QueryFilter) ([]report.Report, error) {
	query := url.Values{}
	if filter.StudentID != "" {
		query.Set("student_id", filter.StudentID)
	}
	if filter.CampID != "" {
		query.Set("camp_id", filter.CampID)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}

	var rpts []report.Report
	err := c.do(ctx, http.MethodGet, "/reports", bearer, query, nil, &rpts)
	return rpts, err
}

func (c *Client) GetReport(ctx context.Context, bearer, id string) (report.Report, error) {
	var rpt report.Report
	err := c.do(ctx, http.MethodGet, fmtPath("/reports/%s", id), bearer, nil, nil, &rpt)
	return rpt, err
}

func (c *Client) GenerateReport(ctx context.Context, bearer, screeningID string) (report.Report, error) {
	body := struct {
		ScreeningID string `json:"screening_id"`
	}{screeningID}
	var rpt report.Report
	err := c.do(ctx, http.MethodPost, "/reports/generate", bearer, nil, body, &rpt)
	return rpt, err
}

// DownloadReport streams the report file; content type and filename are
// forwarded as the platform API sent them.
func (c *Client) DownloadReport(ctx context.Context, bearer, id string) (report.Download, error) {
	resp, err := c.stream(ctx, fmtPath("/reports/%s/download", id), bearer)
	if err != nil {
		return report.Download{}, err
	}

	dl := report.Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		dl.Filename = params["filename"]
	}
	return dl, nil
}
