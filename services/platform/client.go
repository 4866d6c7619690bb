// Package platform is the HTTP client for the DentaCamp platform API. It is
// the single outbound surface of the portal: every core service talks to the
// platform through it.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  core.Logger
}

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Platform.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.Platform.Timeout},
		logger:  logger,
	}
}

// Ping checks that the platform API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil, nil)
}

// do performs a JSON request against the platform API. A nil out discards
// the response body; failures are never retried here.
func (c *Client) do(ctx context.Context, method, path, bearer string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buff := new(bytes.Buffer)
		if err := json.NewEncoder(buff).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = buff
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

// stream performs a GET and hands the raw body to the caller, who owns it.
func (c *Client) stream(ctx context.Context, path, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling GET %s", path)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.decodeError(resp)
	}
	return resp, nil
}

// apiError is the platform API's error payload.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) decodeError(resp *http.Response) error {
	var payload apiError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		payload.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return core.ErrUnauthenticated
	case http.StatusForbidden:
		return core.ErrForbidden
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		flds := make([]core.FieldError, 0, len(payload.Fields))
		for field, msg := range payload.Fields {
			flds = append(flds, core.FieldError{Field: field, Error: msg})
		}
		return core.NewValidationError(errors.New(payload.Error), flds...)
	default:
		return errors.Errorf("platform API error: %s (%d)", payload.Error, resp.StatusCode)
	}
}

func fmtPath(format string, args ...interface{}) string {
	escaped := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if s, ok := arg.(string); ok {
			escaped = append(escaped, url.PathEscape(s))
			continue
		}
		escaped = append(escaped, arg)
	}
	return fmt.Sprintf(format, escaped...)
}
