package platform

import (
	"context"
	"net/http"

	"github.com/dentacamp/portal/core/session"
)

var _ session.Platform = (*Client)(nil)

func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}
	return c.do(ctx, http.MethodPost, "/auth/magic-link/request", "", nil, body, nil)
}

func (c *Client) ConsumeMagicLink(ctx context.Context, token string) (string, error) {
	body := struct {
		Token string `json:"token"`
	}{token}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/magic-link/consume", "", nil, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) FetchAccount(ctx context.Context, bearer string) (session.Account, error) {
	var acct session.Account
	err := c.do(ctx, http.MethodGet, "/auth/me", bearer, nil, nil, &acct)
	return acct, err
}

func (c *Client) FetchMemberships(ctx context.Context, bearer string) ([]session.Membership, error) {
	var mss []session.Membership
	err := c.do(ctx, http.MethodGet, "/auth/memberships", bearer, nil, nil, &mss)
	return mss, err
}
