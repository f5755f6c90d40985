package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dealhawk/dealhawk/internal/auth"
)

// ErrLoginFailed is returned when the site rejects the configured
// credentials or keeps redirecting back to the login page.
var ErrLoginFailed = errors.New("scraper: login failed")

// Login authenticates the session: fetch the login page, extract the CSRF
// token, and POST the credentials. Success means the site redirected away
// from the login page.
func (c *Client) Login(ctx context.Context) error {
	c.loggedIn = false

	pg, err := c.do(ctx, http.MethodGet, loginPath, nil, "")
	if err != nil {
		return fmt.Errorf("fetch login page: %w", err)
	}

	token, err := auth.ExtractCSRFToken(bytes.NewReader(pg.body))
	if err != nil {
		return err
	}

	form := c.creds.LoginForm(token)
	pg, err = c.do(ctx, http.MethodPost, loginPath, form, c.baseURL+loginPath)
	if err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	if onLoginPage(pg.finalURL) {
		reason := auth.AlertText(bytes.NewReader(pg.body))
		if reason == "" {
			reason = "still on login page"
		}
		return fmt.Errorf("%w: %s", ErrLoginFailed, reason)
	}

	c.loggedIn = true
	c.rememberToken(pg.body)
	c.logger.Info("logged in", "user", c.creds.Username)
	return nil
}

// ensureSession logs in if the client has not authenticated yet.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// rememberToken caches the page's CSRF token for later form POSTs. The
// token is stable for the life of the session, so any page that carries
// one refreshes the cache.
func (c *Client) rememberToken(body []byte) {
	if token, err := auth.ExtractCSRFToken(bytes.NewReader(body)); err == nil {
		c.csrfToken = token
	}
}

// onLoginPage reports whether the final URL of a request landed back on
// the login page, which is how the site signals a missing session.
func onLoginPage(u *url.URL) bool {
	return u == nil || strings.Contains(strings.ToLower(u.Path), "login")
}
