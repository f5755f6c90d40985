package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dealhawk/dealhawk/internal/model"
)

// FetchListings scrapes the current deal snapshot from the dashboard,
// logging in first if the session is missing or expired.
func (c *Client) FetchListings(ctx context.Context) ([]model.Listing, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	pg, err := c.getWithRetry(ctx, dashboardPath)
	if err != nil {
		return nil, fmt.Errorf("fetch dashboard: %w", err)
	}

	// A dropped session answers the dashboard request with the login page.
	// One re-login covers it; failing again means credentials, not session.
	if onLoginPage(pg.finalURL) {
		c.logger.Warn("session expired, logging in again")
		if err := c.Login(ctx); err != nil {
			return nil, err
		}

		pg, err = c.getWithRetry(ctx, dashboardPath)
		if err != nil {
			return nil, fmt.Errorf("fetch dashboard: %w", err)
		}
		if onLoginPage(pg.finalURL) {
			return nil, fmt.Errorf("%w: dashboard still redirects to login", ErrLoginFailed)
		}
	}

	c.rememberToken(pg.body)

	listings, err := ParseListings(bytes.NewReader(pg.body))
	if err != nil {
		return nil, fmt.Errorf("parse dashboard: %w", err)
	}

	c.logger.Debug("dashboard scraped", "listings", len(listings))
	return listings, nil
}
