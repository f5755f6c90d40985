package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dealhawk/dealhawk/internal/auth"
	"github.com/dealhawk/dealhawk/internal/commit"
)

// SubmitCommit posts a commitment for quantity units of a listing. A
// rejection, whether an HTTP error or a re-rendered page with an alert
// box, comes back as *commit.RemoteError carrying the site's message.
//
// SubmitCommit satisfies commit.CommitFunc.
func (c *Client) SubmitCommit(ctx context.Context, listingID string, quantity int) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	if c.csrfToken == "" {
		pg, err := c.getWithRetry(ctx, dashboardPath)
		if err != nil {
			return fmt.Errorf("fetch csrf token: %w", err)
		}
		c.rememberToken(pg.body)
		if c.csrfToken == "" {
			return auth.ErrNoCSRFToken
		}
	}

	form := url.Values{
		"_token":   {c.csrfToken},
		"deal_id":  {listingID},
		"quantity": {strconv.Itoa(quantity)},
	}

	pg, err := c.do(ctx, http.MethodPost, commitPath, form, c.baseURL+dashboardPath)
	if err != nil {
		var siteErr *SiteError
		if errors.As(err, &siteErr) {
			msg := auth.AlertText(bytes.NewReader(siteErr.Body))
			if msg == "" {
				msg = siteErr.Message
			}
			return &commit.RemoteError{StatusCode: siteErr.StatusCode, Message: msg}
		}
		return fmt.Errorf("submit commitment: %w", err)
	}

	// The site answers a rejected commitment by re-rendering the dashboard
	// with a flash alert rather than an error status.
	if msg := auth.AlertText(bytes.NewReader(pg.body)); msg != "" {
		return &commit.RemoteError{StatusCode: pg.status, Message: msg}
	}

	c.logger.Info("commitment submitted", "listing_id", listingID, "quantity", quantity)
	return nil
}
