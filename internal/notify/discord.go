package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dealhawk/dealhawk/internal/model"
)

// Discord posts notifications to a Discord webhook. An empty webhook URL
// turns every send into a logged no-op, so an unconfigured webhook never
// fails a cycle.
type Discord struct {
	webhookURL string
	username   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Notifier = (*Discord)(nil)

// DiscordOption configures a Discord notifier.
type DiscordOption func(*Discord)

// NewDiscord creates a webhook notifier.
func NewDiscord(webhookURL string, opts ...DiscordOption) *Discord {
	d := &Discord{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithTimeout sets the webhook POST timeout.
func WithTimeout(d time.Duration) DiscordOption {
	return func(n *Discord) {
		n.httpClient.Timeout = d
	}
}

// WithUsername overrides the webhook's display name.
func WithUsername(name string) DiscordOption {
	return func(n *Discord) {
		n.username = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DiscordOption {
	return func(n *Discord) {
		n.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) DiscordOption {
	return func(n *Discord) {
		n.httpClient = hc
	}
}

func (d *Discord) Startup(ctx context.Context) error {
	return d.post(ctx, startupEmbed())
}

func (d *Discord) NewListings(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return d.post(ctx, newListingsEmbed(listings, time.Now()))
}

func (d *Discord) QuantityChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	return d.post(ctx, quantityChangedEmbed(listing, oldQty, newQty))
}

func (d *Discord) CommitmentChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	return d.post(ctx, commitmentChangedEmbed(listing, oldQty, newQty))
}

func (d *Discord) MonitorError(ctx context.Context, message string) error {
	return d.post(ctx, errorEmbed(message))
}

func (d *Discord) Summary(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return d.post(ctx, summaryEmbed(listings))
}

// post sends one embed to the webhook.
func (d *Discord) post(ctx context.Context, e embed) error {
	if d.webhookURL == "" {
		d.logger.Debug("no webhook configured, dropping notification", "title", e.Title)
		return nil
	}

	body, err := json.Marshal(payload{Username: d.username, Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook rejected notification: status %d: %s", resp.StatusCode, snippet)
	}

	d.logger.Debug("notification sent", "title", e.Title)
	return nil
}
