package scraper

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealhawk/dealhawk/internal/auth"
)

const (
	loginPath     = "/login"
	dashboardPath = "/"
	commitPath    = "/commitments"
)

// Client scrapes the buying-group site through an authenticated browser
// session. The session cookie lives in the client's jar; login happens
// lazily on the first fetch and again whenever the site drops the session.
//
// Client is not safe for concurrent use. The monitor drives it from a
// single cycle goroutine.
type Client struct {
	baseURL    string
	creds      *auth.Credentials
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	maxRetries   int
	retryBackoff time.Duration

	loggedIn  bool
	csrfToken string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a scraping client for the site at baseURL.
func NewClient(baseURL string, creds *auth.Credentials, opts ...ClientOption) *Client {
	// cookiejar.New cannot fail with nil options.
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL:   baseURL,
		creds:     creds,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger:       slog.Default(),
		limiter:      rate.NewLimiter(rate.Limit(1), 1),
		maxRetries:   3,
		retryBackoff: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration for page fetches.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithUserAgent sets the User-Agent presented to the site.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative
// disables the limiter.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. The client should carry a
// cookie jar or the session will not survive the login redirect.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
