package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealhawk/dealhawk/internal/auth"
	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/notify"
	"github.com/dealhawk/dealhawk/internal/scraper"
	"github.com/dealhawk/dealhawk/internal/store"
)

// DealsOptions holds flags for the deals command.
type DealsOptions struct {
	*RootOptions
	Live   bool
	Notify bool
}

// NewDealsCommand creates the deals command.
func NewDealsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DealsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deals",
		Short: "List tracked deals",
		Long: `List deals from the deal store, or scrape the site now with --live.

With --live --notify, the scraped listings are also posted to the
configured Discord webhook as a summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Notify && !opts.Live {
				return NewExitError(ExitCommandError, "--notify requires --live")
			}
			if opts.Live {
				return liveDeals(cmd, opts)
			}
			return storedDeals(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Live, "live", false, "scrape the site now instead of reading the store")
	cmd.Flags().BoolVar(&opts.Notify, "notify", false, "post a summary notification (with --live)")

	return cmd
}

func storedDeals(cmd *cobra.Command, opts *DealsOptions) error {
	setupLogging(opts.Verbose)

	cfg, err := config.LoadAndValidate(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	ctx := cmd.Context()
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open deal store", err)
	}
	defer st.Close()

	records, err := st.All(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list deals", err)
	}
	stats, err := st.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read deal stats", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No deals tracked yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LISTING\tQTY\tCOMMITTED\tFIRST SEEN\tLAST SEEN")
	for _, r := range records {
		committed := "-"
		if r.Committed {
			committed = "yes"
			if r.CommittedQuantity != nil {
				committed = fmt.Sprintf("yes (%d)", *r.CommittedQuantity)
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			r.ListingID, r.LastQuantity, committed,
			formatMicros(r.FirstSeenAt), formatMicros(r.LastSeenAt),
		)
	}
	tw.Flush()

	fmt.Fprintf(out, "\n%d deals tracked, %d committed (%d units), %d first seen this week\n",
		stats.TotalDeals, stats.CommittedDeals, stats.CommittedUnits, stats.SeenLastWeek)

	return nil
}

func liveDeals(cmd *cobra.Command, opts *DealsOptions) error {
	logger := setupLogging(opts.Verbose)

	cfg, err := config.LoadAndValidate(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	creds, err := auth.LoadCredentials(cfg.Site.Username, cfg.Site.Password)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid site credentials", err)
	}

	site := scraper.NewClient(cfg.Site.BaseURL, creds,
		scraper.WithTimeout(cfg.Site.Timeout),
		scraper.WithRetries(cfg.Site.MaxRetries, cfg.Site.RetryBackoff),
		scraper.WithUserAgent(cfg.Site.UserAgent),
		scraper.WithRateLimit(cfg.Site.RequestsPerSecond),
		scraper.WithLogger(logger),
	)

	ctx := cmd.Context()
	listings, err := site.FetchListings(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to fetch listings", err)
	}

	out := cmd.OutOrStdout()
	if len(listings) == 0 {
		fmt.Fprintln(out, "No deals on the dashboard right now.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STORE\tTITLE\tPRICE\tAVAILABLE\tCOMMITTED\tDELIVER BY")
	for _, l := range listings {
		deliverBy := l.DeliverBy
		if deliverBy == "" {
			deliverBy = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			l.Store, l.Title, l.PriceString(), l.QuantityAvailable, l.CommittedQuantity, deliverBy,
		)
	}
	tw.Flush()
	fmt.Fprintf(out, "\n%d deals on the dashboard\n", len(listings))

	if opts.Notify {
		discord := notify.NewDiscord(cfg.Notify.WebhookURL,
			notify.WithUsername(cfg.Notify.Username),
			notify.WithTimeout(cfg.Notify.Timeout),
			notify.WithLogger(logger),
		)
		if err := discord.Summary(ctx, listings); err != nil {
			return WrapExitError(ExitFailure, "failed to post summary", err)
		}
		fmt.Fprintln(out, "Summary posted.")
	}

	return nil
}

func formatMicros(us int64) string {
	return time.UnixMicro(us).Format("2006-01-02 15:04")
}
