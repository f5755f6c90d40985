package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/feed"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	JSON bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live monitor events to the console",
		Long: `Connect to the event feed of a running dealhawk instance and print
each event as it happens. Press Ctrl-C to stop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchEvents(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print full frame JSON")

	return cmd
}

func watchEvents(cmd *cobra.Command, opts *WatchOptions) error {
	setupLogging(opts.Verbose)

	cfg, err := config.LoadAndValidate(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	u := url.URL{
		Scheme: "ws",
		Host:   fmt.Sprintf("localhost:%d", cfg.Health.Port),
		Path:   "/ws/events",
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return WrapExitError(ExitFailure, "feed not reachable (is the monitor running?)", err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", u.String())

	// Ctrl-C closes the connection so the read loop unblocks.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	interrupted := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			close(interrupted)
			deadline := time.Now().Add(time.Second)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-interrupted:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return WrapExitError(ExitFailure, "feed connection lost", err)
		}

		if opts.JSON {
			fmt.Fprintln(out, string(data))
			continue
		}

		var frame feed.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			fmt.Fprintln(out, string(data))
			continue
		}
		fmt.Fprintln(out, formatFrame(frame))
	}
}

// formatFrame renders one feed frame as a console line.
func formatFrame(f feed.Frame) string {
	at := time.UnixMicro(f.At).Format("15:04:05")

	switch f.Type {
	case feed.FrameStartup:
		return fmt.Sprintf("%s monitor started", at)
	case feed.FrameNewListing:
		if f.Listing != nil {
			return fmt.Sprintf("%s new deal: %s from %s at %s (%d available)",
				at, f.Listing.Title, f.Listing.Store, f.Listing.PriceString(), f.Listing.QuantityAvailable)
		}
	case feed.FrameQuantityChanged:
		if f.Listing != nil {
			return fmt.Sprintf("%s quantity: %s %d -> %d",
				at, f.Listing.Title, f.OldQuantity, f.NewQuantity)
		}
	case feed.FrameCommitmentChanged:
		if f.Listing != nil {
			return fmt.Sprintf("%s committed: %s %d -> %d",
				at, f.Listing.Title, f.OldQuantity, f.NewQuantity)
		}
	case feed.FrameMonitorError:
		return fmt.Sprintf("%s error: %s", at, f.Message)
	case feed.FrameSummary:
		return fmt.Sprintf("%s summary: %d listings", at, len(f.Listings))
	}
	return fmt.Sprintf("%s %s", at, f.Type)
}
