package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/engine"
	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/feed"
	"github.com/daygrid/daygrid/pkg/grid"
	"github.com/daygrid/daygrid/pkg/render"
)

// layoutCommand creates the "layout" command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		configPath string
		month      string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "layout <feed>",
		Short: "Compute event rectangles for a feed",
		Long:  `Layout reads an event feed (JSON, YAML, or ICS), stacks overlapping events into lanes on the month grid, runs the position optimizer, and writes the result as JSON or SVG.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			window, err := parseMonth(month)
			if err != nil {
				return err
			}

			events, err := loadFeed(cmd.Context(), args[0], window)
			if err != nil {
				return err
			}

			resp, err := c.runOp(cmd.Context(), cfg, engine.Request{
				Op:     engine.OpComputeLayout,
				Events: events,
			})
			if err != nil {
				return err
			}
			for _, rej := range resp.Rejected {
				printWarning("rejected %s: %s", rej.EventID, rej.Reason)
			}

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(resp.Layouts, "", "  ")
			case "svg":
				data = render.MonthSVG(resp.Layouts,
					render.WithGeometry(cfg.Geometry),
					render.WithTitle(window.Start.Format("January 2006")),
					render.WithGridLines(),
					render.WithLabels())
			default:
				return fmt.Errorf("unknown format %q (want json or svg)", format)
			}
			if err != nil {
				return err
			}

			if err := writeOutput(output, data); err != nil {
				return err
			}
			printSuccess("Laid out %d events", len(resp.Layouts))
			printBatchStats(len(events), len(resp.Rejected), 0)
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "daygrid.toml", "config file path")
	cmd.Flags().StringVar(&month, "month", "", "month to materialize, e.g. 2026-03 (default: current)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// runOp runs one request through a short-lived engine.
func (c *CLI) runOp(ctx context.Context, cfg Config, req engine.Request) (engine.Response, error) {
	pool := engine.NewPool(1, engine.Config{
		Geometry:   cfg.Geometry,
		Thresholds: cfg.Thresholds,
		Logger:     c.Logger,
	})
	pool.Start(ctx)
	defer pool.Stop()
	if err := pool.Ready(ctx); err != nil {
		return engine.Response{}, err
	}

	resp, err := pool.Do(ctx, req)
	if err != nil {
		return engine.Response{}, err
	}
	if resp.Err != nil {
		return engine.Response{}, resp.Err
	}
	return resp, nil
}

// loadFeed materializes a feed with a spinner and progress log. The
// logger comes from the command context set up by RootCommand.
func loadFeed(ctx context.Context, path string, window feed.Window) ([]event.Event, error) {
	sp := newSpinner(ctx, "Materializing "+path)
	sp.Start()
	events, err := feed.Load(path, window)
	sp.Stop()
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Infof("Materialized %d events from %s", len(events), path)
	return events, nil
}

// parseMonth resolves a "YYYY-MM" flag into a month window, defaulting
// to the current month.
func parseMonth(s string) (feed.Window, error) {
	if s == "" {
		return feed.MonthOf(time.Now()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return feed.Window{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return feed.MonthOf(t), nil
}

// writeOutput writes data to a file, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readLayouts decodes a layouts JSON file written by the layout command.
func readLayouts(path string) ([]grid.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var layouts []grid.Layout
	if err := json.Unmarshal(data, &layouts); err != nil {
		return nil, fmt.Errorf("parse layouts %s: %w", path, err)
	}
	return layouts, nil
}
