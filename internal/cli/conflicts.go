package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/conflict"
	"github.com/daygrid/daygrid/pkg/engine"
	"github.com/daygrid/daygrid/pkg/render"
)

// conflictsCommand creates the "conflicts" command.
func (c *CLI) conflictsCommand() *cobra.Command {
	var (
		configPath string
		month      string
		format     string
		output     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts <feed>",
		Short: "Detect overlapping events in a feed",
		Long:  `Conflicts reads an event feed, finds every pair of overlapping events, classifies each event's severity by its overlap fan-out, and writes the reports as JSON, a Graphviz DOT graph, or a rendered SVG/PNG diagram.`,
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

			p := newProgress(c.Logger)
			resp, err := c.runOp(cmd.Context(), cfg, engine.Request{
				Op:     engine.OpDetectConflicts,
				Events: events,
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Checked %d events", len(events)))

			for _, rej := range resp.Rejected {
				printWarning("rejected %s: %s", rej.EventID, rej.Reason)
			}

			data, err := encodeReports(cmd, resp.Reports, format, detailed)
			if err != nil {
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}

			if len(resp.Reports) == 0 {
				printSuccess("No conflicts")
			} else {
				printSuccess("Found %d events in conflict", len(resp.Reports))
				printSeveritySummary(resp.Reports)
			}
			printBatchStats(len(events), len(resp.Rejected), len(resp.Reports))
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "daygrid.toml", "config file path")
	cmd.Flags().StringVar(&month, "month", "", "month to materialize, e.g. 2026-03 (default: current)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, dot, svg, or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include conflict counts in graph labels")

	return cmd
}

func encodeReports(cmd *cobra.Command, reports []conflict.Report, format string, detailed bool) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(reports, "", "  ")
	case "dot":
		return []byte(render.ToDOT(reports, render.Options{Detailed: detailed})), nil
	case "svg":
		return render.RenderSVG(cmd.Context(), render.ToDOT(reports, render.Options{Detailed: detailed}))
	case "png":
		return render.RenderPNG(cmd.Context(), render.ToDOT(reports, render.Options{Detailed: detailed}))
	default:
		return nil, fmt.Errorf("unknown format %q (want json, dot, svg, or png)", format)
	}
}

// printSeveritySummary prints one colored line per severity bucket.
func printSeveritySummary(reports []conflict.Report) {
	counts := map[conflict.Severity]int{}
	for _, r := range reports {
		counts[r.Severity]++
	}
	if n := counts[conflict.SeverityHigh]; n > 0 {
		printDetail("%s", styleSeverityHigh.Render(fmt.Sprintf("high: %d", n)))
	}
	if n := counts[conflict.SeverityMedium]; n > 0 {
		printDetail("%s", styleSeverityMedium.Render(fmt.Sprintf("medium: %d", n)))
	}
	if n := counts[conflict.SeverityLow]; n > 0 {
		printDetail("%s", styleSeverityLow.Render(fmt.Sprintf("low: %d", n)))
	}
}
