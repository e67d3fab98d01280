package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/engine"
)

// optimizeCommand creates the "optimize" command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "optimize <layouts.json>",
		Short: "Re-run the position optimizer over existing layouts",
		Long:  `Optimize reads a layouts JSON file (as written by the layout command), redistributes vertical space within each crowded slot, and writes the adjusted layouts back out.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			layouts, err := readLayouts(args[0])
			if err != nil {
				return err
			}

			resp, err := c.runOp(cmd.Context(), cfg, engine.Request{
				Op:      engine.OpOptimizePositions,
				Layouts: layouts,
			})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(resp.Layouts, "", "  ")
			if err != nil {
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			printSuccess("Optimized %d layouts", len(resp.Layouts))
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "daygrid.toml", "config file path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
