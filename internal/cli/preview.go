package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/conflict"
	"github.com/daygrid/daygrid/pkg/engine"
	"github.com/daygrid/daygrid/pkg/event"
)

// previewCommand creates the "preview" command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		configPath string
		month      string
	)

	cmd := &cobra.Command{
		Use:   "preview <feed>",
		Short: "Browse a feed day by day in the terminal",
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
				Op:     engine.OpDetectConflicts,
				Events: events,
			})
			if err != nil {
				return err
			}

			model := newPreviewModel(events, resp.Reports)
			if len(model.days) == 0 {
				printInfo("Feed has no events in %s", window.Start.Format("January 2006"))
				return nil
			}

			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "daygrid.toml", "config file path")
	cmd.Flags().StringVar(&month, "month", "", "month to materialize, e.g. 2026-03 (default: current)")

	return cmd
}

// previewModel is the bubbletea model for the day browser.
type previewModel struct {
	days     []string
	byDay    map[string][]event.Event
	severity map[string]conflict.Severity
	cursor   int
}

func newPreviewModel(events []event.Event, reports []conflict.Report) previewModel {
	m := previewModel{
		byDay:    make(map[string][]event.Event),
		severity: make(map[string]conflict.Severity),
	}
	for _, e := range events {
		key := e.DayKey()
		if _, ok := m.byDay[key]; !ok {
			m.days = append(m.days, key)
		}
		m.byDay[key] = append(m.byDay[key], e)
	}
	sort.Strings(m.days)
	for _, r := range reports {
		m.severity[r.EventID] = r.Severity
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < len(m.days)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	day := m.days[m.cursor]
	b.WriteString(StyleTitle.Render(day))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ change day  q quit"))
	b.WriteString("\n\n")

	for _, e := range m.byDay[day] {
		span := e.Start.Format("15:04") + "–" + e.End.Format("15:04")
		if e.AllDay {
			span = "all day"
		}
		line := fmt.Sprintf("  %s  %s", StyleDim.Render(span), StyleValue.Render(title(e)))
		if sev, ok := m.severity[e.ID]; ok {
			line += "  " + severityBadge(sev)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.days))))
	b.WriteString("\n")
	return b.String()
}

func title(e event.Event) string {
	if e.Summary != "" {
		return e.Summary
	}
	return e.ID
}

func severityBadge(sev conflict.Severity) string {
	switch sev {
	case conflict.SeverityHigh:
		return styleSeverityHigh.Render("high")
	case conflict.SeverityMedium:
		return styleSeverityMedium.Render("medium")
	default:
		return styleSeverityLow.Render("low")
	}
}
