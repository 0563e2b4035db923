package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/convroute/pkg/fgraph"
)

// rulesResult is the JSON output of the rules command.
type rulesResult struct {
	Strict           bool                          `json:"strictCategories"`
	CategoryChange   []fgraph.CategoryChangeRule   `json:"categoryChangeCosts"`
	CategoryAdaptive []fgraph.CategoryAdaptiveRule `json:"categoryAdaptiveCosts"`
}

// rulesCommand creates the rules command.
func (c *CLI) rulesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the effective category cost rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			rules, err := cfg.Rules()
			if err != nil {
				return err
			}
			result := rulesResult{
				Strict:           cfg.Graph.StrictCategories,
				CategoryChange:   rules.CategoryChangeRules(),
				CategoryAdaptive: rules.CategoryAdaptiveRules(),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printRules(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules as JSON")

	return cmd
}

// printRules prints the rule tables.
func printRules(w io.Writer, r rulesResult) {
	fmt.Fprintln(w, StyleTitle.Render("Category change costs"))
	if r.Strict {
		printDetail(w, "strict categories: applied to every edge")
	} else {
		printDetail(w, "applied to edges between formats with no shared category")
	}
	rows := make([][]string, 0, len(r.CategoryChange))
	for _, rule := range r.CategoryChange {
		handler := "any"
		if !rule.Handler.IsZero() {
			handler = rule.Handler.String()
		}
		rows = append(rows, []string{rule.From, rule.To, handler, fmt.Sprintf("%g", rule.Cost)})
	}
	fmt.Fprintln(w, ruleTable([]string{"From", "To", "Handler", "Cost"}, rows))
	printDetail(w, "default for unlisted pairs: %g", fgraph.DefaultCategoryChangeCost)

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Adaptive costs"))
	printDetail(w, "added when a route's category trace ends with the sequence")
	if len(r.CategoryAdaptive) == 0 {
		printInfo(w, "none")
		return
	}
	rows = rows[:0]
	for _, rule := range r.CategoryAdaptive {
		rows = append(rows, []string{strings.Join(rule.Sequence, " "+iconArrow+" "), fmt.Sprintf("%g", rule.Cost)})
	}
	fmt.Fprintln(w, ruleTable([]string{"Sequence", "Cost"}, rows))
}

// ruleTable renders rows under headers. The last column holds costs.
func ruleTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	last := len(headers) - 1

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == last:
				return cellStyle.Foreground(colorCyan)
			default:
				return cellStyle
			}
		}).
		Render()
}
