// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/similigh/fb2gh/internal/fogbugz"
)

var casesQuery string

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7300"))

// casesCmd represents the cases command
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the FogBugz cases a migration would see",
	RunE: func(cmd *cobra.Command, args []string) error {
		fb, err := newFogBugzClient(cmd.Context(), cfg, log())
		if err != nil {
			return err
		}
		query := casesQuery
		if query == "" {
			query = cfg.FogBugz.Query
		}
		cases, err := fb.Search(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to search FogBugz: %w", err)
		}
		printCases(cmd.OutOrStdout(), cases)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(casesCmd)
	casesCmd.Flags().StringVar(&casesQuery, "query", "", "FogBugz search query (overrides fogbugz.query)")
}

func printCases(w io.Writer, cases []fogbugz.Case) {
	t := newTable("ID", "OPEN", "MILESTONE", "CATEGORY", "EVENTS", "TITLE")
	for _, c := range cases {
		t.Row(
			strconv.Itoa(c.ID),
			strconv.FormatBool(c.Open),
			c.Milestone,
			c.Category,
			strconv.Itoa(len(c.Events)),
			c.Title,
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d cases\n", len(cases))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
}
