package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/similigh/fb2gh/internal/fogbugz"
)

// milestonesCmd represents the milestones command
var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List FogBugz milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		fb, err := newFogBugzClient(cmd.Context(), cfg, log())
		if err != nil {
			return err
		}
		milestones, err := fb.ListMilestones(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list milestones: %w", err)
		}
		printMilestones(cmd.OutOrStdout(), milestones)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(milestonesCmd)
}

func printMilestones(w io.Writer, milestones []fogbugz.Milestone) {
	t := newTable("ID", "NAME", "PROJECT")
	for _, m := range milestones {
		t.Row(strconv.Itoa(m.ID), m.Name, m.ProjectName)
	}
	fmt.Fprintln(w, t.Render())
}
