package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [activity-id]",
	Short: "Show one activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newClient().GetByID(cmd.Context(), id)
	if err != nil {
		return explain("look up activity", id, err)
	}

	out := cmd.OutOrStdout()
	status := "pending"
	if a.IsDone {
		status = "done"
	}

	fmt.Fprintf(out, "#%d %s\n", a.ID, a.Description)
	fmt.Fprintf(out, "  Status:   %s\n", status)
	fmt.Fprintf(out, "  Created:  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if a.CompletedAt != nil {
		fmt.Fprintf(out, "  Finished: %s (took %s)\n",
			a.CompletedAt.Local().Format("2006-01-02 15:04:05"), a.TimeToComplete().Round(time.Second))
	}
	return nil
}
