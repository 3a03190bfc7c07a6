package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [activity-id]",
	Short: "Mark an activity as done",
	Long: `Mark an activity as finished.

Examples:
  board done 12
  board done 12 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var undoCmd = &cobra.Command{
	Use:   "undo [activity-id]",
	Short: "Reopen a finished activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDone(cmd, args[0], false)
	},
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark activity as not done")
}

func runDone(cmd *cobra.Command, args []string) error {
	return setDone(cmd, args[0], !doneUndo)
}

func setDone(cmd *cobra.Command, arg string, done bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	client := newClient()
	if done {
		a, err := client.Finish(cmd.Context(), id)
		if err != nil {
			return explain("finish activity", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed #%d: \"%s\"\n", a.ID, a.Description)
		return nil
	}

	a, err := client.Revert(cmd.Context(), id)
	if err != nil {
		return explain("revert activity", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened #%d: \"%s\"\n", a.ID, a.Description)
	return nil
}
