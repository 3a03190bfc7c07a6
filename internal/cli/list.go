package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List activities",
	Long: `List pending activities, or finished ones with --done.

Examples:
  board list
  board list --done
  board list --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listDone bool
	listAll  bool
)

func init() {
	listCmd.Flags().BoolVar(&listDone, "done", false, "Show finished activities instead")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Show pending and finished activities")
	listCmd.MarkFlagsMutuallyExclusive("done", "all")
}

func runList(cmd *cobra.Command, args []string) error {
	client := newClient()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !listDone {
		pending, err := client.ListUnfinished(ctx)
		if err != nil {
			return explain("list activities", 0, err)
		}
		printList(out, "Pending", pending)
	}

	if listDone || listAll {
		finished, err := client.ListFinished(ctx)
		if err != nil {
			return explain("list activities", 0, err)
		}
		printList(out, "Done", finished)
	}

	return nil
}
