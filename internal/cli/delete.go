package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [activity-id]",
	Aliases: []string{"rm"},
	Short:   "Delete an activity",
	Long: `Delete an activity by its ID.

Examples:
  board delete 12
  board rm 12 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := newClient()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// Get the activity to show its description
	a, err := client.GetByID(ctx, id)
	if err != nil {
		return explain("look up activity", id, err)
	}

	if cfg.ConfirmDelete && !deleteYes {
		fmt.Fprintf(out, "About to delete: \"%s\" (#%d)\n", a.Description, a.ID)
		fmt.Fprint(out, "Are you sure? [y/N]: ")

		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := client.Delete(ctx, id); err != nil {
		return explain("delete activity", id, err)
	}

	fmt.Fprintf(out, "🗑️  Deleted: \"%s\"\n", a.Description)
	return nil
}
