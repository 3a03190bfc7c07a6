package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [activity-id] [description]",
	Short: "Change the description of an activity",
	Long: `Replace the description of an activity.

Examples:
  board edit 12 "Buy groceries and bread"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	description := strings.TrimSpace(strings.Join(args[1:], " "))
	if description == "" {
		return errors.New("description must not be empty")
	}

	a, err := newClient().Edit(cmd.Context(), id, description)
	if err != nil {
		return explain("edit activity", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated #%d: \"%s\"\n", a.ID, a.Description)
	return nil
}
