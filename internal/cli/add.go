package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Add a new activity",
	Long: `Add a new pending activity.

Examples:
  board add "Buy groceries"
  board add Call the plumber`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return errors.New("description must not be empty")
	}

	a, err := newClient().Create(cmd.Context(), description, time.Now())
	if err != nil {
		return explain("create activity", 0, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added #%d: \"%s\"\n", a.ID, a.Description)
	return nil
}
