package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/activityboard/internal/api"
	"github.com/existflow/activityboard/internal/model"
)

// newClient builds an API client from the loaded config
func newClient() *api.Client {
	return api.NewClient(api.Config{
		BaseURL:  cfg.BackendURL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.RequestTimeout,
	})
}

// parseID parses a positional activity id
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid activity id: %q", arg)
	}
	return id, nil
}

// explain adds a hint for the failures a user can fix
func explain(action string, id int64, err error) error {
	switch {
	case api.IsNotFound(err):
		return fmt.Errorf("activity #%d not found", id)
	case api.IsUnauthorized(err):
		return fmt.Errorf("failed to %s: credentials rejected, run 'board config login': %w", action, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func printList(w io.Writer, title string, activities []model.Activity) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(activities))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(activities) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, a := range activities {
		printActivity(w, a)
	}
	fmt.Fprintln(w)
}

func printActivity(w io.Writer, a model.Activity) {
	icon := "[ ]"
	if a.IsDone {
		icon = "[x]"
	}

	// Truncate content if too long
	desc := a.Description
	if r := []rune(desc); len(r) > 40 {
		desc = string(r[:37]) + "..."
	}

	when := a.CreatedAt.Local().Format("Jan 2 15:04")
	if d := a.TimeToComplete(); d > 0 {
		when = "took " + d.Round(time.Minute).String()
	}

	fmt.Fprintf(w, "  %s  %-6s  %-40s  %s\n", icon, fmt.Sprintf("#%d", a.ID), desc, when)
}
