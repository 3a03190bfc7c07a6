package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/activityboard/internal/api"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the board configuration",
	Long: `Show or change ~/.activityboard/config.yaml.

Examples:
  board config show
  board config set-url http://localhost:5000/api/todo
  board config login`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url [url]",
	Short: "Set the activity API base URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetURL,
}

var configLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the credentials used for the activity API",
	Args:  cobra.NoArgs,
	RunE:  runConfigLogin,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configLoginCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.Password != "" {
		shown.Password = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSetURL(cmd *cobra.Command, args []string) error {
	u, err := url.Parse(args[0])
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url: %q", args[0])
	}

	cfg.BackendURL = strings.TrimRight(args[0], "/")
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Backend set to %s\n", cfg.BackendURL)
	return nil
}

func runConfigLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintf(out, "Username [%s]: ", cfg.Username)
	username, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = cfg.Username
	}

	fmt.Fprint(out, "Password: ")
	password, err := readPassword(cmd, reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)

	// Check the credentials before keeping them
	client := api.NewClient(api.Config{
		BaseURL:  cfg.BackendURL,
		Username: username,
		Password: password,
		Timeout:  cfg.RequestTimeout,
	})
	if _, err := client.ListUnfinished(cmd.Context()); err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("credentials rejected by the server")
		}
		return fmt.Errorf("failed to reach %s: %w", cfg.BackendURL, err)
	}

	cfg.Username = username
	cfg.Password = password
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintln(out, "✅ Logged in successfully!")
	return nil
}

// readPassword hides input on a terminal and falls back to a plain line
// when stdin is piped
func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(syscall.Stdin)) {
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		return string(passwordBytes), err
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
