package cli

import (
	"fmt"

	"github.com/existflow/activityboard/internal/apitest"
	"github.com/existflow/activityboard/internal/logger"
	"github.com/spf13/cobra"
)

var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Run an in-memory activity API for local development",
	Long: `Serve the activity API from memory, accepting the configured credentials.
Data is lost when the process stops.

Examples:
  board serve-fake
  board serve-fake --addr :5050 --seed "first activity"`,
	Args: cobra.NoArgs,
	RunE: runServeFake,
}

var (
	serveAddr string
	serveSeed []string
)

func init() {
	serveFakeCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Address to listen on")
	serveFakeCmd.Flags().StringArrayVar(&serveSeed, "seed", nil, "Pending activity to start with (repeatable)")
}

func runServeFake(cmd *cobra.Command, args []string) error {
	srv, err := apitest.New(cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	for _, desc := range serveSeed {
		srv.Seed(desc, false)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fake activity API listening on %s%s (user %q)\n",
		serveAddr, apitest.DefaultPrefix, cfg.Username)
	logger.Info("Fake API starting", logger.F("addr", serveAddr))

	return srv.ListenAndServe(serveAddr)
}
