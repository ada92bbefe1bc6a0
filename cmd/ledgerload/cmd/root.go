package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ledgerload/ledgerload/internal/common/logging"
)

const configFlag = "config"

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerload",
		Short: "ledgerload drives synthetic load against a Fineract ledger.",
		Long: `
ledgerload drives synthetic load against a Fineract ledger: it creates the clients, products and
accounts a scenario needs, then runs simulated users for a fixed duration and writes a report.

Persistent config can be saved in a config file so it doesn't have to be specified every command.

Example structure:

fineract:
  url: https://localhost:8443/fineract-provider/api/v1
  username: mifos
  password: password
load:
  scenario: savings
  users: 50

The location of this file can be passed in using --config argument or picked from $HOME/.ledgerload.yaml.
Every key can also be set from the environment, e.g. LEDGERLOAD_LOAD_USERS=50.
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String(configFlag, "", "config file (default is $HOME/.ledgerload.yaml)")

	cmd.AddCommand(
		runCmd(),
		scenariosCmd(),
		listenCmd(),
		configCmd(),
		versionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := RootCmd().ExecuteContext(ctx); err != nil {
		logging.WithStacktrace(err).Error("ledgerload failed")
		stop()
		os.Exit(1)
	}
}
