package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/orchestrator"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a load test scenario",
		Long: `Run a load test scenario against the configured ledger.

The scenario's setup runs once before any simulated user starts; if it fails the run stops and
nothing is written. Task failures are counted in the report and never stop the run. The report is
written to the results directory as ledgerload-result-<yyyymmdd-hhmmss>.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := logging.Configure(c.Logging); err != nil {
				return err
			}
			return orchestrator.NewRunner(c).Run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	addConnectionFlags(flags)
	flags.String("setup-url", "", "Send setup calls to this base URL instead of --url")
	flags.StringP("scenario", "s", "", "Scenario to run, see 'ledgerload scenarios'")
	flags.IntP("users", "u", 0, "Number of simulated users")
	flags.Float64("spawn-rate", 0, "Users started per second")
	flags.DurationP("duration", "d", 0, "How long users run for, e.g. 5m")
	flags.Float64("max-requests-per-second", 0, "Cap on task executions per second across all users")
	flags.StringSlice("tags", nil, "Only run tasks carrying one of these tags")
	flags.StringSlice("exclude-tags", nil, "Skip tasks carrying any of these tags")
	flags.Int64("seed", 0, "Seed for task selection and wait times")
	flags.Int("number-of-accounts", 0, "Accounts created by the savings-n-accounts scenario")
	flags.String("results-dir", "", "Directory the result file is written to")
	flags.String("metrics-address", "", "Serve Prometheus metrics on this address, e.g. :9000")
	flags.Int("max-errors", 0, "Recent error messages kept per task in the report")
	return cmd
}
