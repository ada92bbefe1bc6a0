package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ledgerload/ledgerload/internal/common/config"
	"github.com/ledgerload/ledgerload/internal/ledgerload/configuration"
)

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"url":                     "fineract.url",
	"setup-url":               "fineract.setupUrl",
	"username":                "fineract.username",
	"password":                "fineract.password",
	"tenant":                  "fineract.tenantId",
	"insecure":                "fineract.insecureSkipVerify",
	"scenario":                "load.scenario",
	"users":                   "load.users",
	"spawn-rate":              "load.spawnRate",
	"duration":                "load.duration",
	"max-requests-per-second": "load.maxRequestsPerSecond",
	"tags":                    "load.tags",
	"exclude-tags":            "load.excludeTags",
	"seed":                    "load.seed",
	"number-of-accounts":      "workflow.numberOfAccounts",
	"results-dir":             "metrics.resultsDir",
	"metrics-address":         "metrics.listenAddress",
	"max-errors":              "metrics.maxErrorsToCollect",
	"result-stream-url":       "resultStream.url",
	"log-level":               "logging.level",
}

func addConnectionFlags(flags *pflag.FlagSet) {
	flags.String("url", "", "Ledger API base URL including /fineract-provider/api/v1")
	flags.String("username", "", "Ledger username")
	flags.String("password", "", "Ledger password")
	flags.String("tenant", "", "Ledger tenant id")
	flags.Bool("insecure", false, "Skip TLS certificate verification")
	flags.String("log-level", "", "Log level, e.g. debug, info")
}

// loadConfig layers defaults, config file, environment and the flags the user set, in increasing
// precedence, then validates the result. Validation failures are logged field by field.
func loadConfig(cmd *cobra.Command) (configuration.TestConfig, error) {
	v := viper.New()
	configuration.SetDefaults(v)

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return configuration.TestConfig{}, errors.WithStack(bindErr)
	}

	cfgFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return configuration.TestConfig{}, errors.WithStack(err)
	}
	if err := config.LoadConfigFile(v, cfgFile); err != nil {
		return configuration.TestConfig{}, err
	}

	var c configuration.TestConfig
	if err := config.Unmarshal(v, &c); err != nil {
		return configuration.TestConfig{}, err
	}
	if err := c.Validate(); err != nil {
		config.LogValidationErrors(err)
		return configuration.TestConfig{}, errors.WithMessage(err, "invalid configuration")
	}
	return c, nil
}
