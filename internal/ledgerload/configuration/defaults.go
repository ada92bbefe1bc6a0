package configuration

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

// Default returns a configuration aimed at a local ledger with the stock demo credentials.
func Default() TestConfig {
	return TestConfig{
		Fineract: FineractConfig{
			Url:                "https://localhost:8443/fineract-provider/api/v1",
			Username:           "mifos",
			Password:           "password",
			TenantId:           "default",
			ClientId:           "xyz",
			InsecureSkipVerify: true,
			Timeout:            30 * time.Second,
		},
		Load: LoadConfig{
			Scenario:         "savings",
			Users:            10,
			SpawnRate:        1,
			Duration:         time.Minute,
			WaitTime:         WaitTimeConfig{Min: time.Second, Max: time.Second},
			ProgressInterval: 30 * time.Second,
		},
		Workflow: WorkflowConfig{
			Polling:           workflow.DefaultPollPolicy(),
			ActivationPause:   time.Second,
			NumberOfAccounts:  10,
			TransactionAmount: decimal.NewFromInt(50),
		},
		Inputs: InputsConfig{
			SavingsAccountsFile: "savings_accounts.txt",
			ClientAccountsFile:  "client_accounts.txt",
		},
		ClientSearch: payload.ClientSearchCriteria{
			FirstName:    "FELICIA",
			LastName:     "ABEJIDE",
			DateOfBirth:  "2001-06-19",
			MobileNumber: "+2348028348502",
		},
		Metrics: MetricsConfig{ResultsDir: "results", MaxErrorsToCollect: 10},
		Logging: logging.Config{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key with v. Keys viper doesn't know about are not picked up from
// the environment, so this must run before unmarshalling.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]interface{}{
		"fineract.url":                 d.Fineract.Url,
		"fineract.setupUrl":            d.Fineract.SetupUrl,
		"fineract.username":            d.Fineract.Username,
		"fineract.password":            d.Fineract.Password,
		"fineract.tenantId":            d.Fineract.TenantId,
		"fineract.clientId":            d.Fineract.ClientId,
		"fineract.insecureSkipVerify":  d.Fineract.InsecureSkipVerify,
		"fineract.timeout":             d.Fineract.Timeout,
		"load.scenario":                d.Load.Scenario,
		"load.users":                   d.Load.Users,
		"load.spawnRate":               d.Load.SpawnRate,
		"load.duration":                d.Load.Duration,
		"load.waitTime.min":            d.Load.WaitTime.Min,
		"load.waitTime.max":            d.Load.WaitTime.Max,
		"load.maxRequestsPerSecond":    d.Load.MaxRequestsPerSecond,
		"load.tags":                    d.Load.Tags,
		"load.excludeTags":             d.Load.ExcludeTags,
		"load.progressInterval":        d.Load.ProgressInterval,
		"load.seed":                    d.Load.Seed,
		"workflow.polling.maxAttempts": d.Workflow.Polling.MaxAttempts,
		"workflow.polling.delay":       d.Workflow.Polling.Delay,
		"workflow.polling.maxDelay":    d.Workflow.Polling.MaxDelay,
		"workflow.activationPause":     d.Workflow.ActivationPause,
		"workflow.numberOfAccounts":    d.Workflow.NumberOfAccounts,
		"workflow.transactionAmount":   d.Workflow.TransactionAmount.String(),
		"inputs.savingsAccountsFile":   d.Inputs.SavingsAccountsFile,
		"inputs.clientAccountsFile":    d.Inputs.ClientAccountsFile,
		"clientSearch.firstName":       d.ClientSearch.FirstName,
		"clientSearch.lastName":        d.ClientSearch.LastName,
		"clientSearch.dateOfBirth":     d.ClientSearch.DateOfBirth,
		"clientSearch.mobileNumber":    d.ClientSearch.MobileNumber,
		"resultStream.enabled":         d.ResultStream.Enabled,
		"resultStream.url":             d.ResultStream.Url,
		"metrics.listenAddress":        d.Metrics.ListenAddress,
		"metrics.resultsDir":           d.Metrics.ResultsDir,
		"metrics.maxErrorsToCollect":   d.Metrics.MaxErrorsToCollect,
		"logging.level":                d.Logging.Level,
		"logging.format":               d.Logging.Format,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
