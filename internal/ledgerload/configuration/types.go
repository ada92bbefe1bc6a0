package configuration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

type TestConfig struct {
	Fineract     FineractConfig               `mapstructure:"fineract" yaml:"fineract"`
	Load         LoadConfig                   `mapstructure:"load" yaml:"load"`
	Workflow     WorkflowConfig               `mapstructure:"workflow" yaml:"workflow"`
	Inputs       InputsConfig                 `mapstructure:"inputs" yaml:"inputs"`
	ClientSearch payload.ClientSearchCriteria `mapstructure:"clientSearch" yaml:"clientSearch"`
	ResultStream ResultStreamConfig           `mapstructure:"resultStream" yaml:"resultStream"`
	Metrics      MetricsConfig                `mapstructure:"metrics" yaml:"metrics"`
	Logging      logging.Config               `mapstructure:"logging" yaml:"logging"`
}

type FineractConfig struct {
	// Url is the API base the timed workload is sent to, including the versioned path.
	Url string `mapstructure:"url" yaml:"url" validate:"required,url"`
	// SetupUrl, if set, receives the setup calls instead of Url.
	SetupUrl           string        `mapstructure:"setupUrl" yaml:"setupUrl" validate:"omitempty,url"`
	Username           string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password           string        `mapstructure:"password" yaml:"password"`
	TenantId           string        `mapstructure:"tenantId" yaml:"tenantId" validate:"required"`
	ClientId           string        `mapstructure:"clientId" yaml:"clientId"`
	InsecureSkipVerify bool          `mapstructure:"insecureSkipVerify" yaml:"insecureSkipVerify"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

type WaitTimeConfig struct {
	Min time.Duration `mapstructure:"min" yaml:"min" validate:"gte=0"`
	Max time.Duration `mapstructure:"max" yaml:"max" validate:"gte=0"`
}

type LoadConfig struct {
	Scenario string `mapstructure:"scenario" yaml:"scenario" validate:"required"`
	// Users is the number of simulated users, all running concurrently once spawned.
	Users int `mapstructure:"users" yaml:"users" validate:"min=1"`
	// SpawnRate is the number of users started per second.
	SpawnRate float64        `mapstructure:"spawnRate" yaml:"spawnRate" validate:"gt=0"`
	Duration  time.Duration  `mapstructure:"duration" yaml:"duration" validate:"gt=0"`
	WaitTime  WaitTimeConfig `mapstructure:"waitTime" yaml:"waitTime"`
	// MaxRequestsPerSecond caps task executions across all users. 0 disables the cap.
	MaxRequestsPerSecond float64       `mapstructure:"maxRequestsPerSecond" yaml:"maxRequestsPerSecond" validate:"gte=0"`
	Tags                 []string      `mapstructure:"tags" yaml:"tags"`
	ExcludeTags          []string      `mapstructure:"excludeTags" yaml:"excludeTags"`
	ProgressInterval     time.Duration `mapstructure:"progressInterval" yaml:"progressInterval" validate:"gt=0"`
	// Seed for task selection and wait times. 0 seeds from the clock.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

type WorkflowConfig struct {
	Polling           workflow.PollPolicy `mapstructure:"polling" yaml:"polling"`
	ActivationPause   time.Duration       `mapstructure:"activationPause" yaml:"activationPause" validate:"gte=0"`
	NumberOfAccounts  int                 `mapstructure:"numberOfAccounts" yaml:"numberOfAccounts" validate:"min=1"`
	TransactionAmount decimal.Decimal     `mapstructure:"transactionAmount" yaml:"transactionAmount"`
}

type InputsConfig struct {
	SavingsAccountsFile string `mapstructure:"savingsAccountsFile" yaml:"savingsAccountsFile"`
	ClientAccountsFile  string `mapstructure:"clientAccountsFile" yaml:"clientAccountsFile"`
}

type ResultStreamConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Url of the websocket endpoint publishing command results, e.g. wss://host/fineract-result.
	Url string `mapstructure:"url" yaml:"url" validate:"required_if=Enabled true,omitempty,url"`
}

type MetricsConfig struct {
	// ListenAddress serves /metrics when set, e.g. ":9000".
	ListenAddress string `mapstructure:"listenAddress" yaml:"listenAddress" validate:"omitempty,hostname_port"`
	ResultsDir    string `mapstructure:"resultsDir" yaml:"resultsDir" validate:"required"`
	// MaxErrorsToCollect is how many recent error messages the report keeps per task. 0 keeps none.
	MaxErrorsToCollect int `mapstructure:"maxErrorsToCollect" yaml:"maxErrorsToCollect" validate:"min=0"`
}
