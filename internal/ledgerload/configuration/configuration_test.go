package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerload/ledgerload/internal/common/config"
)

func TestTestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*TestConfig)
		wantErr bool
		errText string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *TestConfig) {},
		},
		{
			name:    "zero users",
			modify:  func(c *TestConfig) { c.Load.Users = 0 },
			wantErr: true,
			errText: "Users",
		},
		{
			name:    "zero spawn rate",
			modify:  func(c *TestConfig) { c.Load.SpawnRate = 0 },
			wantErr: true,
			errText: "SpawnRate",
		},
		{
			name:    "missing url",
			modify:  func(c *TestConfig) { c.Fineract.Url = "" },
			wantErr: true,
			errText: "Url",
		},
		{
			name: "wait time min above max",
			modify: func(c *TestConfig) {
				c.Load.WaitTime = WaitTimeConfig{Min: 2 * time.Second, Max: time.Second}
			},
			wantErr: true,
			errText: "load.waitTime.min",
		},
		{
			name:    "zero transaction amount",
			modify:  func(c *TestConfig) { c.Workflow.TransactionAmount = decimal.Zero },
			wantErr: true,
			errText: "workflow.transactionAmount must be positive",
		},
		{
			name: "overlapping tags",
			modify: func(c *TestConfig) {
				c.Load.Tags = []string{"savings"}
				c.Load.ExcludeTags = []string{"savings", "client"}
			},
			wantErr: true,
			errText: "must not overlap",
		},
		{
			name:    "result stream without url",
			modify:  func(c *TestConfig) { c.ResultStream.Enabled = true },
			wantErr: true,
			errText: "Url",
		},
		{
			name:    "poll max delay below delay",
			modify:  func(c *TestConfig) { c.Workflow.Polling.MaxDelay = time.Millisecond },
			wantErr: true,
			errText: "MaxDelay",
		},
		{
			name:    "unknown log format",
			modify:  func(c *TestConfig) { c.Logging.Format = "xml" },
			wantErr: true,
			errText: "unknown log format",
		},
		{
			name:    "metrics listen address",
			modify:  func(c *TestConfig) { c.Metrics.ListenAddress = ":9000" },
			wantErr: false,
		},
		{
			name:    "negative max errors",
			modify:  func(c *TestConfig) { c.Metrics.MaxErrorsToCollect = -1 },
			wantErr: true,
			errText: "MaxErrorsToCollect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTestConfig_Validate_CollectsAllErrors(t *testing.T) {
	c := Default()
	c.Load.Users = 0
	c.Workflow.TransactionAmount = decimal.NewFromInt(-1)

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Users")
	assert.Contains(t, err.Error(), "transactionAmount")

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestSetDefaults_EnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
load:
  scenario: rest-apis
  waitTime:
    min: 100ms
    max: 300ms
  tags: savings,search
workflow:
  transactionAmount: "12.75"
`), 0o600))
	t.Setenv("LEDGERLOAD_LOAD_USERS", "25")
	t.Setenv("LEDGERLOAD_FINERACT_TENANTID", "tenant-b")

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, config.LoadConfigFile(v, path))
	var c TestConfig
	require.NoError(t, config.Unmarshal(v, &c))

	assert.Equal(t, "rest-apis", c.Load.Scenario)
	assert.Equal(t, 25, c.Load.Users)
	assert.Equal(t, "tenant-b", c.Fineract.TenantId)
	assert.Equal(t, 100*time.Millisecond, c.Load.WaitTime.Min)
	assert.Equal(t, []string{"savings", "search"}, c.Load.Tags)
	assert.True(t, decimal.RequireFromString("12.75").Equal(c.Workflow.TransactionAmount))
	assert.Equal(t, uint(10), c.Workflow.Polling.MaxAttempts)
	assert.Equal(t, "mifos", c.Fineract.Username)
	assert.Equal(t, 10, c.Metrics.MaxErrorsToCollect)
	require.NoError(t, c.Validate())
}
