package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/ledgerload/configuration"
)

const SchemaVersion = "1.0.0"

type TestResult struct {
	Metadata      Metadata              `json:"metadata"`
	Configuration ConfigurationSnapshot `json:"configuration"`
	Results       Report                `json:"results"`
}

type Metadata struct {
	RunID        string `json:"runId"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version"`
	TestDuration string `json:"testDuration,omitempty"`
}

type ConfigurationSnapshot struct {
	Scenario             string   `json:"scenario"`
	Url                  string   `json:"url"`
	SetupUrl             string   `json:"setupUrl,omitempty"`
	TenantId             string   `json:"tenantId"`
	Username             string   `json:"username"`
	Users                int      `json:"users"`
	SpawnRate            float64  `json:"spawnRate"`
	Duration             string   `json:"duration"`
	WaitTimeMin          string   `json:"waitTimeMin"`
	WaitTimeMax          string   `json:"waitTimeMax"`
	MaxRequestsPerSecond float64  `json:"maxRequestsPerSecond,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	ExcludeTags          []string `json:"excludeTags,omitempty"`
	NumberOfAccounts     int      `json:"numberOfAccounts"`
	TransactionAmount    string   `json:"transactionAmount"`
}

// ConvertConfigurationToSnapshot keeps what is needed to compare runs. Credentials other than the
// username are left out.
func ConvertConfigurationToSnapshot(c configuration.TestConfig) ConfigurationSnapshot {
	return ConfigurationSnapshot{
		Scenario:             c.Load.Scenario,
		Url:                  c.Fineract.Url,
		SetupUrl:             c.Fineract.SetupUrl,
		TenantId:             c.Fineract.TenantId,
		Username:             c.Fineract.Username,
		Users:                c.Load.Users,
		SpawnRate:            c.Load.SpawnRate,
		Duration:             c.Load.Duration.String(),
		WaitTimeMin:          c.Load.WaitTime.Min.String(),
		WaitTimeMax:          c.Load.WaitTime.Max.String(),
		MaxRequestsPerSecond: c.Load.MaxRequestsPerSecond,
		Tags:                 c.Load.Tags,
		ExcludeTags:          c.Load.ExcludeTags,
		NumberOfAccounts:     c.Workflow.NumberOfAccounts,
		TransactionAmount:    c.Workflow.TransactionAmount.String(),
	}
}

func BuildTestResult(runID string, c configuration.TestConfig, report Report, actualDuration time.Duration) TestResult {
	return TestResult{
		Metadata: Metadata{
			RunID:        runID,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Version:      SchemaVersion,
			TestDuration: actualDuration.String(),
		},
		Configuration: ConvertConfigurationToSnapshot(c),
		Results:       report,
	}
}

// ResultFileName names the result file of a run finished at t.
func ResultFileName(t time.Time) string {
	return fmt.Sprintf("ledgerload-result-%s.json", t.Format("20060102-150405"))
}

// WriteTestResultToFile writes result as indented JSON, creating the parent directory if needed.
func WriteTestResultToFile(result TestResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating results directory")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling test result")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing test result to %s", path)
	}
	return nil
}
