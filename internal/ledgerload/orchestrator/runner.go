package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/common/util"
	"github.com/ledgerload/ledgerload/internal/ledgerload/configuration"
	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/fineract"
	"github.com/ledgerload/ledgerload/internal/ledgerload/idgen"
	"github.com/ledgerload/ledgerload/internal/ledgerload/metrics"
	"github.com/ledgerload/ledgerload/internal/ledgerload/resultstream"
	"github.com/ledgerload/ledgerload/internal/ledgerload/scenario"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

// Runner orchestrates one load test: it connects to the ledger, builds the scenario, runs the
// simulated users and writes the result file.
type Runner struct {
	config configuration.TestConfig
	clock  util.Clock

	resultPath string
}

func NewRunner(config configuration.TestConfig) *Runner {
	return &Runner{
		config: config,
		clock:  &util.DefaultClock{},
	}
}

// ResultPath is where the last successful Run wrote its result.
func (r *Runner) ResultPath() string {
	return r.resultPath
}

// Run executes the load test.
//
// It performs the following steps:
//  1. Connects to the ledger and builds the scenario, reading any input files
//  2. Starts the metrics endpoint and result stream listener if configured
//  3. Runs the scenario setup once, then the simulated users for the configured duration
//  4. Writes the report and a configuration snapshot to a timestamped JSON file
//
// A setup failure or a cancelled ctx ends the run without a result file.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.config
	runID := util.NewULID()
	log := logging.WithField("run", runID)
	log.Infof("Starting load test %s against %s", cfg.Load.Scenario, cfg.Fineract.Url)

	conn, err := fineract.NewConnection(r.connectionDetails())
	if err != nil {
		return errors.WithMessage(err, "connecting to ledger")
	}
	defer util.CloseResource("ledger connection", conn)

	ids := idgen.Default()
	workflows := workflow.New(fineract.NewAPI(conn.Setup()), workflow.Options{
		Poll:            cfg.Workflow.Polling,
		ActivationPause: cfg.Workflow.ActivationPause,
		Generator:       ids,
	})
	def, err := scenario.Build(cfg.Load.Scenario, scenario.Dependencies{
		API:       fineract.NewAPI(conn),
		Workflows: workflows,
		Generator: ids,
		Params: scenario.Params{
			NumberOfAccounts:    cfg.Workflow.NumberOfAccounts,
			TransactionAmount:   cfg.Workflow.TransactionAmount,
			SavingsAccountsFile: cfg.Inputs.SavingsAccountsFile,
			ClientAccountsFile:  cfg.Inputs.ClientAccountsFile,
			ClientSearch:        cfg.ClientSearch,
			Poll:                cfg.Workflow.Polling,
		},
	})
	if err != nil {
		return err
	}

	// Each run registers its collectors afresh, so a Runner can be run more than once.
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	recorder.SetMaxErrors(cfg.Metrics.MaxErrorsToCollect)
	users, err := driver.NewRunner(driver.Config{
		Users:                cfg.Load.Users,
		SpawnRate:            cfg.Load.SpawnRate,
		Duration:             cfg.Load.Duration,
		WaitMin:              cfg.Load.WaitTime.Min,
		WaitMax:              cfg.Load.WaitTime.Max,
		MaxRequestsPerSecond: cfg.Load.MaxRequestsPerSecond,
		Tags:                 cfg.Load.Tags,
		ExcludeTags:          cfg.Load.ExcludeTags,
		Seed:                 cfg.Load.Seed,
	}, def, recorder)
	if err != nil {
		return err
	}

	auxCtx, stopAux := context.WithCancel(ctx)
	defer stopAux()
	aux, auxCtx := errgroup.WithContext(auxCtx)
	if cfg.Metrics.ListenAddress != "" {
		removeHook := logging.AddHook(logging.NewPrometheusHook(registry))
		defer removeHook()
		aux.Go(func() error { return metrics.Serve(auxCtx, cfg.Metrics.ListenAddress, registry) })
	}
	if cfg.ResultStream.Enabled {
		listener := r.resultStreamListener()
		aux.Go(func() error {
			if err := listener.Listen(auxCtx, nil, recorder); err != nil {
				logging.WithStacktrace(err).Warn("Result stream listener stopped")
			}
			return nil
		})
	}
	if cfg.Load.ProgressInterval > 0 {
		aux.Go(func() error {
			r.logProgress(auxCtx, users.Setup(), recorder)
			return nil
		})
	}

	start := r.clock.Now()
	runErr := users.Run(ctx)
	stopAux()
	if err := aux.Wait(); err != nil {
		logging.WithStacktrace(err).Error("Auxiliary service failed during the run")
	}
	if runErr != nil {
		return runErr
	}
	actualDuration := r.clock.Now().Sub(start)

	log.Info("Test complete, collecting metrics")
	report := recorder.GenerateReport()
	result := metrics.BuildTestResult(runID, cfg, report, actualDuration)
	path := filepath.Join(cfg.Metrics.ResultsDir, metrics.ResultFileName(r.clock.Now()))
	if err := metrics.WriteTestResultToFile(result, path); err != nil {
		return err
	}
	r.resultPath = path
	log.WithFields(map[string]any{
		"executed": report.TotalExecuted,
		"failed":   report.TotalFailed,
	}).Infof("Test results written to %s", path)
	return nil
}

func (r *Runner) connectionDetails() *fineract.ApiConnectionDetails {
	f := r.config.Fineract
	return &fineract.ApiConnectionDetails{
		Url:                 f.Url,
		SetupUrl:            f.SetupUrl,
		BasicAuth:           fineract.LoginCredentials{Username: f.Username, Password: f.Password},
		TenantId:            f.TenantId,
		ClientId:            f.ClientId,
		InsecureSkipVerify:  f.InsecureSkipVerify,
		Timeout:             f.Timeout,
		MaxIdleConnsPerHost: r.config.Load.Users,
	}
}

func (r *Runner) resultStreamListener() *resultstream.Listener {
	f := r.config.Fineract
	return &resultstream.Listener{
		URL:                r.config.ResultStream.Url,
		TenantID:           f.TenantId,
		Username:           f.Username,
		Password:           f.Password,
		InsecureSkipVerify: f.InsecureSkipVerify,
	}
}

// logProgress reports the recorder's figures every progress interval once setup has finished.
func (r *Runner) logProgress(ctx context.Context, setup *workflow.Setup, recorder *metrics.Recorder) {
	ticker := time.NewTicker(r.config.Load.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !setup.Done() {
				logging.Infof("Scenario %s is still running its setup", r.config.Load.Scenario)
				continue
			}
			report := recorder.GenerateReport()
			fields := map[string]any{
				"executed": report.TotalExecuted,
				"failed":   report.TotalFailed,
			}
			for _, task := range report.Tasks {
				fields[task.Task+"_p95"] = task.P95Latency
				fields[task.Task+"_rps"] = fmt.Sprintf("%.1f", task.RequestsPerSec)
			}
			logging.WithFields(fields).Info("Test progress update")
		}
	}
}
