// Package driver runs a scenario: it performs the scenario's one-time setup, spawns simulated
// users at a fixed rate and keeps each of them executing tasks until the run ends.
package driver

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

type Config struct {
	Users     int
	SpawnRate float64
	Duration  time.Duration
	WaitMin   time.Duration
	WaitMax   time.Duration
	// MaxRequestsPerSecond caps task starts across all users. 0 disables the cap.
	MaxRequestsPerSecond float64
	Tags                 []string
	ExcludeTags          []string
	// Seed for per-user random sources. 0 seeds from the clock.
	Seed int64
}

// Recorder receives every task outcome.
type Recorder interface {
	Record(task string, latency time.Duration, err error)
	UserStarted()
	UserStopped()
	// Reset is called once, after setup succeeded and before the first user spawns, so that
	// statistics cover the load phase only.
	Reset()
}

type Runner struct {
	config  Config
	def     Definition
	tasks   []Task
	rec     Recorder
	setup   *workflow.Setup
	limiter *rate.Limiter
}

func NewRunner(config Config, def Definition, rec Recorder) (*Runner, error) {
	if config.Users < 1 {
		return nil, errors.Errorf("users must be at least 1, got %d", config.Users)
	}
	if config.SpawnRate <= 0 {
		return nil, errors.Errorf("spawn rate must be positive, got %v", config.SpawnRate)
	}
	if config.WaitMin > config.WaitMax {
		return nil, errors.Errorf("wait time min %v exceeds max %v", config.WaitMin, config.WaitMax)
	}
	tasks := FilterTasks(def.Tasks, config.Tags, config.ExcludeTags)
	if len(tasks) == 0 {
		return nil, errors.Errorf("scenario %s has no tasks left after filtering by tags %v excluding %v",
			def.Name, config.Tags, config.ExcludeTags)
	}
	if _, err := newSelector(def.Sequential, tasks); err != nil {
		return nil, err
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	r := &Runner{
		config: config,
		def:    def,
		tasks:  tasks,
		rec:    rec,
		setup:  workflow.NewSetup(),
	}
	if config.MaxRequestsPerSecond > 0 {
		burst := int(config.MaxRequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(config.MaxRequestsPerSecond), burst)
	}
	return r, nil
}

// Setup is the barrier guarding the scenario's one-time setup.
func (r *Runner) Setup() *workflow.Setup {
	return r.setup
}

// Run performs the one-time setup and, if it succeeds, runs users for the configured duration.
// A setup failure is returned and no user is started. Task failures are only recorded.
func (r *Runner) Run(ctx context.Context) error {
	init := r.def.Init
	if init == nil {
		init = func(context.Context) (*workflow.SetupResult, error) { return workflow.NewSetupResult(0, 0), nil }
	}
	logging.Infof("Running setup for scenario %s", r.def.Name)
	result, err := r.setup.Do(ctx, init)
	if err != nil {
		return errors.WithMessagef(err, "setup of scenario %s failed", r.def.Name)
	}
	r.rec.Reset()

	runCtx, cancel := context.WithTimeout(ctx, r.config.Duration)
	defer cancel()

	logging.Infof("Spawning %d users at %.2f users/s for %v", r.config.Users, r.config.SpawnRate, r.config.Duration)
	g, gctx := errgroup.WithContext(runCtx)
	interval := time.Duration(float64(time.Second) / r.config.SpawnRate)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
spawn:
	for i := 0; i < r.config.Users; i++ {
		if i > 0 {
			select {
			case <-ticker.C:
			case <-gctx.Done():
				break spawn
			}
		}
		id := i
		g.Go(func() error {
			r.runUser(gctx, id, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Infof("Scenario %s finished", r.def.Name)
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (r *Runner) runUser(ctx context.Context, id int, result *workflow.SetupResult) {
	r.rec.UserStarted()
	defer r.rec.UserStopped()

	u := &User{
		ID:    id,
		Rand:  rand.New(rand.NewSource(r.config.Seed + int64(id))),
		Setup: result,
	}
	log := logging.WithField("user", id)

	if r.def.OnStart != nil {
		start := time.Now()
		err := safeRun(ctx, OnStartTask, func(ctx context.Context) error { return r.def.OnStart(ctx, u) })
		if ctx.Err() != nil {
			return
		}
		r.rec.Record(OnStartTask, time.Since(start), err)
		if err != nil {
			logging.EntryWithStacktrace(log, err).Warn("User start failed; user will not run tasks")
			return
		}
	}

	// Validated in NewRunner.
	sel, _ := newSelector(r.def.Sequential, r.tasks)

	for ctx.Err() == nil {
		task := sel.next(u.Rand)
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
		}
		start := time.Now()
		err := safeRun(ctx, task.Name, func(ctx context.Context) error { return task.Run(ctx, u) })
		if ctx.Err() != nil {
			// Interrupted by the end of the run, not a failure of the ledger.
			return
		}
		r.rec.Record(task.Name, time.Since(start), err)
		if err != nil {
			log.WithError(err).Debugf("Task %s failed", task.Name)
		}
		if err := sleep(ctx, r.waitTime(u.Rand)); err != nil {
			return
		}
	}
}

func (r *Runner) waitTime(rnd *rand.Rand) time.Duration {
	spread := r.config.WaitMax - r.config.WaitMin
	if spread <= 0 {
		return r.config.WaitMin
	}
	return r.config.WaitMin + time.Duration(rnd.Int63n(int64(spread)+1))
}

// safeRun turns a panic in fn into an error.
func safeRun(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("task %s panicked: %v", name, p)
		}
	}()
	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
