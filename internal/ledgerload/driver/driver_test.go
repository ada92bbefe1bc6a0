package driver

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerload/ledgerload/internal/ledgerload/metrics"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

type outcome struct {
	task string
	err  error
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []outcome
	active   int
	peak     int
	resets   int
	resetAt  time.Time
}

func (f *fakeRecorder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.resetAt = time.Now()
	f.outcomes = nil
}

func (f *fakeRecorder) Record(task string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome{task: task, err: err})
}

func (f *fakeRecorder) UserStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
}

func (f *fakeRecorder) UserStopped() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
}

func (f *fakeRecorder) count(task string, failed bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.outcomes {
		if o.task == task && (o.err != nil) == failed {
			n++
		}
	}
	return n
}

func testConfig() Config {
	return Config{
		Users:     3,
		SpawnRate: 1000,
		Duration:  100 * time.Millisecond,
		WaitMin:   time.Millisecond,
		WaitMax:   2 * time.Millisecond,
		Seed:      42,
	}
}

func noop(context.Context, *User) error { return nil }

func TestFilterTasks(t *testing.T) {
	tasks := []Task{
		{Name: "deposit", Tags: []string{"savings", "deposit"}},
		{Name: "withdrawal", Tags: []string{"savings", "withdrawal"}},
		{Name: "client_search", Tags: []string{"client", "search"}},
		{Name: "untagged"},
	}
	names := func(ts []Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Name)
		}
		return out
	}

	assert.Equal(t, []string{"deposit", "withdrawal", "client_search", "untagged"}, names(FilterTasks(tasks, nil, nil)))
	assert.Equal(t, []string{"deposit", "withdrawal"}, names(FilterTasks(tasks, []string{"savings"}, nil)))
	assert.Equal(t, []string{"deposit"}, names(FilterTasks(tasks, []string{"savings"}, []string{"withdrawal"})))
	assert.Equal(t, []string{"client_search", "untagged"}, names(FilterTasks(tasks, nil, []string{"savings"})))
}

func TestWeightedSelector(t *testing.T) {
	sel, err := newWeightedSelector([]Task{{Name: "deposit", Weight: 3}, {Name: "withdrawal", Weight: 1}})
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(1))
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[sel.next(rnd).Name]++
	}
	assert.InDelta(t, 7500, counts["deposit"], 300)
	assert.InDelta(t, 2500, counts["withdrawal"], 300)

	_, err = newWeightedSelector([]Task{{Name: "bad", Weight: -1}})
	assert.Error(t, err)
}

func TestSequentialSelector(t *testing.T) {
	sel, err := newSequentialSelector([]Task{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)
	var got []string
	for i := 0; i < 5; i++ {
		got = append(got, sel.next(nil).Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b"}, got)
}

func TestSequentialSelector_RepeatsByWeight(t *testing.T) {
	sel, err := newSequentialSelector([]Task{
		{Name: "deposit", Weight: 3},
		{Name: "withdrawal", Weight: 1},
		{Name: "client_search"},
		{Name: "transaction_search", Weight: 1},
	})
	require.NoError(t, err)

	var firstPass []string
	for i := 0; i < 6; i++ {
		firstPass = append(firstPass, sel.next(nil).Name)
	}
	assert.Equal(t, []string{"deposit", "deposit", "deposit", "withdrawal", "client_search", "transaction_search"}, firstPass)

	counts := map[string]int{}
	for i := 0; i < 54; i++ {
		counts[sel.next(nil).Name]++
	}
	assert.Equal(t, map[string]int{"deposit": 27, "withdrawal": 9, "client_search": 9, "transaction_search": 9}, counts)

	_, err = newSequentialSelector([]Task{{Name: "bad", Weight: -2}})
	assert.Error(t, err)
}

func TestNewRunner_Invalid(t *testing.T) {
	def := Definition{Name: "s", Tasks: []Task{{Name: "deposit", Tags: []string{"savings"}, Run: noop}}}
	rec := &fakeRecorder{}

	cfg := testConfig()
	cfg.Users = 0
	_, err := NewRunner(cfg, def, rec)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Tags = []string{"client"}
	_, err = NewRunner(cfg, def, rec)
	assert.ErrorContains(t, err, "no tasks left")

	cfg = testConfig()
	cfg.WaitMin = time.Second
	_, err = NewRunner(cfg, def, rec)
	assert.Error(t, err)

	def.Sequential = true
	def.Tasks[0].Weight = -1
	_, err = NewRunner(testConfig(), def, rec)
	assert.ErrorContains(t, err, "negative weight")
}

func TestRun_InitOnceAndSharedWithUsers(t *testing.T) {
	var inits int32
	var seen sync.Map
	def := Definition{
		Name: "savings-n-accounts",
		Init: func(context.Context) (*workflow.SetupResult, error) {
			atomic.AddInt32(&inits, 1)
			return workflow.NewSetupResult(1, 2, 10, 20), nil
		},
		Tasks: []Task{{Name: "deposit", Run: func(_ context.Context, u *User) error {
			id, ok := u.Setup.RandomSavingsAccountID(u.Rand)
			assert.True(t, ok)
			seen.Store(id, true)
			return nil
		}}},
	}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&inits))
	assert.True(t, r.Setup().Done())
	assert.Equal(t, 1, rec.resets)
	assert.Positive(t, rec.count("deposit", false))
	seen.Range(func(k, _ interface{}) bool {
		assert.Contains(t, []int64{10, 20}, k)
		return true
	})
	assert.Equal(t, 3, rec.peak)
	assert.Zero(t, rec.active)
}

func TestRun_InitFailureStartsNoUsers(t *testing.T) {
	var started int32
	def := Definition{
		Name: "savings",
		Init: func(context.Context) (*workflow.SetupResult, error) { return nil, assert.AnError },
		OnStart: func(context.Context, *User) error {
			atomic.AddInt32(&started, 1)
			return nil
		},
		Tasks: []Task{{Name: "deposit", Run: noop}},
	}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), def, rec)
	require.NoError(t, err)

	err = r.Run(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, atomic.LoadInt32(&started))
	assert.Zero(t, rec.peak)
	assert.Zero(t, rec.resets)
}

func TestRun_SlowSetupIsExcludedFromRates(t *testing.T) {
	const setupTime = 500 * time.Millisecond
	def := Definition{
		Name: "savings-n-accounts",
		Init: func(context.Context) (*workflow.SetupResult, error) {
			time.Sleep(setupTime)
			return workflow.NewSetupResult(1, 2, 3), nil
		},
		Tasks: []Task{{Name: "deposit", Run: noop}},
	}
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	cfg := testConfig()
	cfg.Duration = 200 * time.Millisecond
	r, err := NewRunner(cfg, def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	report := rec.GenerateReport()

	assert.Less(t, report.Elapsed, setupTime)
	require.Len(t, report.Tasks, 1)
	deposit := report.Tasks[0]
	assert.InDelta(t, float64(deposit.TotalExecuted)/report.Elapsed.Seconds(), deposit.RequestsPerSec, 1e-6)
	assert.Greater(t, deposit.RequestsPerSec, float64(deposit.TotalExecuted)/(setupTime+cfg.Duration).Seconds())
}

func TestRun_ResetComesAfterSetupAndBeforeTasks(t *testing.T) {
	var setupDone time.Time
	def := Definition{
		Name: "savings",
		Init: func(context.Context) (*workflow.SetupResult, error) {
			time.Sleep(50 * time.Millisecond)
			setupDone = time.Now()
			return nil, nil
		},
		Tasks: []Task{{Name: "deposit", Run: noop}},
	}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, rec.resets)
	assert.False(t, rec.resetAt.Before(setupDone))
	assert.Positive(t, rec.count("deposit", false))
}

func TestRun_OnStartFailureStopsOnlyThatUser(t *testing.T) {
	def := Definition{
		Name: "savings",
		OnStart: func(_ context.Context, u *User) error {
			if u.ID == 0 {
				return assert.AnError
			}
			u.SavingsAccountID = int64(100 + u.ID)
			return nil
		},
		Tasks: []Task{{Name: "deposit", Run: func(_ context.Context, u *User) error {
			assert.NotZero(t, u.SavingsAccountID)
			return nil
		}}},
	}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, rec.count(OnStartTask, true))
	assert.Equal(t, 2, rec.count(OnStartTask, false))
	assert.Positive(t, rec.count("deposit", false))
}

func TestRun_TaskErrorsAndPanicsAreRecorded(t *testing.T) {
	def := Definition{
		Name: "client",
		Tasks: []Task{
			{Name: "fails", Run: func(context.Context, *User) error { return assert.AnError }},
			{Name: "panics", Run: func(context.Context, *User) error { panic("boom") }},
			{Name: "ok", Run: noop},
		},
		Sequential: true,
	}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	assert.Positive(t, rec.count("fails", true))
	assert.Positive(t, rec.count("panics", true))
	assert.Positive(t, rec.count("ok", false))
	assert.Zero(t, rec.count("ok", true))
}

func TestRun_StopsWhenParentCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = time.Hour
	def := Definition{Name: "client", Tasks: []Task{{Name: "ok", Run: noop}}}
	r, err := NewRunner(cfg, def, &fakeRecorder{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = r.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Users = 5
	cfg.WaitMin, cfg.WaitMax = 0, 0
	cfg.Duration = 500 * time.Millisecond
	cfg.MaxRequestsPerSecond = 20
	def := Definition{Name: "client", Tasks: []Task{{Name: "ok", Run: noop}}}
	rec := &fakeRecorder{}
	r, err := NewRunner(cfg, def, rec)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	// 20 burst plus 20/s for half a second, with some slack.
	assert.LessOrEqual(t, rec.count("ok", false), 35)
	assert.Positive(t, rec.count("ok", false))
}

func TestWaitTime(t *testing.T) {
	r := &Runner{config: Config{WaitMin: 10 * time.Millisecond, WaitMax: 20 * time.Millisecond}}
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		d := r.waitTime(rnd)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 20*time.Millisecond)
	}
	r.config.WaitMax = r.config.WaitMin
	assert.Equal(t, 10*time.Millisecond, r.waitTime(rnd))
}
