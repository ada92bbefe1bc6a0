package driver

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/common/util"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

// OnStartTask is the task name per-user start outcomes are recorded under.
const OnStartTask = "on_start"

// User is the state of one simulated user. Only the goroutine running the user touches it.
type User struct {
	ID   int
	Rand *rand.Rand
	// Setup is the outcome of the scenario's one-time setup, shared by every user.
	Setup *workflow.SetupResult

	// Set by OnStart for scenarios where each user owns its entities.
	ClientID         int64
	ProductID        int64
	SavingsAccountID int64
}

type Task struct {
	Name string
	// Weight is the relative chance of picking the task from a weighted set. In a sequential set
	// the task instead runs Weight times in a row on each pass. 0 counts as 1.
	Weight int
	Tags   []string
	Run    func(ctx context.Context, u *User) error
}

// Definition is what a scenario hands to the runner.
type Definition struct {
	Name string
	// Init runs once before any user is spawned. Optional.
	Init func(ctx context.Context) (*workflow.SetupResult, error)
	// OnStart runs once per user before its first task. Optional.
	OnStart func(ctx context.Context, u *User) error
	Tasks   []Task
	// Sequential runs tasks in declaration order, wrapping around, instead of picking at random.
	Sequential bool
}

// FilterTasks keeps tasks carrying any of tags (all tasks when tags is empty) and none of
// excludeTags.
func FilterTasks(tasks []Task, tags, excludeTags []string) []Task {
	include := util.StringListToSet(tags)
	exclude := util.StringListToSet(excludeTags)
	var out []Task
	for _, t := range tasks {
		if len(include) > 0 && !util.ContainsAny(include, t.Tags) {
			continue
		}
		if util.ContainsAny(exclude, t.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type selector interface {
	next(rnd *rand.Rand) Task
}

type sequentialSelector struct {
	tasks []Task
	i     int
}

// newSequentialSelector lays tasks out in declaration order with each one repeated Weight times,
// so weights 3,1 run as a,a,a,b.
func newSequentialSelector(tasks []Task) (*sequentialSelector, error) {
	s := &sequentialSelector{}
	for _, t := range tasks {
		w, err := weight(t)
		if err != nil {
			return nil, err
		}
		for i := 0; i < w; i++ {
			s.tasks = append(s.tasks, t)
		}
	}
	return s, nil
}

func (s *sequentialSelector) next(*rand.Rand) Task {
	t := s.tasks[s.i%len(s.tasks)]
	s.i++
	return t
}

type weightedSelector struct {
	tasks      []Task
	cumulative []int
}

func newWeightedSelector(tasks []Task) (*weightedSelector, error) {
	s := &weightedSelector{tasks: tasks, cumulative: make([]int, len(tasks))}
	total := 0
	for i, t := range tasks {
		w, err := weight(t)
		if err != nil {
			return nil, err
		}
		total += w
		s.cumulative[i] = total
	}
	return s, nil
}

func (s *weightedSelector) next(rnd *rand.Rand) Task {
	n := rnd.Intn(s.cumulative[len(s.cumulative)-1])
	for i, c := range s.cumulative {
		if n < c {
			return s.tasks[i]
		}
	}
	return s.tasks[len(s.tasks)-1]
}

func weight(t Task) (int, error) {
	switch {
	case t.Weight < 0:
		return 0, errors.Errorf("task %s has negative weight %d", t.Name, t.Weight)
	case t.Weight == 0:
		return 1, nil
	default:
		return t.Weight, nil
	}
}

func newSelector(sequential bool, tasks []Task) (selector, error) {
	if sequential {
		return newSequentialSelector(tasks)
	}
	return newWeightedSelector(tasks)
}
