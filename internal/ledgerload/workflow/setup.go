package workflow

import (
	"context"
	"math/rand"
	"sync"

	"github.com/pkg/errors"
)

// SetupResult holds the ids a scenario's one-time setup produced. It is never modified after
// construction, so it can be shared by every simulated user without locking.
type SetupResult struct {
	clientID          int64
	productID         int64
	savingsAccountIDs []int64
}

func NewSetupResult(clientID, productID int64, savingsAccountIDs ...int64) *SetupResult {
	ids := make([]int64, len(savingsAccountIDs))
	copy(ids, savingsAccountIDs)
	return &SetupResult{clientID: clientID, productID: productID, savingsAccountIDs: ids}
}

func (r *SetupResult) ClientID() int64  { return r.clientID }
func (r *SetupResult) ProductID() int64 { return r.productID }

// SavingsAccountIDs returns a copy of the provisioned account ids.
func (r *SetupResult) SavingsAccountIDs() []int64 {
	ids := make([]int64, len(r.savingsAccountIDs))
	copy(ids, r.savingsAccountIDs)
	return ids
}

// RandomSavingsAccountID picks one of the provisioned accounts. ok is false when there are none.
func (r *SetupResult) RandomSavingsAccountID(rnd *rand.Rand) (id int64, ok bool) {
	if len(r.savingsAccountIDs) == 0 {
		return 0, false
	}
	return r.savingsAccountIDs[rnd.Intn(len(r.savingsAccountIDs))], true
}

// Setup runs a setup function exactly once and hands its outcome to every waiter.
type Setup struct {
	once   sync.Once
	done   chan struct{}
	result *SetupResult
	err    error
}

func NewSetup() *Setup {
	return &Setup{done: make(chan struct{})}
}

// Do runs fn if no call to Do has run it yet, then returns its outcome. Concurrent callers block
// until the first one finishes. A panic in fn is returned as an error.
func (s *Setup) Do(ctx context.Context, fn func(context.Context) (*SetupResult, error)) (*SetupResult, error) {
	s.once.Do(func() {
		defer close(s.done)
		defer func() {
			if r := recover(); r != nil {
				s.result, s.err = nil, errors.Errorf("setup panicked: %v", r)
			}
		}()
		s.result, s.err = fn(ctx)
		if s.err == nil && s.result == nil {
			s.result = NewSetupResult(0, 0)
		}
	})
	return s.result, s.err
}

// Done reports whether Do has finished. It never blocks.
func (s *Setup) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
