// Package scenario holds the named load scenarios. Each one is a driver.Definition: an optional
// setup run once before users spawn, an optional per-user start and the tasks users repeat.
package scenario

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/fineract"
	"github.com/ledgerload/ledgerload/internal/ledgerload/idgen"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

const (
	Client               = "client"
	Savings              = "savings"
	SingleSavingsAccount = "single-savings-account"
	SavingsNAccounts     = "savings-n-accounts"
	LoanDisburse         = "loan-disburse"
	RestApis             = "rest-apis"
	AsyncSavings         = "async-savings"
)

// Params are the scenario knobs taken from configuration.
type Params struct {
	NumberOfAccounts    int
	TransactionAmount   decimal.Decimal
	SavingsAccountsFile string
	ClientAccountsFile  string
	ClientSearch        payload.ClientSearchCriteria
	// Poll bounds the wait for async transactions to complete. The zero value means
	// workflow.DefaultPollPolicy.
	Poll workflow.PollPolicy
}

type Dependencies struct {
	// API carries the timed workload.
	API *fineract.API
	// Workflows carry setup steps, possibly against a different host than API.
	Workflows *workflow.Workflows
	Generator *idgen.Generator
	Params    Params
}

type builder func(deps Dependencies) (driver.Definition, error)

var registry = map[string]builder{
	Client:               clientScenario,
	Savings:              savingsScenario,
	SingleSavingsAccount: singleSavingsAccountScenario,
	SavingsNAccounts:     savingsNAccountsScenario,
	LoanDisburse:         loanDisburseScenario,
	RestApis:             restApisScenario,
	AsyncSavings:         asyncSavingsScenario,
}

// Names lists the registered scenarios in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the named scenario. Input files a scenario depends on are read here, so a missing
// file fails the run before any user starts.
func Build(name string, deps Dependencies) (driver.Definition, error) {
	b, ok := registry[name]
	if !ok {
		return driver.Definition{}, errors.WithStack(&ledgererrors.ErrNotFound{Type: "scenario", Value: name})
	}
	if deps.API == nil {
		return driver.Definition{}, errors.WithStack(&ledgererrors.ErrInvalidArgument{
			Name: "API", Value: nil, Message: "scenarios need an API client",
		})
	}
	if deps.Generator == nil {
		deps.Generator = idgen.Default()
	}
	if deps.Params.TransactionAmount.IsZero() {
		deps.Params.TransactionAmount = DefaultTransactionAmount()
	}
	if deps.Params.Poll == (workflow.PollPolicy{}) {
		deps.Params.Poll = workflow.DefaultPollPolicy()
	}
	def, err := b(deps)
	if err != nil {
		return driver.Definition{}, errors.WithMessagef(err, "building scenario %s", name)
	}
	def.Name = name
	return def, nil
}

// DefaultTransactionAmount is the amount every deposit and withdrawal moves unless configured.
func DefaultTransactionAmount() decimal.Decimal {
	return decimal.NewFromInt(50)
}

func requireWorkflows(deps Dependencies) error {
	if deps.Workflows == nil {
		return errors.WithStack(&ledgererrors.ErrInvalidArgument{
			Name: "Workflows", Value: nil, Message: "scenario creates entities and needs workflows",
		})
	}
	return nil
}
