package scenario

import (
	"context"

	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

// savingsScenario shares one client and product; every user opens and activates its own account.
func savingsScenario(deps Dependencies) (driver.Definition, error) {
	if err := requireWorkflows(deps); err != nil {
		return driver.Definition{}, err
	}
	w := deps.Workflows
	init := func(ctx context.Context) (*workflow.SetupResult, error) {
		clientID, err := w.CreateAndReturnClient(ctx)
		if err != nil {
			return nil, err
		}
		productID, err := w.CreateAndReturnSavingsProduct(ctx)
		if err != nil {
			return nil, err
		}
		return workflow.NewSetupResult(clientID, productID), nil
	}
	onStart := func(ctx context.Context, u *driver.User) error {
		id, err := w.CreateActiveSavingsAccount(ctx, u.Setup.ProductID(), u.Setup.ClientID())
		if err != nil {
			return err
		}
		u.ClientID = u.Setup.ClientID()
		u.ProductID = u.Setup.ProductID()
		u.SavingsAccountID = id
		logging.WithField("user", u.ID).Debugf("Using savings account %d", id)
		return nil
	}
	return driver.Definition{
		Init:    init,
		OnStart: onStart,
		Tasks:   newTransactor(deps, ownAccount).tasks(),
	}, nil
}

// singleSavingsAccountScenario points every user at one shared account.
func singleSavingsAccountScenario(deps Dependencies) (driver.Definition, error) {
	return provisionedSavings(deps, 1)
}

// savingsNAccountsScenario spreads users over a pool of shared accounts, picked per task.
func savingsNAccountsScenario(deps Dependencies) (driver.Definition, error) {
	return provisionedSavings(deps, deps.Params.NumberOfAccounts)
}

func provisionedSavings(deps Dependencies, n int) (driver.Definition, error) {
	if err := requireWorkflows(deps); err != nil {
		return driver.Definition{}, err
	}
	if n < 1 {
		return driver.Definition{}, invalidCount(n)
	}
	return driver.Definition{
		Init: func(ctx context.Context) (*workflow.SetupResult, error) {
			return deps.Workflows.ProvisionSavings(ctx, n)
		},
		Tasks: newTransactor(deps, sharedAccount).tasks(),
	}, nil
}
