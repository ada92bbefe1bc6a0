package scenario

import (
	"context"

	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
)

// loanDisburseScenario gives each user a client and loan product, then keeps disbursing loans.
func loanDisburseScenario(deps Dependencies) (driver.Definition, error) {
	if err := requireWorkflows(deps); err != nil {
		return driver.Definition{}, err
	}
	w := deps.Workflows
	onStart := func(ctx context.Context, u *driver.User) error {
		clientID, err := w.CreateAndReturnClient(ctx)
		if err != nil {
			return err
		}
		product, err := w.CreateAndReturnLoanProduct(ctx)
		if err != nil {
			return err
		}
		u.ClientID = clientID
		u.ProductID = product.ID
		return nil
	}
	disburse := func(ctx context.Context, u *driver.User) error {
		_, err := w.DisburseLoan(ctx, u.ProductID, u.ClientID)
		return err
	}
	return driver.Definition{
		OnStart: onStart,
		Tasks:   []driver.Task{{Name: "disburse_loan", Weight: 3, Tags: []string{TagLoan}, Run: disburse}},
	}, nil
}
