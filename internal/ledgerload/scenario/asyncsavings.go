package scenario

import (
	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
)

// asyncSavingsScenario sends deposits and withdrawals to existing accounts through the async
// endpoints and follows each one to completion. Tasks run in order, wrapping around.
func asyncSavingsScenario(deps Dependencies) (driver.Definition, error) {
	savingsIDs, err := ReadIDFile(deps.Params.SavingsAccountsFile)
	if err != nil {
		return driver.Definition{}, err
	}
	t := newTransactor(deps, func(u *driver.User) (int64, error) {
		return savingsIDs[u.Rand.Intn(len(savingsIDs))], nil
	})
	return driver.Definition{
		Sequential: true,
		Tasks: []driver.Task{
			{
				Name:   "async_deposit",
				Weight: 3,
				Tags:   []string{TagSavings, TagDeposit, TagAsync},
				Run:    t.async(deps.API.SavingsTransactions.DepositAsync),
			},
			{
				Name:   "async_withdrawal",
				Weight: 1,
				Tags:   []string{TagSavings, TagWithdrawal, TagAsync},
				Run:    t.async(deps.API.SavingsTransactions.WithdrawAsync),
			},
		},
	}, nil
}
