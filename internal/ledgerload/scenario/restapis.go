package scenario

import (
	"context"
	"strconv"

	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

// restApisScenario exercises existing accounts and clients listed in input files. Nothing is
// created; the tasks run in order, wrapping around.
func restApisScenario(deps Dependencies) (driver.Definition, error) {
	savingsIDs, err := ReadIDFile(deps.Params.SavingsAccountsFile)
	if err != nil {
		return driver.Definition{}, err
	}
	clientIDs, err := ReadIDFile(deps.Params.ClientAccountsFile)
	if err != nil {
		return driver.Definition{}, err
	}
	clientFilters, err := payload.ClientSearch(deps.Params.ClientSearch)
	if err != nil {
		return driver.Definition{}, err
	}

	pickFrom := func(ids []int64) func(u *driver.User) int64 {
		return func(u *driver.User) int64 { return ids[u.Rand.Intn(len(ids))] }
	}
	randomSavings := pickFrom(savingsIDs)
	randomClient := pickFrom(clientIDs)

	t := newTransactor(deps, func(u *driver.User) (int64, error) { return randomSavings(u), nil })
	clientSearch := func(ctx context.Context, _ *driver.User) error {
		_, err := deps.API.Search.Clients(ctx, clientFilters)
		return err
	}
	transactionSearch := func(ctx context.Context, u *driver.User) error {
		filters, err := payload.DepositTransactionSearch(strconv.FormatInt(randomClient(u), 10))
		if err != nil {
			return err
		}
		_, err = deps.API.Search.SavingsTransactions(ctx, filters)
		return err
	}
	return driver.Definition{
		Sequential: true,
		Tasks: []driver.Task{
			{Name: "deposit", Weight: 3, Tags: []string{TagSavings, TagDeposit}, Run: t.deposit},
			{Name: "withdrawal", Weight: 1, Tags: []string{TagSavings, TagWithdrawal}, Run: t.withdraw},
			{Name: "client_search", Weight: 1, Tags: []string{TagClient, TagSearch}, Run: clientSearch},
			{Name: "transaction_search", Weight: 1, Tags: []string{TagSavings, TagTransactionSearch}, Run: transactionSearch},
		},
	}, nil
}
