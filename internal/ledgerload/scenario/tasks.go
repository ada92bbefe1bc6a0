package scenario

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/fineract"
	"github.com/ledgerload/ledgerload/internal/ledgerload/idgen"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
	"github.com/ledgerload/ledgerload/internal/ledgerload/workflow"
)

const (
	TagSavings           = "savings"
	TagDeposit           = "deposit"
	TagWithdrawal        = "withdrawal"
	TagClient            = "client"
	TagSearch            = "search"
	TagTransactionSearch = "transaction_search"
	TagLoan              = "loan"
	TagAsync             = "async"
)

// asyncPaymentTypeID is the payment type async transactions are booked under.
const asyncPaymentTypeID = 1

// accountPicker chooses the savings account a user transacts on.
type accountPicker func(u *driver.User) (int64, error)

func ownAccount(u *driver.User) (int64, error) {
	if u.SavingsAccountID == 0 {
		return 0, errors.Errorf("user %d has no savings account", u.ID)
	}
	return u.SavingsAccountID, nil
}

func sharedAccount(u *driver.User) (int64, error) {
	id, ok := u.Setup.RandomSavingsAccountID(u.Rand)
	if !ok {
		return 0, errors.New("setup produced no savings accounts")
	}
	return id, nil
}

type transactor struct {
	api    *fineract.API
	ids    *idgen.Generator
	amount decimal.Decimal
	poll   workflow.PollPolicy
	pick   accountPicker
}

func newTransactor(deps Dependencies, pick accountPicker) transactor {
	return transactor{
		api:    deps.API,
		ids:    deps.Generator,
		amount: deps.Params.TransactionAmount,
		poll:   deps.Params.Poll,
		pick:   pick,
	}
}

func (t transactor) request() (payload.TransactionRequest, error) {
	return payload.Transaction(t.amount, t.ids.DateStringNow())
}

func (t transactor) deposit(ctx context.Context, u *driver.User) error {
	id, err := t.pick(u)
	if err != nil {
		return err
	}
	req, err := t.request()
	if err != nil {
		return err
	}
	_, err = t.api.SavingsTransactions.Deposit(ctx, id, req)
	return err
}

func (t transactor) withdraw(ctx context.Context, u *driver.User) error {
	id, err := t.pick(u)
	if err != nil {
		return err
	}
	req, err := t.request()
	if err != nil {
		return err
	}
	_, err = t.api.SavingsTransactions.Withdraw(ctx, id, req)
	return err
}

type asyncCommand func(ctx context.Context, accountID int64, req payload.TransactionRequest) (string, error)

// async queues a transaction with send and returns once the ledger reports it processed, so the
// recorded latency spans queueing and completion.
func (t transactor) async(send asyncCommand) func(ctx context.Context, u *driver.User) error {
	return func(ctx context.Context, u *driver.User) error {
		id, err := t.pick(u)
		if err != nil {
			return err
		}
		req, err := t.request()
		if err != nil {
			return err
		}
		correlationID, err := send(ctx, id, req.WithPaymentType(asyncPaymentTypeID))
		if err != nil {
			return err
		}
		return workflow.AwaitTransaction(ctx, t.api, t.poll, correlationID)
	}
}

// tasks returns deposit and withdrawal at the 3:1 mix every savings scenario uses.
func (t transactor) tasks() []driver.Task {
	return []driver.Task{
		{Name: "deposit", Weight: 3, Tags: []string{TagSavings, TagDeposit}, Run: t.deposit},
		{Name: "withdrawal", Weight: 1, Tags: []string{TagSavings, TagWithdrawal}, Run: t.withdraw},
	}
}
