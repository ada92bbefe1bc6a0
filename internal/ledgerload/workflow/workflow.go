// Package workflow composes the resource clients into the multi-step setup sequences scenarios
// need before their timed workload starts: client, product, account, approval and activation.
//
// Every step blocks until the ledger has answered, so a dependent step never starts before the
// id it needs exists.
package workflow

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
	"github.com/ledgerload/ledgerload/internal/common/logging"
	"github.com/ledgerload/ledgerload/internal/ledgerload/fineract"
	"github.com/ledgerload/ledgerload/internal/ledgerload/idgen"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

const (
	glAccountNameLength = 20
	productCodeLength   = 4
)

type Options struct {
	Poll PollPolicy
	// ActivationPause is waited between approving and activating a savings account.
	ActivationPause time.Duration
	Generator       *idgen.Generator
}

func DefaultOptions() Options {
	return Options{Poll: DefaultPollPolicy(), ActivationPause: time.Second, Generator: idgen.Default()}
}

// Workflows is safe for concurrent use.
type Workflows struct {
	api  *fineract.API
	opts Options
	log  *logrus.Entry
}

func New(api *fineract.API, opts Options) *Workflows {
	if opts.Generator == nil {
		opts.Generator = idgen.Default()
	}
	return &Workflows{
		api:  api,
		opts: opts,
		log:  logging.WithField("component", "workflow"),
	}
}

func (w *Workflows) today() string {
	return w.opts.Generator.DateStringNow()
}

// CreateAndReturnClient creates an active client named "Doe <timestamp>" and returns its id.
func (w *Workflows) CreateAndReturnClient(ctx context.Context) (int64, error) {
	ids := w.opts.Generator
	lastName := "Doe " + ids.TimeStamp()
	req, err := payload.Client(lastName, "786YYH7 "+ids.TimeStamp(), w.today())
	if err != nil {
		return 0, err
	}
	w.log.Infof("Creating client %s", lastName)
	id, err := w.api.Clients.Create(ctx, req)
	if err != nil {
		return 0, errors.WithMessagef(err, "creating client %s", lastName)
	}
	return id, nil
}

type cashAccount struct {
	prefix      string
	accountType payload.GLAccountType
	assign      func(*payload.CashAccountingMapping, int64)
}

// cashAccounts lists, in creation order, the GL accounts a cash-accounted savings product needs.
var cashAccounts = []cashAccount{
	{"S_A_SavingsRef_", payload.GLAccountTypeAsset, func(m *payload.CashAccountingMapping, id int64) { m.SavingsReferenceAccountID = id }},
	{"S_A_OD_Portfolio_", payload.GLAccountTypeAsset, func(m *payload.CashAccountingMapping, id int64) { m.OverdraftPortfolioControlID = id }},
	{"S_L_Control_", payload.GLAccountTypeLiability, func(m *payload.CashAccountingMapping, id int64) { m.SavingsControlAccountID = id }},
	{"S_L_Transfer", payload.GLAccountTypeLiability, func(m *payload.CashAccountingMapping, id int64) { m.TransfersInSuspenseAccountID = id }},
	{"S_E_Interest_", payload.GLAccountTypeExpense, func(m *payload.CashAccountingMapping, id int64) { m.InterestOnSavingsAccountID = id }},
	{"S_E_WriteOff_", payload.GLAccountTypeExpense, func(m *payload.CashAccountingMapping, id int64) { m.WriteOffAccountID = id }},
	{"S_I_Fees_", payload.GLAccountTypeIncome, func(m *payload.CashAccountingMapping, id int64) { m.IncomeFromFeeAccountID = id }},
	{"S_I_Penalties_", payload.GLAccountTypeIncome, func(m *payload.CashAccountingMapping, id int64) { m.IncomeFromPenaltyAccountID = id }},
	{"S_I_Overdraft_", payload.GLAccountTypeIncome, func(m *payload.CashAccountingMapping, id int64) { m.IncomeFromInterestID = id }},
}

// CreateCashProduct creates the nine GL accounts of a cash-accounted savings product, one after
// the other, then the product itself. The first failure stops the sequence; the product is only
// created once all nine accounts exist.
func (w *Workflows) CreateCashProduct(ctx context.Context, name, code string) (int64, error) {
	var mapping payload.CashAccountingMapping
	for _, account := range cashAccounts {
		glName := w.opts.Generator.PadWithRandomString(account.prefix, glAccountNameLength)
		req, err := payload.GLAccount(glName, account.accountType, "")
		if err != nil {
			return 0, err
		}
		w.log.Debugf("Creating GL account %s (%s)", glName, account.accountType)
		id, err := w.api.GLAccounts.Create(ctx, req)
		if err != nil {
			return 0, errors.WithStack(&ledgererrors.ErrStep{
				Workflow: "create cash product",
				Step:     "create gl account " + glName,
				Subject:  name,
				Cause:    err,
			})
		}
		account.assign(&mapping, id)
	}

	req, err := payload.CashSavingsProduct(name, code, mapping)
	if err != nil {
		return 0, err
	}
	w.log.Infof("Creating savings product %s", name)
	id, err := w.api.SavingsProducts.Create(ctx, req)
	if err != nil {
		return 0, errors.WithStack(&ledgererrors.ErrStep{
			Workflow: "create cash product",
			Step:     "create savings product",
			Subject:  name,
			Cause:    err,
		})
	}
	return id, nil
}

// CreateAndReturnSavingsProduct creates a cash-accounted product named "Saving Prod_<timestamp>".
func (w *Workflows) CreateAndReturnSavingsProduct(ctx context.Context) (int64, error) {
	ids := w.opts.Generator
	return w.CreateCashProduct(ctx, "Saving Prod_"+ids.TimeStamp(), ids.RandomString(productCodeLength))
}

// CreateAndReturnSavingsAccount opens a savings account of productID for clientID. When the
// ledger accepts the application without returning an id, the account is looked up by its
// external id under the poll policy.
func (w *Workflows) CreateAndReturnSavingsAccount(ctx context.Context, productID, clientID int64) (int64, error) {
	externalID := "SAVING_" + w.opts.Generator.TimeStamp()
	req, err := payload.SavingsAccount(productID, clientID, externalID, w.today())
	if err != nil {
		return 0, err
	}
	w.log.Infof("Creating savings account %s", externalID)
	id, err := w.api.SavingsAccounts.Create(ctx, req)
	if err != nil {
		return 0, errors.WithMessagef(err, "creating savings account %s", externalID)
	}
	if id != 0 {
		return id, nil
	}

	account, err := poll(ctx, w.opts.Poll, "savings account", externalID,
		func(ctx context.Context) (fineract.SavingsAccount, bool, error) {
			page, err := w.api.SavingsAccounts.List(ctx, fineract.ListParams{ExternalID: externalID})
			if err != nil {
				return fineract.SavingsAccount{}, false, err
			}
			account, ok := fineract.Find(page.PageItems, fineract.ByExternalID[fineract.SavingsAccount](externalID))
			return account, ok, nil
		})
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

// ActivateSavingsAccount approves then, after the activation pause, activates the account. A
// failed activation leaves the account approved; the returned ErrStep names the step that failed.
func (w *Workflows) ActivateSavingsAccount(ctx context.Context, id int64) error {
	subject := strconv.FormatInt(id, 10)
	fail := func(step string, err error) error {
		w.log.WithError(err).Warnf("Savings account %s: %s failed", subject, step)
		return errors.WithStack(&ledgererrors.ErrStep{Workflow: "activate savings account", Step: step, Subject: subject, Cause: err})
	}

	approve, err := payload.ApproveSavings(w.today())
	if err != nil {
		return err
	}
	if err := w.api.SavingsAccounts.Approve(ctx, id, approve); err != nil {
		return fail("approve", err)
	}
	if err := sleep(ctx, w.opts.ActivationPause); err != nil {
		return fail("pause", err)
	}
	activate, err := payload.ActivateSavings(w.today())
	if err != nil {
		return err
	}
	if err := w.api.SavingsAccounts.Activate(ctx, id, activate); err != nil {
		return fail("activate", err)
	}
	w.log.Debugf("Savings account %s active", subject)
	return nil
}

// CreateActiveSavingsAccount opens and activates one account.
func (w *Workflows) CreateActiveSavingsAccount(ctx context.Context, productID, clientID int64) (int64, error) {
	id, err := w.CreateAndReturnSavingsAccount(ctx, productID, clientID)
	if err != nil {
		return 0, err
	}
	return id, w.ActivateSavingsAccount(ctx, id)
}

// ProvisionSavings creates a client, a savings product and n active accounts for them.
func (w *Workflows) ProvisionSavings(ctx context.Context, n int) (*SetupResult, error) {
	clientID, err := w.CreateAndReturnClient(ctx)
	if err != nil {
		return nil, err
	}
	productID, err := w.CreateAndReturnSavingsProduct(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		w.log.Infof("Creating savings account %d of %d", i+1, n)
		id, err := w.CreateActiveSavingsAccount(ctx, productID, clientID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, id)
	}
	return NewSetupResult(clientID, productID, accounts...), nil
}

// CreateAndReturnLoanProduct creates "Loan Prod_<timestamp>" and waits for it to be listed.
func (w *Workflows) CreateAndReturnLoanProduct(ctx context.Context) (fineract.LoanProduct, error) {
	ids := w.opts.Generator
	name := "Loan Prod_" + ids.TimeStamp()
	req, err := payload.LoanProduct(name, ids.RandomString(productCodeLength))
	if err != nil {
		return fineract.LoanProduct{}, err
	}
	w.log.Infof("Creating loan product %s", name)
	if _, err := w.api.LoanProducts.Create(ctx, req); err != nil {
		return fineract.LoanProduct{}, errors.WithMessagef(err, "creating loan product %s", name)
	}
	return poll(ctx, w.opts.Poll, "loan product", name,
		func(ctx context.Context) (fineract.LoanProduct, bool, error) {
			products, err := w.api.LoanProducts.List(ctx)
			if err != nil {
				return fineract.LoanProduct{}, false, err
			}
			product, ok := fineract.Find(products, fineract.ByName[fineract.LoanProduct](name))
			return product, ok, nil
		})
}

// CreateAndReturnLoanAccount applies for a loan and waits for it to be listed by external id.
func (w *Workflows) CreateAndReturnLoanAccount(ctx context.Context, productID, clientID int64) (fineract.Loan, error) {
	externalID := "LoanAccount_" + w.opts.Generator.TimeStamp()
	req, err := payload.LoanApplication(productID, clientID, externalID, w.today())
	if err != nil {
		return fineract.Loan{}, err
	}
	w.log.Debugf("Creating loan %s", externalID)
	if _, err := w.api.Loans.Create(ctx, req); err != nil {
		return fineract.Loan{}, errors.WithMessagef(err, "creating loan %s", externalID)
	}
	return poll(ctx, w.opts.Poll, "loan", externalID,
		func(ctx context.Context) (fineract.Loan, bool, error) {
			page, err := w.api.Loans.List(ctx, fineract.ListParams{ExternalID: externalID})
			if err != nil {
				return fineract.Loan{}, false, err
			}
			loan, ok := fineract.Find(page.PageItems, fineract.ByExternalID[fineract.Loan](externalID))
			return loan, ok, nil
		})
}

// DisburseLoan applies for a loan, approves it and disburses the full principal.
func (w *Workflows) DisburseLoan(ctx context.Context, productID, clientID int64) (fineract.Loan, error) {
	loan, err := w.CreateAndReturnLoanAccount(ctx, productID, clientID)
	if err != nil {
		return fineract.Loan{}, err
	}
	subject := strconv.FormatInt(loan.ID, 10)
	approve, err := payload.ApproveLoan(w.today())
	if err != nil {
		return loan, err
	}
	if err := w.api.Loans.Approve(ctx, loan.ID, approve); err != nil {
		return loan, errors.WithStack(&ledgererrors.ErrStep{Workflow: "disburse loan", Step: "approve", Subject: subject, Cause: err})
	}
	disburse, err := payload.DisburseLoan(payload.DefaultPrincipal(), w.today())
	if err != nil {
		return loan, err
	}
	if err := w.api.Loans.Disburse(ctx, loan.ID, disburse); err != nil {
		return loan, errors.WithStack(&ledgererrors.ErrStep{Workflow: "disburse loan", Step: "disburse", Subject: subject, Cause: err})
	}
	return loan, nil
}

// AwaitTransaction polls the status of a command queued through an async endpoint until the ledger
// reports it complete. It takes the API to poll explicitly so that it can follow commands sent by
// the timed workload rather than by setup.
func AwaitTransaction(ctx context.Context, api *fineract.API, policy PollPolicy, correlationID string) error {
	_, err := poll(ctx, policy, "transaction", correlationID,
		func(ctx context.Context) (fineract.TransactionStatus, bool, error) {
			status, err := api.Transactions.Status(ctx, correlationID)
			if err != nil {
				return status, false, err
			}
			return status, status.Complete, nil
		})
	return err
}
