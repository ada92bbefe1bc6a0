package fineract

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

// ListParams are the query parameters list endpoints accept. Zero values are omitted.
type ListParams struct {
	ExternalID string
	Offset     int
	Limit      int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.ExternalID != "" {
		q.Set("externalId", p.ExternalID)
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

type GLAccounts struct{ conn *Connection }

func NewGLAccounts(conn *Connection) *GLAccounts { return &GLAccounts{conn: conn} }

func (a *GLAccounts) Create(ctx context.Context, req payload.GLAccountRequest) (int64, error) {
	res, err := a.conn.command(ctx, "/glaccounts", nil, req)
	return res.ResourceID, err
}

func (a *GLAccounts) List(ctx context.Context) ([]GLAccount, error) {
	var out []GLAccount
	err := a.conn.do(ctx, http.MethodGet, "/glaccounts", nil, nil, &out)
	return out, err
}

type Clients struct{ conn *Connection }

func NewClients(conn *Connection) *Clients { return &Clients{conn: conn} }

func (c *Clients) Create(ctx context.Context, req payload.ClientRequest) (int64, error) {
	res, err := c.conn.command(ctx, "/clients", nil, req)
	return res.ResourceID, err
}

func (c *Clients) List(ctx context.Context, params ListParams) (Page[Client], error) {
	var out Page[Client]
	err := c.conn.do(ctx, http.MethodGet, "/clients", params.query(), nil, &out)
	return out, err
}

func (c *Clients) Get(ctx context.Context, id int64) (Client, error) {
	var out Client
	err := c.conn.do(ctx, http.MethodGet, idPath("/clients", id), nil, nil, &out)
	return out, err
}

type SavingsProducts struct{ conn *Connection }

func NewSavingsProducts(conn *Connection) *SavingsProducts { return &SavingsProducts{conn: conn} }

func (p *SavingsProducts) Create(ctx context.Context, req payload.SavingsProductRequest) (int64, error) {
	res, err := p.conn.command(ctx, "/savingsproducts", nil, req)
	return res.ResourceID, err
}

// List returns every savings product; the endpoint does not page.
func (p *SavingsProducts) List(ctx context.Context) ([]SavingsProduct, error) {
	var out []SavingsProduct
	err := p.conn.do(ctx, http.MethodGet, "/savingsproducts", nil, nil, &out)
	return out, err
}

type SavingsAccounts struct{ conn *Connection }

func NewSavingsAccounts(conn *Connection) *SavingsAccounts { return &SavingsAccounts{conn: conn} }

// Create submits an application. The returned id is 0 if the ledger accepted the application
// without assigning an id yet; find the account by its external id in that case.
func (s *SavingsAccounts) Create(ctx context.Context, req payload.SavingsAccountRequest) (int64, error) {
	res, err := s.conn.command(ctx, "/savingsaccounts", nil, req)
	if err != nil {
		return 0, err
	}
	if res.ResourceID != 0 {
		return res.ResourceID, nil
	}
	return res.SavingsID, nil
}

func (s *SavingsAccounts) List(ctx context.Context, params ListParams) (Page[SavingsAccount], error) {
	var out Page[SavingsAccount]
	err := s.conn.do(ctx, http.MethodGet, "/savingsaccounts", params.query(), nil, &out)
	return out, err
}

func (s *SavingsAccounts) Get(ctx context.Context, id int64) (SavingsAccount, error) {
	var out SavingsAccount
	err := s.conn.do(ctx, http.MethodGet, idPath("/savingsaccounts", id), nil, nil, &out)
	return out, err
}

func (s *SavingsAccounts) Approve(ctx context.Context, id int64, req payload.ApproveSavingsRequest) error {
	_, err := s.conn.command(ctx, idPath("/savingsaccounts", id), commandQuery("approve"), req)
	return err
}

func (s *SavingsAccounts) Activate(ctx context.Context, id int64, req payload.ActivateSavingsRequest) error {
	_, err := s.conn.command(ctx, idPath("/savingsaccounts", id), commandQuery("activate"), req)
	return err
}

type SavingsTransactions struct{ conn *Connection }

func NewSavingsTransactions(conn *Connection) *SavingsTransactions {
	return &SavingsTransactions{conn: conn}
}

func (t *SavingsTransactions) Deposit(ctx context.Context, accountID int64, req payload.TransactionRequest) (int64, error) {
	return t.post(ctx, accountID, "deposit", req)
}

func (t *SavingsTransactions) Withdraw(ctx context.Context, accountID int64, req payload.TransactionRequest) (int64, error) {
	return t.post(ctx, accountID, "withdrawal", req)
}

func (t *SavingsTransactions) post(ctx context.Context, accountID int64, command string, req payload.TransactionRequest) (int64, error) {
	res, err := t.conn.command(ctx, idPath("/savingsaccounts", accountID)+"/transactions", commandQuery(command), req)
	return res.ResourceID, err
}

// DepositAsync queues a deposit and returns the correlation id to follow it with
// Transactions.Status. Acceptance says nothing about whether the deposit will succeed.
func (t *SavingsTransactions) DepositAsync(ctx context.Context, accountID int64, req payload.TransactionRequest) (string, error) {
	return t.postAsync(ctx, accountID, "deposit", req)
}

func (t *SavingsTransactions) WithdrawAsync(ctx context.Context, accountID int64, req payload.TransactionRequest) (string, error) {
	return t.postAsync(ctx, accountID, "withdrawal", req)
}

func (t *SavingsTransactions) postAsync(ctx context.Context, accountID int64, command string, req payload.TransactionRequest) (string, error) {
	path := idPath("/savingsaccounts", accountID) + "/transactions/async"
	res, err := t.conn.command(ctx, path, commandQuery(command), req)
	if err != nil {
		return "", err
	}
	if res.CorrelationID == "" {
		return "", errors.Errorf("%s on savings account %d was accepted without a correlation id", command, accountID)
	}
	return res.CorrelationID, nil
}

type Transactions struct{ conn *Connection }

func NewTransactions(conn *Connection) *Transactions { return &Transactions{conn: conn} }

// Status reports whether the queued command with the given correlation id has been processed.
// The ledger reports ids it does not know as complete.
func (t *Transactions) Status(ctx context.Context, correlationID string) (TransactionStatus, error) {
	var out TransactionStatus
	err := t.conn.do(ctx, http.MethodGet, "/transactions/status/"+url.PathEscape(correlationID), nil, nil, &out)
	return out, err
}

type LoanProducts struct{ conn *Connection }

func NewLoanProducts(conn *Connection) *LoanProducts { return &LoanProducts{conn: conn} }

func (p *LoanProducts) Create(ctx context.Context, req payload.LoanProductRequest) (int64, error) {
	res, err := p.conn.command(ctx, "/loanproducts", nil, req)
	return res.ResourceID, err
}

// List returns every loan product; the endpoint does not page.
func (p *LoanProducts) List(ctx context.Context) ([]LoanProduct, error) {
	var out []LoanProduct
	err := p.conn.do(ctx, http.MethodGet, "/loanproducts", nil, nil, &out)
	return out, err
}

type Loans struct{ conn *Connection }

func NewLoans(conn *Connection) *Loans { return &Loans{conn: conn} }

func (l *Loans) Create(ctx context.Context, req payload.LoanApplicationRequest) (int64, error) {
	res, err := l.conn.command(ctx, "/loans", nil, req)
	if err != nil {
		return 0, err
	}
	if res.ResourceID != 0 {
		return res.ResourceID, nil
	}
	return res.LoanID, nil
}

func (l *Loans) List(ctx context.Context, params ListParams) (Page[Loan], error) {
	var out Page[Loan]
	err := l.conn.do(ctx, http.MethodGet, "/loans", params.query(), nil, &out)
	return out, err
}

func (l *Loans) Get(ctx context.Context, id int64) (Loan, error) {
	var out Loan
	err := l.conn.do(ctx, http.MethodGet, idPath("/loans", id), nil, nil, &out)
	return out, err
}

func (l *Loans) Approve(ctx context.Context, id int64, req payload.ApproveLoanRequest) error {
	_, err := l.conn.command(ctx, idPath("/loans", id), commandQuery("approve"), req)
	return err
}

func (l *Loans) Disburse(ctx context.Context, id int64, req payload.DisburseLoanRequest) error {
	_, err := l.conn.command(ctx, idPath("/loans", id), commandQuery("disburse"), req)
	return err
}

type Search struct{ conn *Connection }

func NewSearch(conn *Connection) *Search { return &Search{conn: conn} }

const (
	clientSearchLimit      = 15
	transactionSearchLimit = 100
)

func (s *Search) Clients(ctx context.Context, filters []payload.SearchFilter) (Page[Client], error) {
	var out Page[Client]
	q := ListParams{Limit: clientSearchLimit}.query()
	q.Set("offset", "0")
	err := s.conn.do(ctx, http.MethodPost, "/clients/search", q, filters, &out)
	return out, err
}

func (s *Search) SavingsTransactions(ctx context.Context, filters []payload.SearchFilter) (Page[SavingsTransaction], error) {
	var out Page[SavingsTransaction]
	q := ListParams{Limit: transactionSearchLimit}.query()
	q.Set("offset", "0")
	err := s.conn.do(ctx, http.MethodPost, "/savingsaccounts/transactions/search", q, filters, &out)
	return out, err
}

// API groups the resource clients bound to one connection.
type API struct {
	GLAccounts          *GLAccounts
	Clients             *Clients
	SavingsProducts     *SavingsProducts
	SavingsAccounts     *SavingsAccounts
	SavingsTransactions *SavingsTransactions
	LoanProducts        *LoanProducts
	Loans               *Loans
	Search              *Search
	Transactions        *Transactions
}

func NewAPI(conn *Connection) *API {
	return &API{
		GLAccounts:          NewGLAccounts(conn),
		Clients:             NewClients(conn),
		SavingsProducts:     NewSavingsProducts(conn),
		SavingsAccounts:     NewSavingsAccounts(conn),
		SavingsTransactions: NewSavingsTransactions(conn),
		LoanProducts:        NewLoanProducts(conn),
		Loans:               NewLoans(conn),
		Search:              NewSearch(conn),
		Transactions:        NewTransactions(conn),
	}
}
