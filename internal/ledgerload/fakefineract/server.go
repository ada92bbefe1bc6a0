// Package fakefineract is an in-memory stand-in for the ledger REST API, used by tests. It keeps
// just enough state to check call order, account lifecycle transitions and balances.
package fakefineract

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerload/ledgerload/internal/ledgerload/fineract"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

const BasePath = "/fineract-provider/api/v1"

// Call is one request the server received.
type Call struct {
	Method  string
	Path    string
	Command string
}

func (c Call) String() string {
	if c.Command != "" {
		return fmt.Sprintf("%s %s?command=%s", c.Method, c.Path, c.Command)
	}
	return c.Method + " " + c.Path
}

type failure struct {
	nth    int
	status int
}

type entry[T any] struct {
	item T
	// hiddenFor counts the list calls that still won't return this item.
	hiddenFor int
}

type Server struct {
	mu sync.Mutex
	hs *httptest.Server

	nextID int64
	calls  []Call
	counts map[string]int
	fail   map[string][]failure

	visibilityLag   int
	completionLag   int
	omitCreateIDFor map[string]bool

	clients         map[int64]fineract.Client
	glAccounts      []fineract.GLAccount
	savingsProducts []fineract.SavingsProduct
	savingsAccounts []*entry[fineract.SavingsAccount]
	balances        map[int64]decimal.Decimal
	statusHistory   map[int64][]fineract.Status
	transactions    []fineract.SavingsTransaction
	loanProducts    []*entry[fineract.LoanProduct]
	loans           []*entry[fineract.Loan]

	// pending maps the correlation id of a queued command to the status calls left before it
	// reports complete.
	pending map[string]int
}

func New() *Server {
	s := &Server{
		counts:          map[string]int{},
		fail:            map[string][]failure{},
		omitCreateIDFor: map[string]bool{},
		clients:         map[int64]fineract.Client{},
		balances:        map[int64]decimal.Decimal{},
		statusHistory:   map[int64][]fineract.Status{},
		pending:         map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /glaccounts", s.createGLAccount)
	mux.HandleFunc("GET /glaccounts", s.listGLAccounts)
	mux.HandleFunc("POST /clients", s.createClient)
	mux.HandleFunc("GET /clients", s.listClients)
	mux.HandleFunc("GET /clients/{id}", s.getClient)
	mux.HandleFunc("POST /clients/search", s.searchClients)
	mux.HandleFunc("POST /savingsproducts", s.createSavingsProduct)
	mux.HandleFunc("GET /savingsproducts", s.listSavingsProducts)
	mux.HandleFunc("POST /savingsaccounts", s.createSavingsAccount)
	mux.HandleFunc("GET /savingsaccounts", s.listSavingsAccounts)
	mux.HandleFunc("GET /savingsaccounts/{id}", s.getSavingsAccount)
	mux.HandleFunc("POST /savingsaccounts/{id}", s.savingsAccountCommand)
	mux.HandleFunc("POST /savingsaccounts/{id}/transactions", s.savingsTransaction)
	mux.HandleFunc("POST /savingsaccounts/{id}/transactions/async", s.savingsTransactionAsync)
	mux.HandleFunc("GET /transactions/status/{id}", s.transactionStatus)
	mux.HandleFunc("POST /savingsaccounts/transactions/search", s.searchTransactions)
	mux.HandleFunc("POST /loanproducts", s.createLoanProduct)
	mux.HandleFunc("GET /loanproducts", s.listLoanProducts)
	mux.HandleFunc("POST /loans", s.createLoan)
	mux.HandleFunc("GET /loans", s.listLoans)
	mux.HandleFunc("GET /loans/{id}", s.getLoan)
	mux.HandleFunc("POST /loans/{id}", s.loanCommand)

	s.hs = httptest.NewServer(http.StripPrefix(BasePath, s.intercept(mux)))
	return s
}

// URL is the base URL to configure the connection with.
func (s *Server) URL() string {
	return s.hs.URL + BasePath
}

func (s *Server) Close() {
	s.hs.Close()
}

// FailNth makes the nth (1-based) call to "METHOD /path" answer with status.
func (s *Server) FailNth(method, path string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.fail[key] = append(s.fail[key], failure{nth: n, status: status})
}

// SetVisibilityLag makes resources created from now on invisible to the next n list calls of
// their kind.
func (s *Server) SetVisibilityLag(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibilityLag = n
}

// SetCompletionLag makes commands queued from now on report incomplete to their first n status
// calls.
func (s *Server) SetCompletionLag(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completionLag = n
}

// OmitCreatedID makes creates of the given kind ("savingsaccounts", "loans") answer without an id.
func (s *Server) OmitCreatedID(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitCreateIDFor[kind] = true
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times "METHOD /path" was called, whatever the command.
func (s *Server) CallCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+path]
}

func (s *Server) SavingsAccount(id int64) (fineract.SavingsAccount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.savingsAccounts {
		if e.item.ID == id {
			return withSummary(e.item, s.balances[id]), true
		}
	}
	return fineract.SavingsAccount{}, false
}

// SavingsStatusHistory lists every status the account has been in, oldest first.
func (s *Server) SavingsStatusHistory(id int64) []fineract.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fineract.Status{}, s.statusHistory[id]...)
}

func (s *Server) Transactions() []fineract.SavingsTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fineract.SavingsTransaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Server) Loan(id int64) (fineract.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.loan(id); e != nil {
		return e.item, true
	}
	return fineract.Loan{}, false
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") || r.Header.Get(fineract.TenantHeader) == "" {
			writeError(w, http.StatusUnauthorized, "missing credentials or tenant")
			return
		}
		path := normalize(r.URL.Path)
		s.mu.Lock()
		call := Call{Method: r.Method, Path: path, Command: r.URL.Query().Get("command")}
		s.calls = append(s.calls, call)
		key := r.Method + " " + path
		s.counts[key]++
		n := s.counts[key]
		status := 0
		for _, f := range s.fail[key] {
			if f.nth == n {
				status = f.status
			}
		}
		s.mu.Unlock()
		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// normalize replaces numeric and uuid path segments with {id} so that calls can be counted per
// endpoint.
func normalize(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		} else if _, err := uuid.Parse(p); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"developerMessage": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "bad id")
		return 0, false
	}
	return id, true
}

// newID must be called with mu held.
func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func visible[T any](entries []*entry[T]) []T {
	out := []T{}
	for _, e := range entries {
		if e.hiddenFor > 0 {
			e.hiddenFor--
			continue
		}
		out = append(out, e.item)
	}
	return out
}

func withSummary(a fineract.SavingsAccount, balance decimal.Decimal) fineract.SavingsAccount {
	a.Summary = &fineract.AccountSummary{AccountBalance: balance}
	return a
}

var (
	statusSubmitted = fineract.Status{ID: 100, Code: "savingsAccountStatusType.submitted.and.pending.approval", Value: "Submitted and pending approval", SubmittedAndPendingApproval: true}
	statusApproved  = fineract.Status{ID: 200, Code: "savingsAccountStatusType.approved", Value: "Approved", Approved: true}
	statusActive    = fineract.Status{ID: 300, Code: "savingsAccountStatusType.active", Value: "Active", Active: true}
)

func (s *Server) createGLAccount(w http.ResponseWriter, r *http.Request) {
	var req payload.GLAccountRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.glAccounts {
		if a.GLCode == req.GLCode {
			writeError(w, http.StatusForbidden, "duplicate glCode")
			return
		}
	}
	id := s.newID()
	s.glAccounts = append(s.glAccounts, fineract.GLAccount{ID: id, Name: req.Name, GLCode: req.GLCode})
	writeJSON(w, fineract.CommandResult{ResourceID: id})
}

func (s *Server) listGLAccounts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, append([]fineract.GLAccount{}, s.glAccounts...))
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req payload.ClientRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.clients[id] = fineract.Client{
		ID:          id,
		DisplayName: req.Firstname + " " + req.Lastname,
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		ExternalID:  req.ExternalID,
		Active:      req.Active,
	}
	writeJSON(w, fineract.CommandResult{ResourceID: id, ClientID: id, OfficeID: req.OfficeID})
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("externalId")
	s.mu.Lock()
	defer s.mu.Unlock()
	page := fineract.Page[fineract.Client]{PageItems: []fineract.Client{}}
	for _, c := range s.clients {
		if externalID == "" || c.ExternalID == externalID {
			page.PageItems = append(page.PageItems, c)
		}
	}
	page.TotalFilteredRecords = len(page.PageItems)
	writeJSON(w, page)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, c)
}

func (s *Server) searchClients(w http.ResponseWriter, r *http.Request) {
	var filters []payload.SearchFilter
	if !decode(w, r, &filters) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	page := fineract.Page[fineract.Client]{PageItems: []fineract.Client{}}
	for _, c := range s.clients {
		if matchesClient(c, filters) {
			page.PageItems = append(page.PageItems, c)
		}
	}
	page.TotalFilteredRecords = len(page.PageItems)
	writeJSON(w, page)
}

func matchesClient(c fineract.Client, filters []payload.SearchFilter) bool {
	for _, f := range filters {
		switch f.FilterSelection {
		case payload.FilterFirstName:
			if c.Firstname != f.Value {
				return false
			}
		case payload.FilterLastName:
			if c.Lastname != f.Value {
				return false
			}
		}
	}
	return true
}

func (s *Server) createSavingsProduct(w http.ResponseWriter, r *http.Request) {
	var req payload.SavingsProductRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AccountingRule == payload.AccountingRuleCash && req.CashAccountingMapping == nil {
		writeError(w, http.StatusBadRequest, "cash accounting requires account mappings")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.savingsProducts = append(s.savingsProducts, fineract.SavingsProduct{ID: id, Name: req.Name, ShortName: req.ShortName})
	writeJSON(w, fineract.CommandResult{ResourceID: id})
}

func (s *Server) listSavingsProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, append([]fineract.SavingsProduct{}, s.savingsProducts...))
}

func (s *Server) createSavingsAccount(w http.ResponseWriter, r *http.Request) {
	var req payload.SavingsAccountRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[req.ClientID]; !ok {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	id := s.newID()
	s.savingsAccounts = append(s.savingsAccounts, &entry[fineract.SavingsAccount]{
		item: fineract.SavingsAccount{
			ID:         id,
			AccountNo:  fmt.Sprintf("%09d", id),
			ExternalID: req.ExternalID,
			ClientID:   req.ClientID,
			ProductID:  req.ProductID,
			Status:     statusSubmitted,
		},
		hiddenFor: s.visibilityLag,
	})
	s.balances[id] = decimal.Zero
	s.statusHistory[id] = []fineract.Status{statusSubmitted}
	if s.omitCreateIDFor["savingsaccounts"] {
		writeJSON(w, fineract.CommandResult{ClientID: req.ClientID})
		return
	}
	writeJSON(w, fineract.CommandResult{ResourceID: id, SavingsID: id, ClientID: req.ClientID})
}

func (s *Server) listSavingsAccounts(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("externalId")
	s.mu.Lock()
	defer s.mu.Unlock()
	page := fineract.Page[fineract.SavingsAccount]{PageItems: []fineract.SavingsAccount{}}
	for _, a := range visible(s.savingsAccounts) {
		if externalID == "" || a.ExternalID == externalID {
			page.PageItems = append(page.PageItems, a)
		}
	}
	page.TotalFilteredRecords = len(page.PageItems)
	writeJSON(w, page)
}

// savingsAccount must be called with mu held.
func (s *Server) savingsAccount(id int64) *entry[fineract.SavingsAccount] {
	for _, e := range s.savingsAccounts {
		if e.item.ID == id {
			return e
		}
	}
	return nil
}

func (s *Server) getSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.savingsAccount(id)
	if e == nil {
		writeError(w, http.StatusNotFound, "savings account not found")
		return
	}
	writeJSON(w, withSummary(e.item, s.balances[id]))
}

func (s *Server) savingsAccountCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.savingsAccount(id)
	if e == nil {
		writeError(w, http.StatusNotFound, "savings account not found")
		return
	}
	switch command := r.URL.Query().Get("command"); {
	case command == "approve" && e.item.Status.SubmittedAndPendingApproval:
		e.item.Status = statusApproved
	case command == "activate" && e.item.Status.Approved:
		e.item.Status = statusActive
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("command %q not allowed in status %s", command, e.item.Status.Value))
		return
	}
	s.statusHistory[id] = append(s.statusHistory[id], e.item.Status)
	writeJSON(w, fineract.CommandResult{ResourceID: id, SavingsID: id, ClientID: e.item.ClientID})
}

func (s *Server) savingsTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req payload.TransactionRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, clientID, status, msg := s.applyTransaction(id, r.URL.Query().Get("command"), req)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	writeJSON(w, fineract.CommandResult{ResourceID: tx.ID, SavingsID: id, ClientID: clientID})
}

// savingsTransactionAsync applies the transaction at once but answers only with a correlation id;
// completion is reported through transactionStatus after the configured lag.
func (s *Server) savingsTransactionAsync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req payload.TransactionRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, status, msg := s.applyTransaction(id, r.URL.Query().Get("command"), req); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	correlationID := uuid.NewString()
	s.pending[correlationID] = s.completionLag
	writeJSON(w, fineract.CommandResult{CorrelationID: correlationID})
}

// transactionStatus reports unknown correlation ids as complete, like the ledger does once a
// processed command's correlation record is gone.
func (s *Server) transactionStatus(w http.ResponseWriter, r *http.Request) {
	correlationID := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	left, ok := s.pending[correlationID]
	if ok && left > 0 {
		s.pending[correlationID] = left - 1
		writeJSON(w, fineract.TransactionStatus{Complete: false})
		return
	}
	delete(s.pending, correlationID)
	writeJSON(w, fineract.TransactionStatus{Complete: true})
}

// applyTransaction must be called with mu held. A status other than 200 means nothing changed.
func (s *Server) applyTransaction(id int64, command string, req payload.TransactionRequest) (fineract.SavingsTransaction, int64, int, string) {
	e := s.savingsAccount(id)
	if e == nil {
		return fineract.SavingsTransaction{}, 0, http.StatusNotFound, "savings account not found"
	}
	if !e.item.Status.Active {
		return fineract.SavingsTransaction{}, 0, http.StatusBadRequest, "account is not active"
	}
	balance := s.balances[id]
	var txType fineract.TransactionType
	switch command {
	case "deposit":
		balance = balance.Add(req.TransactionAmount)
		txType = fineract.TransactionType{ID: payload.TransactionTypeDeposit, Code: "savingsAccountTransactionType.deposit", Deposit: true}
	case "withdrawal":
		if balance.LessThan(req.TransactionAmount) {
			return fineract.SavingsTransaction{}, 0, http.StatusForbidden, "insufficient account balance"
		}
		balance = balance.Sub(req.TransactionAmount)
		txType = fineract.TransactionType{ID: payload.TransactionTypeWithdrawal, Code: "savingsAccountTransactionType.withdrawal", Withdrawal: true}
	default:
		return fineract.SavingsTransaction{}, 0, http.StatusBadRequest, "unknown transaction command"
	}
	s.balances[id] = balance
	tx := fineract.SavingsTransaction{
		ID:              s.newID(),
		AccountID:       id,
		Amount:          req.TransactionAmount,
		TransactionType: txType,
		RunningBalance:  balance,
		Note:            req.Note,
	}
	if req.PaymentTypeID != 0 {
		tx.PaymentDetail = &fineract.PaymentDetail{PaymentType: fineract.PaymentType{ID: req.PaymentTypeID}}
	}
	s.transactions = append(s.transactions, tx)
	return tx, e.item.ClientID, http.StatusOK, ""
}

func (s *Server) searchTransactions(w http.ResponseWriter, r *http.Request) {
	var filters []payload.SearchFilter
	if !decode(w, r, &filters) {
		return
	}
	owner := ""
	for _, f := range filters {
		if f.FilterSelection == payload.FilterAccountOwnerID {
			owner = f.Value
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	page := fineract.Page[fineract.SavingsTransaction]{PageItems: []fineract.SavingsTransaction{}}
	for _, tx := range s.transactions {
		a := s.savingsAccount(tx.AccountID)
		if owner == "" || (a != nil && strconv.FormatInt(a.item.ClientID, 10) == owner) {
			page.PageItems = append(page.PageItems, tx)
		}
	}
	page.TotalFilteredRecords = len(page.PageItems)
	writeJSON(w, page)
}

func (s *Server) createLoanProduct(w http.ResponseWriter, r *http.Request) {
	var req payload.LoanProductRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.loanProducts = append(s.loanProducts, &entry[fineract.LoanProduct]{
		item:      fineract.LoanProduct{ID: id, Name: req.Name, ShortName: req.ShortName},
		hiddenFor: s.visibilityLag,
	})
	writeJSON(w, fineract.CommandResult{ResourceID: id})
}

func (s *Server) listLoanProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, visible(s.loanProducts))
}

func (s *Server) createLoan(w http.ResponseWriter, r *http.Request) {
	var req payload.LoanApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[req.ClientID]; !ok {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	id := s.newID()
	s.loans = append(s.loans, &entry[fineract.Loan]{
		item: fineract.Loan{
			ID:         id,
			AccountNo:  fmt.Sprintf("%09d", id),
			ExternalID: req.ExternalID,
			ClientID:   req.ClientID,
			ProductID:  req.ProductID,
			Status:     statusSubmitted,
		},
		hiddenFor: s.visibilityLag,
	})
	if s.omitCreateIDFor["loans"] {
		writeJSON(w, fineract.CommandResult{ClientID: req.ClientID})
		return
	}
	writeJSON(w, fineract.CommandResult{ResourceID: id, LoanID: id, ClientID: req.ClientID})
}

func (s *Server) listLoans(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("externalId")
	s.mu.Lock()
	defer s.mu.Unlock()
	page := fineract.Page[fineract.Loan]{PageItems: []fineract.Loan{}}
	for _, l := range visible(s.loans) {
		if externalID == "" || l.ExternalID == externalID {
			page.PageItems = append(page.PageItems, l)
		}
	}
	page.TotalFilteredRecords = len(page.PageItems)
	writeJSON(w, page)
}

// loan must be called with mu held.
func (s *Server) loan(id int64) *entry[fineract.Loan] {
	for _, e := range s.loans {
		if e.item.ID == id {
			return e
		}
	}
	return nil
}

func (s *Server) getLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.loan(id)
	if e == nil {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	writeJSON(w, e.item)
}

func (s *Server) loanCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.loan(id)
	if e == nil {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	switch command := r.URL.Query().Get("command"); {
	case command == "approve" && e.item.Status.SubmittedAndPendingApproval:
		e.item.Status = statusApproved
	case command == "disburse" && e.item.Status.Approved:
		e.item.Status = statusActive
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("command %q not allowed in status %s", command, e.item.Status.Value))
		return
	}
	writeJSON(w, fineract.CommandResult{ResourceID: id, LoanID: id, ClientID: e.item.ClientID})
}
