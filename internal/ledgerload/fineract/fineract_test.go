package fineract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

const testDate = "01 March 2024"

func testConnection(t *testing.T, handler http.HandlerFunc) *Connection {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	conn, err := NewConnection(&ApiConnectionDetails{
		Url:       srv.URL + "/fineract-provider/api/v1/",
		BasicAuth: LoginCredentials{Username: "mifos", Password: "password"},
		TenantId:  "default",
		ClientId:  "xyz",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return conn
}

func TestConnection_SendsHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"resourceId": 7}`))
	})

	req, err := payload.Client("Doe", "786YYH7", testDate)
	require.NoError(t, err)
	id, err := NewClients(conn).Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(7), id)
	assert.Equal(t, "/fineract-provider/api/v1/clients", gotPath)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("mifos:password")), got.Get("Authorization"))
	assert.Equal(t, "default", got.Get(TenantHeader))
	assert.Equal(t, "xyz", got.Get(ClientHeader))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestCreate_ServerErrorReturnsNoID(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"developerMessage":"boom"}`))
	})

	req, err := payload.GLAccount("S_A_SavingsRef_ABCDE", payload.GLAccountTypeAsset, "")
	require.NoError(t, err)
	id, err := NewGLAccounts(conn).Create(context.Background(), req)

	assert.Zero(t, id)
	var httpErr *ledgererrors.ErrHttp
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, http.MethodPost, httpErr.Method)
	assert.Contains(t, httpErr.Body, "boom")
	assert.Contains(t, httpErr.URL, "/glaccounts")
}

func TestCreate_NonOKSuccessCodesAreErrors(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"resourceId": 7}`))
	})
	req, err := payload.SavingsProduct("Saving Prod_X", "ABCD")
	require.NoError(t, err)

	id, err := NewSavingsProducts(conn).Create(context.Background(), req)
	assert.Zero(t, id)
	assert.Equal(t, http.StatusCreated, ledgererrors.StatusCodeFromError(err))
}

func TestSavingsAccounts_CreateFallsBackToSavingsID(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"savingsId": 12, "clientId": 3}`))
	})
	req, err := payload.SavingsAccount(1, 3, "SAVING_X", testDate)
	require.NoError(t, err)

	id, err := NewSavingsAccounts(conn).Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestSavingsAccounts_ListByExternalID(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SAVING_X", r.URL.Query().Get("externalId"))
		_, _ = w.Write([]byte(`{"totalFilteredRecords":2,"pageItems":[
			{"id":1,"externalId":"OTHER","status":{"id":100}},
			{"id":2,"externalId":"SAVING_X","status":{"id":300,"active":true}}]}`))
	})

	page, err := NewSavingsAccounts(conn).List(context.Background(), ListParams{ExternalID: "SAVING_X"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalFilteredRecords)

	account, ok := Find(page.PageItems, ByExternalID[SavingsAccount]("SAVING_X"))
	require.True(t, ok)
	assert.Equal(t, int64(2), account.ID)
	assert.True(t, account.Status.Active)

	_, ok = Find(page.PageItems, ByExternalID[SavingsAccount]("MISSING"))
	assert.False(t, ok)
}

func TestLoanProducts_ListIsPlainArray(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":4,"name":"Loan Prod_A"},{"id":5,"name":"Loan Prod_B"}]`))
	})

	products, err := NewLoanProducts(conn).List(context.Background())
	require.NoError(t, err)
	product, ok := Find(products, ByName[LoanProduct]("Loan Prod_B"))
	require.True(t, ok)
	assert.Equal(t, int64(5), product.ID)
}

func TestSavingsTransactions_Deposit(t *testing.T) {
	var body map[string]interface{}
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fineract-provider/api/v1/savingsaccounts/9/transactions", r.URL.Path)
		assert.Equal(t, "deposit", r.URL.Query().Get("command"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"resourceId": 33, "savingsId": 9}`))
	})
	req, err := payload.Transaction(decimal.NewFromInt(50), testDate)
	require.NoError(t, err)

	id, err := NewSavingsTransactions(conn).Deposit(context.Background(), 9, req)
	require.NoError(t, err)
	assert.Equal(t, int64(33), id)
	assert.Equal(t, "50", body["transactionAmount"])
	assert.Equal(t, req.Note, body["note"])
}

func TestSavingsAccounts_Commands(t *testing.T) {
	var commands []string
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fineract-provider/api/v1/savingsaccounts/9", r.URL.Path)
		commands = append(commands, r.URL.Query().Get("command"))
		_, _ = w.Write([]byte(`{"resourceId": 9}`))
	})
	accounts := NewSavingsAccounts(conn)
	approve, err := payload.ApproveSavings(testDate)
	require.NoError(t, err)
	activate, err := payload.ActivateSavings(testDate)
	require.NoError(t, err)

	require.NoError(t, accounts.Approve(context.Background(), 9, approve))
	require.NoError(t, accounts.Activate(context.Background(), 9, activate))
	assert.Equal(t, []string{"approve", "activate"}, commands)
}

func TestSearch_Clients(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fineract-provider/api/v1/clients/search", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		var filters []payload.SearchFilter
		require.NoError(t, json.NewDecoder(r.Body).Decode(&filters))
		assert.Len(t, filters, 1)
		_, _ = w.Write([]byte(`{"totalFilteredRecords":1,"pageItems":[{"id":3,"displayName":"John Doe"}]}`))
	})
	filters, err := payload.ClientSearch(payload.ClientSearchCriteria{FirstName: "John"})
	require.NoError(t, err)

	page, err := NewSearch(conn).Clients(context.Background(), filters)
	require.NoError(t, err)
	require.Len(t, page.PageItems, 1)
	assert.Equal(t, "John Doe", page.PageItems[0].DisplayName)
}

func TestConnection_ContextCancelled(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGLAccounts(conn).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewConnection_InvalidURL(t *testing.T) {
	_, err := NewConnection(&ApiConnectionDetails{Url: "localhost:8443"})
	var invalid *ledgererrors.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
}

func TestConnection_Setup(t *testing.T) {
	conn, err := NewConnection(&ApiConnectionDetails{Url: "https://public/api/v1", SetupUrl: "http://backend:8081/api/v1"})
	require.NoError(t, err)
	assert.Equal(t, "https://public/api/v1", conn.BaseURL())
	assert.Equal(t, "http://backend:8081/api/v1", conn.Setup().BaseURL())
	assert.Same(t, conn.Setup(), conn.Setup().Setup())

	conn, err = NewConnection(&ApiConnectionDetails{Url: "https://public/api/v1"})
	require.NoError(t, err)
	assert.Same(t, conn, conn.Setup())
}

func TestSavingsTransactions_DepositAsync(t *testing.T) {
	var body map[string]interface{}
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fineract-provider/api/v1/savingsaccounts/9/transactions/async", r.URL.Path)
		assert.Equal(t, "deposit", r.URL.Query().Get("command"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"correlationId": "5f0c1e4e-8a51-4d43-9d1f-1c2f9e0b8e11"}`))
	})
	req, err := payload.Transaction(decimal.NewFromInt(50), testDate)
	require.NoError(t, err)

	correlationID, err := NewSavingsTransactions(conn).DepositAsync(context.Background(), 9, req.WithPaymentType(1))
	require.NoError(t, err)
	assert.Equal(t, "5f0c1e4e-8a51-4d43-9d1f-1c2f9e0b8e11", correlationID)
	assert.Equal(t, float64(1), body["paymentTypeId"])
}

func TestSavingsTransactions_WithdrawAsyncWithoutCorrelationID(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "withdrawal", r.URL.Query().Get("command"))
		_, _ = w.Write([]byte(`{"resourceId": 3}`))
	})
	req, err := payload.Transaction(decimal.NewFromInt(50), testDate)
	require.NoError(t, err)

	correlationID, err := NewSavingsTransactions(conn).WithdrawAsync(context.Background(), 9, req)
	assert.Empty(t, correlationID)
	assert.ErrorContains(t, err, "without a correlation id")
}

func TestTransactions_Status(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/fineract-provider/api/v1/transactions/status/abc-123", r.URL.Path)
		_, _ = w.Write([]byte(`{"complete": true}`))
	})

	status, err := NewTransactions(conn).Status(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.True(t, status.Complete)
}

func TestLists_PlainArrays(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/fineract-provider/api/v1/glaccounts":
			_, _ = w.Write([]byte(`[{"id":1,"name":"S_A_SavingsRef_ABCDE","glCode":"S_A_SavingsRef_ABCDE"}]`))
		case "/fineract-provider/api/v1/savingsproducts":
			_, _ = w.Write([]byte(`[{"id":2,"name":"Saving Prod_1","shortName":"ABCD"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	accounts, err := NewGLAccounts(conn).List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "S_A_SavingsRef_ABCDE", accounts[0].GLCode)

	products, err := NewSavingsProducts(conn).List(ctx)
	require.NoError(t, err)
	product, ok := Find(products, ByName[SavingsProduct]("Saving Prod_1"))
	require.True(t, ok)
	assert.Equal(t, "ABCD", product.ShortName)
}

func TestGets_ByID(t *testing.T) {
	conn := testConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/fineract-provider/api/v1/clients/3":
			_, _ = w.Write([]byte(`{"id":3,"displayName":"John Doe","active":true}`))
		case "/fineract-provider/api/v1/savingsaccounts/4":
			_, _ = w.Write([]byte(`{"id":4,"clientId":3,"status":{"id":300,"active":true},"summary":{"accountBalance":12.5}}`))
		case "/fineract-provider/api/v1/loans/5":
			_, _ = w.Write([]byte(`{"id":5,"clientId":3,"status":{"id":200,"approved":true}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	client, err := NewClients(conn).Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", client.DisplayName)
	assert.True(t, client.Active)

	account, err := NewSavingsAccounts(conn).Get(ctx, 4)
	require.NoError(t, err)
	assert.True(t, account.Status.Active)
	require.NotNil(t, account.Summary)
	assert.True(t, decimal.RequireFromString("12.5").Equal(account.Summary.AccountBalance))

	loan, err := NewLoans(conn).Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), loan.ClientID)
	assert.True(t, loan.Status.Approved)

	_, err = NewLoans(conn).Get(ctx, 6)
	assert.Equal(t, http.StatusNotFound, ledgererrors.StatusCodeFromError(err))
}
