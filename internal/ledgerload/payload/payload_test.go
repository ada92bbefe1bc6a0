package payload

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "01 March 2024"

func jsonKeys(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func assertHasKeys(t *testing.T, v interface{}, keys ...string) {
	t.Helper()
	got := jsonKeys(t, v)
	for _, k := range keys {
		assert.Contains(t, got, k)
	}
}

func validMapping() CashAccountingMapping {
	return CashAccountingMapping{
		SavingsReferenceAccountID:    1,
		OverdraftPortfolioControlID:  2,
		SavingsControlAccountID:      3,
		TransfersInSuspenseAccountID: 4,
		InterestOnSavingsAccountID:   5,
		WriteOffAccountID:            6,
		IncomeFromFeeAccountID:       7,
		IncomeFromPenaltyAccountID:   8,
		IncomeFromInterestID:         9,
	}
}

func TestBuilders_RequiredKeys(t *testing.T) {
	tests := map[string]struct {
		build func() (interface{}, error)
		keys  []string
	}{
		"client": {
			build: func() (interface{}, error) { return Client("Doe", "786YYH7", testDate) },
			keys: []string{
				"officeId", "firstname", "lastname", "externalId", "legalFormId", "active",
				"activationDate", "submittedOnDate", "locale", "dateFormat",
			},
		},
		"gl account": {
			build: func() (interface{}, error) { return GLAccount("S_A_SavingsRef_ABCDE", GLAccountTypeAsset, "") },
			keys:  []string{"name", "type", "glCode", "description", "manualEntriesAllowed", "usage"},
		},
		"savings product": {
			build: func() (interface{}, error) { return SavingsProduct("Saving Prod_X", "ABCD") },
			keys: []string{
				"currencyCode", "digitsAfterDecimal", "interestCompoundingPeriodType", "interestPostingPeriodType",
				"interestCalculationType", "interestCalculationDaysInYearType", "accountingRule", "name",
				"shortName", "inMultiplesOf", "nominalAnnualInterestRate", "locale", "charges",
			},
		},
		"cash savings product": {
			build: func() (interface{}, error) { return CashSavingsProduct("Saving Prod_X", "ABCD", validMapping()) },
			keys: []string{
				"accountingRule", "name", "shortName", "savingsReferenceAccountId", "overdraftPortfolioControlId",
				"savingsControlAccountId", "transfersInSuspenseAccountId", "interestOnSavingsAccountId",
				"writeOffAccountId", "incomeFromFeeAccountId", "incomeFromPenaltyAccountId", "incomeFromInterestId",
			},
		},
		"savings account": {
			build: func() (interface{}, error) { return SavingsAccount(2, 3, "SAVING_X", testDate) },
			keys: []string{
				"productId", "clientId", "externalId", "submittedOnDate", "monthDayFormat", "locale", "dateFormat",
			},
		},
		"approve savings": {
			build: func() (interface{}, error) { return ApproveSavings(testDate) },
			keys:  []string{"approvedOnDate", "locale", "dateFormat"},
		},
		"activate savings": {
			build: func() (interface{}, error) { return ActivateSavings(testDate) },
			keys:  []string{"activatedOnDate", "locale", "dateFormat"},
		},
		"transaction": {
			build: func() (interface{}, error) { return Transaction(decimal.NewFromInt(50), testDate) },
			keys:  []string{"transactionDate", "transactionAmount", "note", "locale", "dateFormat"},
		},
		"loan product": {
			build: func() (interface{}, error) { return LoanProduct("Loan Prod_X", "LPX") },
			keys: []string{
				"name", "shortName", "currencyCode", "principal", "numberOfRepayments", "repaymentEvery",
				"transactionProcessingStrategyCode", "accountingRule", "locale", "dateFormat",
			},
		},
		"loan application": {
			build: func() (interface{}, error) { return LoanApplication(4, 5, "LOAN_X", testDate) },
			keys: []string{
				"clientId", "productId", "principal", "loanTermFrequency", "loanType", "numberOfRepayments",
				"expectedDisbursementDate", "submittedOnDate", "externalId", "locale", "dateFormat",
			},
		},
		"approve loan": {
			build: func() (interface{}, error) { return ApproveLoan(testDate) },
			keys:  []string{"approvedOnDate", "expectedDisbursementDate", "locale", "dateFormat"},
		},
		"disburse loan": {
			build: func() (interface{}, error) { return DisburseLoan(DefaultPrincipal(), testDate) },
			keys:  []string{"actualDisbursementDate", "transactionAmount", "locale", "dateFormat"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := tc.build()
			require.NoError(t, err)
			assertHasKeys(t, p, tc.keys...)
		})
	}
}

func TestGLAccount_GeneratesCode(t *testing.T) {
	req, err := GLAccount("name", GLAccountTypeIncome, "")
	require.NoError(t, err)
	assert.Len(t, req.GLCode, 10)

	req, err = GLAccount("name", GLAccountTypeIncome, "FIXED")
	require.NoError(t, err)
	assert.Equal(t, "FIXED", req.GLCode)
}

func TestGLAccount_InvalidType(t *testing.T) {
	_, err := GLAccount("name", GLAccountType(9), "CODE")
	assert.Error(t, err)
}

func TestSavingsProduct_OmitsMappingWithoutCashAccounting(t *testing.T) {
	req, err := SavingsProduct("Saving Prod_X", "ABCD")
	require.NoError(t, err)
	keys := jsonKeys(t, req)
	assert.NotContains(t, keys, "savingsReferenceAccountId")
	assert.Equal(t, float64(AccountingRuleNone), keys["accountingRule"])
}

func TestCashSavingsProduct_RejectsIncompleteMapping(t *testing.T) {
	mapping := validMapping()
	mapping.WriteOffAccountID = 0
	_, err := CashSavingsProduct("Saving Prod_X", "ABCD", mapping)
	assert.Error(t, err)
}

func TestSavingsProduct_RejectsLongShortName(t *testing.T) {
	_, err := SavingsProduct("Saving Prod_X", "ABCDE")
	assert.Error(t, err)
}

func TestClient_RequiresLastName(t *testing.T) {
	_, err := Client("", "code", testDate)
	assert.Error(t, err)
}

func TestTransaction(t *testing.T) {
	first, err := Transaction(decimal.RequireFromString("50.25"), testDate)
	require.NoError(t, err)
	second, err := Transaction(decimal.RequireFromString("50.25"), testDate)
	require.NoError(t, err)

	_, err = uuid.Parse(first.Note)
	assert.NoError(t, err)
	assert.NotEqual(t, first.Note, second.Note)
	assert.Equal(t, "50.25", jsonKeys(t, first)["transactionAmount"])
	assert.NotContains(t, jsonKeys(t, first), "paymentTypeId")
	assert.Contains(t, jsonKeys(t, first.WithPaymentType(1)), "paymentTypeId")
}

func TestTransaction_RejectsNonPositiveAmount(t *testing.T) {
	_, err := Transaction(decimal.Zero, testDate)
	assert.Error(t, err)
	_, err = Transaction(decimal.NewFromInt(-5), testDate)
	assert.Error(t, err)
}

func TestDepositTransactionSearch(t *testing.T) {
	filters, err := DepositTransactionSearch("42")
	require.NoError(t, err)
	require.Len(t, filters, 3)
	assert.Equal(t, SearchFilter{FilterSelection: FilterAccountOwnerID, FilterElement: ElementEquals, Value: "42"}, filters[1])
	assert.Equal(t, []int{TransactionTypeDeposit, TransactionTypeWithdrawal}, filters[2].Values)
}

func TestDepositTransactionSearch_RequiresClient(t *testing.T) {
	_, err := DepositTransactionSearch("")
	assert.Error(t, err)
}

func TestClientSearch(t *testing.T) {
	filters, err := ClientSearch(ClientSearchCriteria{FirstName: "John", MobileNumber: "0712345678"})
	require.NoError(t, err)
	assert.Equal(t, []SearchFilter{
		{FilterSelection: FilterFirstName, FilterElement: ElementEquals, Value: "John"},
		{FilterSelection: FilterMobileNumber, FilterElement: ElementEquals, Value: "0712345678"},
	}, filters)

	_, err = ClientSearch(ClientSearchCriteria{})
	assert.Error(t, err)
}
