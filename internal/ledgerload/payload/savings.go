package payload

import (
	"encoding/json"
)

// AccountingRule selects how the ledger posts journal entries for a product.
type AccountingRule int

const (
	AccountingRuleNone AccountingRule = 1
	AccountingRuleCash AccountingRule = 2
)

const (
	defaultCurrencyCode       = "USD"
	defaultDigitsAfterDecimal = 2
	compoundingDaily          = 1
	postingMonthly            = 4
	calculationDailyBalance   = 1
	daysInYear365             = 365
	defaultNominalRate        = 0.1
)

// CashAccountingMapping holds the nine GL accounts a cash-accounted savings product posts to.
type CashAccountingMapping struct {
	SavingsReferenceAccountID    int64 `json:"savingsReferenceAccountId" validate:"required"`
	OverdraftPortfolioControlID  int64 `json:"overdraftPortfolioControlId" validate:"required"`
	SavingsControlAccountID      int64 `json:"savingsControlAccountId" validate:"required"`
	TransfersInSuspenseAccountID int64 `json:"transfersInSuspenseAccountId" validate:"required"`
	InterestOnSavingsAccountID   int64 `json:"interestOnSavingsAccountId" validate:"required"`
	WriteOffAccountID            int64 `json:"writeOffAccountId" validate:"required"`
	IncomeFromFeeAccountID       int64 `json:"incomeFromFeeAccountId" validate:"required"`
	IncomeFromPenaltyAccountID   int64 `json:"incomeFromPenaltyAccountId" validate:"required"`
	IncomeFromInterestID         int64 `json:"incomeFromInterestId" validate:"required"`
}

type SavingsProductRequest struct {
	CurrencyCode                       string            `json:"currencyCode" validate:"required,len=3"`
	DigitsAfterDecimal                 int               `json:"digitsAfterDecimal"`
	InterestCompoundingPeriodType      int               `json:"interestCompoundingPeriodType" validate:"required"`
	InterestPostingPeriodType          int               `json:"interestPostingPeriodType" validate:"required"`
	InterestCalculationType            int               `json:"interestCalculationType" validate:"required"`
	InterestCalculationDaysInYearType  int               `json:"interestCalculationDaysInYearType" validate:"required"`
	AccountingRule                     AccountingRule    `json:"accountingRule" validate:"required"`
	Name                               string            `json:"name" validate:"required"`
	ShortName                          string            `json:"shortName" validate:"required,max=4"`
	InMultiplesOf                      int               `json:"inMultiplesOf"`
	NominalAnnualInterestRate          float64           `json:"nominalAnnualInterestRate"`
	PaymentChannelToFundSourceMappings []json.RawMessage `json:"paymentChannelToFundSourceMappings"`
	FeeToIncomeAccountMappings         []json.RawMessage `json:"feeToIncomeAccountMappings"`
	PenaltyToIncomeAccountMappings     []json.RawMessage `json:"penaltyToIncomeAccountMappings"`
	Charges                            []json.RawMessage `json:"charges"`
	Locale                             string            `json:"locale" validate:"required"`
	// Set only for AccountingRuleCash.
	*CashAccountingMapping
}

func baseSavingsProduct(name, code string) SavingsProductRequest {
	return SavingsProductRequest{
		CurrencyCode:                       defaultCurrencyCode,
		DigitsAfterDecimal:                 defaultDigitsAfterDecimal,
		InterestCompoundingPeriodType:      compoundingDaily,
		InterestPostingPeriodType:          postingMonthly,
		InterestCalculationType:            calculationDailyBalance,
		InterestCalculationDaysInYearType:  daysInYear365,
		AccountingRule:                     AccountingRuleNone,
		Name:                               name,
		ShortName:                          code,
		InMultiplesOf:                      1,
		NominalAnnualInterestRate:          defaultNominalRate,
		PaymentChannelToFundSourceMappings: []json.RawMessage{},
		FeeToIncomeAccountMappings:         []json.RawMessage{},
		PenaltyToIncomeAccountMappings:     []json.RawMessage{},
		Charges:                            []json.RawMessage{},
		Locale:                             Locale,
	}
}

// SavingsProduct builds a USD savings product without accounting.
func SavingsProduct(name, code string) (SavingsProductRequest, error) {
	req := baseSavingsProduct(name, code)
	return req, Validate("savings product", req)
}

// CashSavingsProduct builds a cash-accounted savings product posting to the given GL accounts.
func CashSavingsProduct(name, code string, mapping CashAccountingMapping) (SavingsProductRequest, error) {
	req := baseSavingsProduct(name, code)
	req.AccountingRule = AccountingRuleCash
	req.CashAccountingMapping = &mapping
	if err := Validate("cash accounting mapping", mapping); err != nil {
		return req, err
	}
	return req, Validate("savings product", req)
}

type SavingsAccountRequest struct {
	ProductID                         int64             `json:"productId" validate:"required"`
	ClientID                          int64             `json:"clientId" validate:"required"`
	NominalAnnualInterestRate         float64           `json:"nominalAnnualInterestRate"`
	WithdrawalFeeForTransfers         bool              `json:"withdrawalFeeForTransfers"`
	AllowOverdraft                    bool              `json:"allowOverdraft"`
	EnforceMinRequiredBalance         bool              `json:"enforceMinRequiredBalance"`
	WithHoldTax                       bool              `json:"withHoldTax"`
	InterestCompoundingPeriodType     int               `json:"interestCompoundingPeriodType" validate:"required"`
	InterestPostingPeriodType         int               `json:"interestPostingPeriodType" validate:"required"`
	InterestCalculationType           int               `json:"interestCalculationType" validate:"required"`
	InterestCalculationDaysInYearType int               `json:"interestCalculationDaysInYearType" validate:"required"`
	ExternalID                        string            `json:"externalId" validate:"required"`
	SubmittedOnDate                   string            `json:"submittedOnDate" validate:"required"`
	MonthDayFormat                    string            `json:"monthDayFormat" validate:"required"`
	Charges                           []json.RawMessage `json:"charges"`
	DateConventions
}

// SavingsAccount builds an application for a savings account of productID owned by clientID.
// externalID is what the account can be found by if the create response omits its id.
func SavingsAccount(productID, clientID int64, externalID, date string) (SavingsAccountRequest, error) {
	req := SavingsAccountRequest{
		ProductID:                         productID,
		ClientID:                          clientID,
		NominalAnnualInterestRate:         defaultNominalRate,
		InterestCompoundingPeriodType:     compoundingDaily,
		InterestPostingPeriodType:         postingMonthly,
		InterestCalculationType:           calculationDailyBalance,
		InterestCalculationDaysInYearType: daysInYear365,
		ExternalID:                        externalID,
		SubmittedOnDate:                   date,
		MonthDayFormat:                    MonthDayFormat,
		Charges:                           []json.RawMessage{},
		DateConventions:                   defaultDateConventions(),
	}
	return req, Validate("savings account", req)
}

type ApproveSavingsRequest struct {
	ApprovedOnDate string `json:"approvedOnDate" validate:"required"`
	DateConventions
}

type ActivateSavingsRequest struct {
	ActivatedOnDate string `json:"activatedOnDate" validate:"required"`
	DateConventions
}

func ApproveSavings(date string) (ApproveSavingsRequest, error) {
	req := ApproveSavingsRequest{ApprovedOnDate: date, DateConventions: defaultDateConventions()}
	return req, Validate("approve", req)
}

func ActivateSavings(date string) (ActivateSavingsRequest, error) {
	req := ActivateSavingsRequest{ActivatedOnDate: date, DateConventions: defaultDateConventions()}
	return req, Validate("activate", req)
}
