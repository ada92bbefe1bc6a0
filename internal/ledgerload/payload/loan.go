package payload

import (
	"github.com/shopspring/decimal"
)

const (
	loanTermMonths                 = 12
	frequencyMonths                = 2
	amortizationEqualInstallments  = 1
	interestDecliningBalance       = 0
	interestCalculationSameAsRepay = 1
	daysInMonthActual              = 1
	daysInYearActual               = 1
	standardStrategy               = "mifos-standard-strategy"
	individualLoan                 = "individual"
)

var defaultPrincipal = decimal.NewFromInt(1000)

type LoanProductRequest struct {
	Name                              string          `json:"name" validate:"required"`
	ShortName                         string          `json:"shortName" validate:"required,max=4"`
	CurrencyCode                      string          `json:"currencyCode" validate:"required,len=3"`
	DigitsAfterDecimal                int             `json:"digitsAfterDecimal"`
	InMultiplesOf                     int             `json:"inMultiplesOf"`
	Principal                         decimal.Decimal `json:"principal" validate:"gt=0"`
	NumberOfRepayments                int             `json:"numberOfRepayments" validate:"required"`
	RepaymentEvery                    int             `json:"repaymentEvery" validate:"required"`
	RepaymentFrequencyType            int             `json:"repaymentFrequencyType"`
	InterestRatePerPeriod             float64         `json:"interestRatePerPeriod"`
	InterestRateFrequencyType         int             `json:"interestRateFrequencyType"`
	AmortizationType                  int             `json:"amortizationType"`
	InterestType                      int             `json:"interestType"`
	InterestCalculationPeriodType     int             `json:"interestCalculationPeriodType"`
	TransactionProcessingStrategyCode string          `json:"transactionProcessingStrategyCode" validate:"required"`
	DaysInMonthType                   int             `json:"daysInMonthType"`
	DaysInYearType                    int             `json:"daysInYearType"`
	IsInterestRecalculationEnabled    bool            `json:"isInterestRecalculationEnabled"`
	AccountingRule                    AccountingRule  `json:"accountingRule" validate:"required"`
	DateConventions
}

// LoanProduct builds a twelve-month, monthly-repayment USD loan product without accounting.
func LoanProduct(name, code string) (LoanProductRequest, error) {
	req := LoanProductRequest{
		Name:                              name,
		ShortName:                         code,
		CurrencyCode:                      defaultCurrencyCode,
		DigitsAfterDecimal:                defaultDigitsAfterDecimal,
		InMultiplesOf:                     1,
		Principal:                         defaultPrincipal,
		NumberOfRepayments:                loanTermMonths,
		RepaymentEvery:                    1,
		RepaymentFrequencyType:            frequencyMonths,
		InterestRatePerPeriod:             1,
		InterestRateFrequencyType:         frequencyMonths,
		AmortizationType:                  amortizationEqualInstallments,
		InterestType:                      interestDecliningBalance,
		InterestCalculationPeriodType:     interestCalculationSameAsRepay,
		TransactionProcessingStrategyCode: standardStrategy,
		DaysInMonthType:                   daysInMonthActual,
		DaysInYearType:                    daysInYearActual,
		AccountingRule:                    AccountingRuleNone,
		DateConventions:                   defaultDateConventions(),
	}
	return req, Validate("loan product", req)
}

type LoanApplicationRequest struct {
	ClientID                          int64           `json:"clientId" validate:"required"`
	ProductID                         int64           `json:"productId" validate:"required"`
	Principal                         decimal.Decimal `json:"principal" validate:"gt=0"`
	LoanTermFrequency                 int             `json:"loanTermFrequency" validate:"required"`
	LoanTermFrequencyType             int             `json:"loanTermFrequencyType"`
	LoanType                          string          `json:"loanType" validate:"required"`
	NumberOfRepayments                int             `json:"numberOfRepayments" validate:"required"`
	RepaymentEvery                    int             `json:"repaymentEvery" validate:"required"`
	RepaymentFrequencyType            int             `json:"repaymentFrequencyType"`
	InterestRatePerPeriod             float64         `json:"interestRatePerPeriod"`
	AmortizationType                  int             `json:"amortizationType"`
	InterestType                      int             `json:"interestType"`
	InterestCalculationPeriodType     int             `json:"interestCalculationPeriodType"`
	TransactionProcessingStrategyCode string          `json:"transactionProcessingStrategyCode" validate:"required"`
	ExpectedDisbursementDate          string          `json:"expectedDisbursementDate" validate:"required"`
	SubmittedOnDate                   string          `json:"submittedOnDate" validate:"required"`
	ExternalID                        string          `json:"externalId" validate:"required"`
	DateConventions
}

// LoanApplication builds an individual loan application matching the terms of LoanProduct.
func LoanApplication(productID, clientID int64, externalID, date string) (LoanApplicationRequest, error) {
	req := LoanApplicationRequest{
		ClientID:                          clientID,
		ProductID:                         productID,
		Principal:                         defaultPrincipal,
		LoanTermFrequency:                 loanTermMonths,
		LoanTermFrequencyType:             frequencyMonths,
		LoanType:                          individualLoan,
		NumberOfRepayments:                loanTermMonths,
		RepaymentEvery:                    1,
		RepaymentFrequencyType:            frequencyMonths,
		InterestRatePerPeriod:             1,
		AmortizationType:                  amortizationEqualInstallments,
		InterestType:                      interestDecliningBalance,
		InterestCalculationPeriodType:     interestCalculationSameAsRepay,
		TransactionProcessingStrategyCode: standardStrategy,
		ExpectedDisbursementDate:          date,
		SubmittedOnDate:                   date,
		ExternalID:                        externalID,
		DateConventions:                   defaultDateConventions(),
	}
	return req, Validate("loan application", req)
}

type ApproveLoanRequest struct {
	ApprovedOnDate           string `json:"approvedOnDate" validate:"required"`
	ExpectedDisbursementDate string `json:"expectedDisbursementDate" validate:"required"`
	DateConventions
}

type DisburseLoanRequest struct {
	ActualDisbursementDate string          `json:"actualDisbursementDate" validate:"required"`
	TransactionAmount      decimal.Decimal `json:"transactionAmount" validate:"gt=0"`
	DateConventions
}

func ApproveLoan(date string) (ApproveLoanRequest, error) {
	req := ApproveLoanRequest{ApprovedOnDate: date, ExpectedDisbursementDate: date, DateConventions: defaultDateConventions()}
	return req, Validate("approve loan", req)
}

// DisburseLoan disburses amount; callers pass the principal the loan was applied for.
func DisburseLoan(amount decimal.Decimal, date string) (DisburseLoanRequest, error) {
	req := DisburseLoanRequest{ActualDisbursementDate: date, TransactionAmount: amount, DateConventions: defaultDateConventions()}
	return req, Validate("disburse loan", req)
}

// DefaultPrincipal is the principal LoanProduct and LoanApplication use.
func DefaultPrincipal() decimal.Decimal {
	return defaultPrincipal
}
