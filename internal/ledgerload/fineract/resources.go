package fineract

import (
	"github.com/shopspring/decimal"
)

// Page is the envelope of paged list and search responses.
type Page[T any] struct {
	TotalFilteredRecords int `json:"totalFilteredRecords"`
	PageItems            []T `json:"pageItems"`
}

type Client struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	ExternalID  string `json:"externalId"`
	Active      bool   `json:"active"`
}

type GLAccount struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	GLCode string `json:"glCode"`
}

type SavingsProduct struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type LoanProduct struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Status is the lifecycle state of an account.
type Status struct {
	ID                          int    `json:"id"`
	Code                        string `json:"code"`
	Value                       string `json:"value"`
	SubmittedAndPendingApproval bool   `json:"submittedAndPendingApproval"`
	Approved                    bool   `json:"approved"`
	Active                      bool   `json:"active"`
}

type AccountSummary struct {
	AccountBalance decimal.Decimal `json:"accountBalance"`
}

type SavingsAccount struct {
	ID         int64           `json:"id"`
	AccountNo  string          `json:"accountNo"`
	ExternalID string          `json:"externalId"`
	ClientID   int64           `json:"clientId"`
	ProductID  int64           `json:"savingsProductId"`
	Status     Status          `json:"status"`
	Summary    *AccountSummary `json:"summary,omitempty"`
}

type Loan struct {
	ID         int64  `json:"id"`
	AccountNo  string `json:"accountNo"`
	ExternalID string `json:"externalId"`
	ClientID   int64  `json:"clientId"`
	ProductID  int64  `json:"loanProductId"`
	Status     Status `json:"status"`
}

type TransactionType struct {
	ID         int    `json:"id"`
	Code       string `json:"code"`
	Deposit    bool   `json:"deposit"`
	Withdrawal bool   `json:"withdrawal"`
}

type PaymentType struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

type PaymentDetail struct {
	PaymentType PaymentType `json:"paymentType"`
}

type SavingsTransaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"accountId"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transactionType"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
	Note            string          `json:"note,omitempty"`
	SubmittedOnDate []int           `json:"submittedOnDate,omitempty"`
	Reversed        bool            `json:"reversed"`
	// PaymentDetail is only present for transactions booked under a payment type.
	PaymentDetail *PaymentDetail `json:"paymentDetailData,omitempty"`
}

// TransactionStatus is the processing state of a command queued through an async endpoint.
type TransactionStatus struct {
	Complete bool `json:"complete"`
}

// Find returns the first item matching predicate. It never fails on absence.
func Find[T any](items []T, predicate func(T) bool) (T, bool) {
	for _, item := range items {
		if predicate(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func ByExternalID[T interface{ externalID() string }](externalID string) func(T) bool {
	return func(item T) bool { return item.externalID() == externalID }
}

func (c Client) externalID() string         { return c.ExternalID }
func (a SavingsAccount) externalID() string { return a.ExternalID }
func (l Loan) externalID() string           { return l.ExternalID }

func ByName[T interface{ name() string }](name string) func(T) bool {
	return func(item T) bool { return item.name() == name }
}

func (p SavingsProduct) name() string { return p.Name }
func (p LoanProduct) name() string    { return p.Name }
func (a GLAccount) name() string      { return a.Name }
