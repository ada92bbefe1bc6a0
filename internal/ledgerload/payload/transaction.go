package payload

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionRequest struct {
	TransactionDate   string          `json:"transactionDate" validate:"required"`
	TransactionAmount decimal.Decimal `json:"transactionAmount" validate:"gt=0"`
	// Note carries a fresh UUID per request so that two otherwise identical transactions are
	// never mistaken for one another.
	Note          string `json:"note" validate:"required"`
	PaymentTypeID int64  `json:"paymentTypeId,omitempty"`
	DateConventions
}

// Transaction builds a deposit or withdrawal body; the same shape serves both commands.
func Transaction(amount decimal.Decimal, date string) (TransactionRequest, error) {
	req := TransactionRequest{
		TransactionDate:   date,
		TransactionAmount: amount,
		Note:              uuid.NewString(),
		DateConventions:   defaultDateConventions(),
	}
	return req, Validate("transaction", req)
}

// WithPaymentType returns a copy of t bound to the given payment type.
func (t TransactionRequest) WithPaymentType(paymentTypeID int64) TransactionRequest {
	t.PaymentTypeID = paymentTypeID
	return t
}
