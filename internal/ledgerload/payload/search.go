package payload

import (
	"github.com/pkg/errors"
)

// Filter selections and elements understood by the search endpoints.
const (
	FilterTransactionAmount = "TRANSACTION_AMOUNT"
	FilterAccountOwnerID    = "ACCOUNT_OWNER_ID"
	FilterTransactionType   = "TRANSACTION_TYPE"
	FilterFirstName         = "FIRST_NAME"
	FilterLastName          = "LAST_NAME"
	FilterDateOfBirth       = "DATE_OF_BIRTH"
	FilterMobileNumber      = "MOBILE_NUMBER"

	ElementEquals   = "EQUALS"
	ElementNotEmpty = "NOT_EMPTY"
	ElementIn       = "IN"
)

// Savings transaction type codes.
const (
	TransactionTypeDeposit    = 1
	TransactionTypeWithdrawal = 2
)

type SearchFilter struct {
	FilterSelection string `json:"filterSelection" validate:"required"`
	FilterElement   string `json:"filterElement" validate:"required,oneof=EQUALS NOT_EMPTY IN"`
	Value           string `json:"value,omitempty" validate:"required_if=FilterElement EQUALS"`
	Values          []int  `json:"values,omitempty" validate:"required_if=FilterElement IN"`
}

// DepositTransactionSearch finds every non-empty deposit or withdrawal owned by clientID.
func DepositTransactionSearch(clientID string) ([]SearchFilter, error) {
	filters := []SearchFilter{
		{FilterSelection: FilterTransactionAmount, FilterElement: ElementNotEmpty},
		{FilterSelection: FilterAccountOwnerID, FilterElement: ElementEquals, Value: clientID},
		{
			FilterSelection: FilterTransactionType,
			FilterElement:   ElementIn,
			Values:          []int{TransactionTypeDeposit, TransactionTypeWithdrawal},
		},
	}
	return filters, validateFilters(filters)
}

// ClientSearchCriteria are matched exactly; empty criteria are left out of the search.
type ClientSearchCriteria struct {
	FirstName    string `mapstructure:"firstName" yaml:"firstName"`
	LastName     string `mapstructure:"lastName" yaml:"lastName"`
	DateOfBirth  string `mapstructure:"dateOfBirth" yaml:"dateOfBirth"`
	MobileNumber string `mapstructure:"mobileNumber" yaml:"mobileNumber"`
}

func ClientSearch(criteria ClientSearchCriteria) ([]SearchFilter, error) {
	var filters []SearchFilter
	add := func(selection, value string) {
		if value != "" {
			filters = append(filters, SearchFilter{FilterSelection: selection, FilterElement: ElementEquals, Value: value})
		}
	}
	add(FilterFirstName, criteria.FirstName)
	add(FilterLastName, criteria.LastName)
	add(FilterDateOfBirth, criteria.DateOfBirth)
	add(FilterMobileNumber, criteria.MobileNumber)
	if len(filters) == 0 {
		return nil, errors.New("invalid client search payload: at least one criterion is required")
	}
	return filters, validateFilters(filters)
}

func validateFilters(filters []SearchFilter) error {
	for i := range filters {
		if err := Validate("search filter", filters[i]); err != nil {
			return err
		}
	}
	return nil
}
