package payload

import (
	"fmt"

	"github.com/ledgerload/ledgerload/internal/ledgerload/idgen"
)

// GLAccountType is the general-ledger account classification.
type GLAccountType int

const (
	GLAccountTypeAsset     GLAccountType = 1
	GLAccountTypeLiability GLAccountType = 2
	GLAccountTypeEquity    GLAccountType = 3
	GLAccountTypeIncome    GLAccountType = 4
	GLAccountTypeExpense   GLAccountType = 5
)

func (t GLAccountType) String() string {
	switch t {
	case GLAccountTypeAsset:
		return "ASSET"
	case GLAccountTypeLiability:
		return "LIABILITY"
	case GLAccountTypeEquity:
		return "EQUITY"
	case GLAccountTypeIncome:
		return "INCOME"
	case GLAccountTypeExpense:
		return "EXPENSE"
	default:
		return fmt.Sprintf("GLAccountType(%d)", int(t))
	}
}

// glAccountUsageDetail marks an account that can hold journal entries (as opposed to a header).
const glAccountUsageDetail = "1"

const glCodeLength = 10

type GLAccountRequest struct {
	Name                 string        `json:"name" validate:"required"`
	Type                 GLAccountType `json:"type" validate:"min=1,max=5"`
	GLCode               string        `json:"glCode" validate:"required"`
	Description          string        `json:"description"`
	ManualEntriesAllowed bool          `json:"manualEntriesAllowed"`
	Usage                string        `json:"usage" validate:"required"`
}

// GLAccount builds a detail GL account. An empty glCode is replaced by ten random letters.
func GLAccount(name string, accountType GLAccountType, glCode string) (GLAccountRequest, error) {
	if glCode == "" {
		glCode = idgen.RandomString(glCodeLength)
	}
	req := GLAccountRequest{
		Name:                 name,
		Type:                 accountType,
		GLCode:               glCode,
		Description:          "XXX",
		ManualEntriesAllowed: true,
		Usage:                glAccountUsageDetail,
	}
	return req, Validate("gl account", req)
}
