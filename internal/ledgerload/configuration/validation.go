package configuration

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/ledgerload/ledgerload/internal/common/util"
)

var validate = validator.New()

// Validate checks struct tags first, then the constraints that span fields. All problems found
// are returned together.
func (c *TestConfig) Validate() error {
	var result *multierror.Error
	if err := validate.Struct(c); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Load.WaitTime.Min > c.Load.WaitTime.Max {
		result = multierror.Append(result, fmt.Errorf(
			"load.waitTime.min (%v) must not exceed load.waitTime.max (%v)", c.Load.WaitTime.Min, c.Load.WaitTime.Max))
	}
	if !c.Workflow.TransactionAmount.IsPositive() {
		result = multierror.Append(result, fmt.Errorf(
			"workflow.transactionAmount must be positive, got %s", c.Workflow.TransactionAmount))
	}
	if util.ContainsAny(util.StringListToSet(c.Load.Tags), c.Load.ExcludeTags) {
		result = multierror.Append(result, fmt.Errorf(
			"load.tags %v and load.excludeTags %v must not overlap", c.Load.Tags, c.Load.ExcludeTags))
	}
	if err := c.Logging.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
