package payload

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	Locale         = "en"
	DateFormat     = "dd MMMM yyyy"
	MonthDayFormat = "dd MMM"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks p against its struct tags.
func Validate(kind string, p interface{}) error {
	if err := validate.Struct(p); err != nil {
		return errors.Wrapf(err, "invalid %s payload", kind)
	}
	return nil
}

// DateConventions carries the formatting hints the API needs to parse dates and numbers.
type DateConventions struct {
	Locale     string `json:"locale" validate:"required"`
	DateFormat string `json:"dateFormat" validate:"required"`
}

func defaultDateConventions() DateConventions {
	return DateConventions{Locale: Locale, DateFormat: DateFormat}
}
