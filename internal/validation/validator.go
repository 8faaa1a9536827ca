package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// decimalPattern accepts plain decimals with up to two fraction digits,
// the format of a price typed into the item form.
var decimalPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// New returns a validator that reports fields by their json (or form) name
// and knows the catalog's custom tags:
//
//	isodate  a YYYY-MM-DD calendar date
//	decimal  a non-negative decimal string with at most two fraction digits
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(fieldName)

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("isodate", isoDate)
	_ = v.RegisterValidation("decimal", decimal)

	return v
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func isoDate(fl validatorv10.FieldLevel) bool {
	_, err := time.Parse(records.DateLayout, fl.Field().String())
	return err == nil
}

func decimal(fl validatorv10.FieldLevel) bool {
	return decimalPattern.MatchString(fl.Field().String())
}
