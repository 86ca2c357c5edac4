package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// rowValidator checks loaded rows against the model validate tags; field names are the json names,
// which match the CSV columns
var rowValidator = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRow validates one decoded row and reports the first offending column
func (t *table) checkRow(line int, row any) error {
	err := rowValidator.Struct(row)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return t.rowError(line, fe.Field(), fmt.Errorf("failed %s=%s, got %v", fe.Tag(), fe.Param(), fe.Value()))
	}
	return t.rowError(line, "", err)
}
