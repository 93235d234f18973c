package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func resultCode(err error) string {
	if err == nil {
		return fmt.Sprintf("%d", appErrors.CodeSuccess)
	}
	return fmt.Sprintf("%d", appErrors.FromError(err).Code)
}

// invalidPayload converts validator failures into an invalid_parameter error naming the fields.
func invalidPayload(err error) *appErrors.Error {
	msg := appErrors.CodeInvalidParameter.Message()
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(fields, ", "))
	}
	return appErrors.Wrap(err, appErrors.ErrInvalidParameter.Code, appErrors.ErrInvalidParameter.Status, msg)
}

// overFetch trims a page fetched with limit+1 rows and reports whether more rows exist.
func overFetch[T any](rows []T, limit int) ([]T, int) {
	if len(rows) > limit {
		return rows[:limit], 1
	}
	return rows, 0
}
