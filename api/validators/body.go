package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/types"
)

const (
	commissionTypeTag  = "commission_type"
	unknownFieldPrefix = "json: unknown field "
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	// empty values are left to "required"
	_ = v.RegisterValidation(commissionTypeTag, func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if strings.TrimSpace(raw) == "" {
			return true
		}
		_, err := enums.ParseCommissionType(raw)
		return err == nil
	})
	return v
}

// DecodeJSONBody decodes a strict JSON body into dest and runs its validate
// tags. Failures carry types.ValidationDetails.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		details := types.ValidationDetails{}
		details.Add(decodeField(err), decodeMessage(err))
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(details)
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := types.ValidationDetails{}
	for _, fieldErr := range errs {
		details.Add(fieldPath(fieldErr), validationMessage(fieldErr))
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// fieldPath drops the root struct name so batch rows read "plans[0].plan_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case commissionTypeTag:
		return "must be percentage, fixed or plan"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

func decodeField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	if rest, found := strings.CutPrefix(err.Error(), unknownFieldPrefix); found {
		return strings.Trim(rest, `"`)
	}
	return "body"
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("must be a %s", typeErr.Type)
	}
	if strings.HasPrefix(err.Error(), unknownFieldPrefix) {
		return "is not accepted"
	}
	return "is not valid JSON"
}
