package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports JSON field names and knows the
// custom tags used by the domain types.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("image_mime", validateImageMIME)

	return v
}

func validateImageMIME(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), "image/")
}

// Fields flattens validation errors into "field: tag" strings.
func Fields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Namespace()+": "+fe.Tag())
	}
	return out
}
