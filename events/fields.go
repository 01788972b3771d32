package events

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

type FieldType string

const (
	FIELD_TEXT     FieldType = "text"
	FIELD_NUMBER   FieldType = "number"
	FIELD_EMAIL    FieldType = "email"
	FIELD_TEL      FieldType = "tel"
	FIELD_DATE     FieldType = "date"
	FIELD_SELECT   FieldType = "select"
	FIELD_TEXTAREA FieldType = "textarea"
)

// RegistrationField is an organizer-defined question asked at signup.
type RegistrationField struct {
	Key      string    `json:"key" validate:"required"`
	Label    string    `json:"label" validate:"required"`
	Type     FieldType `json:"type" validate:"required,oneof=text number email tel date select textarea"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty" validate:"required_if=Type select"`
}

var fieldValidator = validation.New()

// Parse converts raw user input to the value stored for the field. Numbers
// that do not parse to a finite value are kept as text so validation can
// reject them.
func (f RegistrationField) Parse(raw string) any {
	raw = strings.TrimSpace(raw)
	if f.Type == FIELD_NUMBER && raw != "" {
		if n, ok := parseFinite(raw); ok {
			return n
		}
	}
	return raw
}

// parseFinite rejects NaN and the infinities, which JSON cannot carry.
func parseFinite(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Check validates a stored value against the field's type and required flag.
func (f RegistrationField) Check(value any) error {
	if isEmpty(value) {
		if f.Required {
			return fmt.Errorf("%s is required", f.Label)
		}
		return nil
	}

	switch f.Type {
	case FIELD_NUMBER:
		switch v := value.(type) {
		case int, int64:
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s must be a number", f.Label)
			}
		case string:
			if _, ok := parseFinite(v); !ok {
				return fmt.Errorf("%s must be a number", f.Label)
			}
		default:
			return fmt.Errorf("%s must be a number", f.Label)
		}
	case FIELD_EMAIL:
		if err := fieldValidator.Var(fmt.Sprint(value), "email"); err != nil {
			return fmt.Errorf("%s must be a valid email address", f.Label)
		}
	case FIELD_DATE:
		if _, err := time.Parse(dateLayout, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("%s must be a date (YYYY-MM-DD)", f.Label)
		}
	case FIELD_SELECT:
		if !slices.Contains(f.Options, fmt.Sprint(value)) {
			return fmt.Errorf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", "))
		}
	}

	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}
