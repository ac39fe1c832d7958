package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Violation describes one failed constraint on one field.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value any    `json:"value,omitempty"`
}

// ValidationError aggregates every constraint violation found while
// parsing a single record. It is always recoverable by the caller:
// re-validating identical input yields the identical error.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Rule
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// violations collects field violations during parsing.
type violations struct {
	list []Violation
}

func (v *violations) add(field, rule string, value any) {
	v.list = append(v.list, Violation{Field: field, Rule: rule, Value: value})
}

// missing records a required-field violation unless the field is
// already flagged (a type mismatch leaves the field unset; reporting it
// as also missing would double-count one defect).
func (v *violations) missing(field string) {
	if v.hasField(field) {
		return
	}
	v.add(field, "required field is missing", nil)
}

func (v *violations) hasField(field string) bool {
	for _, viol := range v.list {
		if viol.Field == field {
			return true
		}
	}
	return false
}

// nested folds the violations of a nested record parse into this
// collector, prefixing each field with the nested field path. Non-validation
// errors are reported as a single violation on the prefix itself.
func (v *violations) nested(prefix string, err error) {
	if err == nil {
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, viol := range ve.Violations {
			field := prefix
			if viol.Field != "" {
				field = prefix + "." + viol.Field
			}
			v.list = append(v.list, Violation{Field: field, Rule: viol.Rule, Value: viol.Value})
		}
		return
	}
	v.add(prefix, err.Error(), nil)
}

func (v *violations) err() error {
	if len(v.list) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.list}
}

// unmarshalWire decodes raw JSON into a wire mirror struct, one field
// at a time so every type mismatch becomes its own violation instead of
// aborting the decode at the first bad field. Mismatched fields stay
// unset, leaving the caller's constraint checks to run on the rest.
// A non-object payload is rejected outright; malformed JSON surfaces as
// a plain decode error, distinct from validation failure.
func unmarshalWire(data []byte, dst any, v *violations) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Violations: []Violation{{
				Field: "(root)",
				Rule:  fmt.Sprintf("invalid type: expected object, got %s", typeErr.Value),
			}}}
		}
		return fmt.Errorf("decode json: %w", err)
	}

	sv := reflect.ValueOf(dst).Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		name := wireFieldName(st.Field(i))
		if name == "" {
			continue
		}
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, sv.Field(i).Addr().Interface()); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				v.add(name, fmt.Sprintf("invalid type: expected %s, got %s", typeErr.Type, typeErr.Value), nil)
				continue
			}
			return fmt.Errorf("decode json field %s: %w", name, err)
		}
	}
	return nil
}

func wireFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
