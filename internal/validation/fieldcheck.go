package validation

import "reflect"

// CheckField implements the field-equality assertion (C5): it looks up
// fieldName directly on the original parsed JSON value (never on the bound
// dynamic message) and compares it against expected using structural
// equality.
func CheckField(jsonValue any, fieldName string, expected any, haveExpected bool) error {
	if fieldName == "" || !haveExpected {
		return &ErrBadRequest{Reason: "field name and value must be provided for validation"}
	}

	obj, ok := jsonValue.(map[string]any)
	if !ok {
		return &ErrFieldMissing{Field: fieldName}
	}

	actual, present := obj[fieldName]
	if !present {
		return &ErrFieldMissing{Field: fieldName}
	}

	if !jsonDeepEqual(actual, expected) {
		return &ErrFieldValueMismatch{Field: fieldName, Expected: expected, Actual: actual}
	}

	return nil
}

// jsonDeepEqual compares two values decoded from JSON (via
// json.Decoder.UseNumber) for structural equality. json.Number values
// compare by their decimal string form, matching how numerically-identical
// JSON literals ("42" vs "42.0") would differ under Go's encoding/json but
// agree under protobuf/JSON numeric semantics is intentionally NOT assumed
// here: the assertion is a literal JSON-value comparison, not a numeric one.
func jsonDeepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
