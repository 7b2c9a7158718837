package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// String flattens violations to "field: reason" pairs for envelope messages.
func (v Violations) String() string {
	parts := make([]string, 0, len(v))
	for field, reason := range v {
		parts = append(parts, field+": "+reason)
	}
	return strings.Join(parts, "; ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func PositiveID(field string, val uint, v Violations) {
	if val == 0 {
		v[field] = "required"
	}
}
