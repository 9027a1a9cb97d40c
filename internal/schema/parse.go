package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// FieldErrors maps a field name to a human readable problem.
type FieldErrors map[string]string

// Add records msg for field unless an earlier problem is already recorded.
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Error lists the fields in a stable order.
func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for n := range e {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+e[n])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Parse coerces raw form values into typed attributes. Values for names the
// kind does not declare are ignored. The returned errors are nil when every
// field is valid.
func (k *Kind) Parse(values map[string]string) (map[string]any, FieldErrors) {
	return k.parse(values, k.Fields)
}

// Validate checks only the named fields; used to guard a single wizard step.
func (k *Kind) Validate(values map[string]string, names ...string) FieldErrors {
	subset := make([]Field, 0, len(names))
	for _, n := range names {
		if f, ok := k.byName[n]; ok {
			subset = append(subset, *f)
		}
	}
	_, errs := k.parse(values, subset)
	return errs
}

func (k *Kind) parse(values map[string]string, fields []Field) (map[string]any, FieldErrors) {
	attrs := make(map[string]any, len(fields))
	errs := FieldErrors{}

	for i := range fields {
		f := &fields[i]
		raw := strings.TrimSpace(values[f.Name])
		if raw == "" {
			raw = f.Default
		}
		if raw == "" {
			if f.Required {
				errs.Add(f.Name, f.Label+" is required")
			}
			continue
		}

		v, msg := f.coerce(raw)
		if msg != "" {
			errs.Add(f.Name, msg)
			continue
		}
		attrs[f.Name] = v
	}

	if len(errs) == 0 {
		return attrs, nil
	}
	return attrs, errs
}

func (f *Field) coerce(raw string) (any, string) {
	switch f.Type {
	case TypeString, TypeText:
		if f.MaxLength > 0 && utf8.RuneCountInString(raw) > f.MaxLength {
			return nil, fmt.Sprintf("%s cannot be more than %d characters", f.Label, f.MaxLength)
		}
		if f.Format == "email" && !emailPattern.MatchString(raw) {
			return nil, "Please enter a valid email address"
		}
		return raw, ""

	case TypeEnum:
		if !slices.Contains(f.Options, raw) {
			return nil, fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", "))
		}
		return raw, ""

	case TypeNumber, TypeInteger:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, f.Label + " must be a number"
		}
		if f.Type == TypeInteger && n != math.Trunc(n) {
			return nil, f.Label + " must be a whole number"
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Sprintf("%s cannot be less than %s", f.Label, formatBound(*f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Sprintf("%s cannot be more than %s", f.Label, formatBound(*f.Max))
		}
		if f.Type == TypeInteger {
			return int64(n), ""
		}
		return n, ""

	case TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, f.Label + " must be true or false"
		}
		return b, ""

	case TypeList:
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, f.Label + " must be a JSON array of strings"
		}
		out := make([]string, 0, len(list))
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
				return nil, fmt.Sprintf("%s contains an unknown value %q", f.Label, s)
			}
			out = append(out, s)
		}
		if len(out) < f.MinItems {
			return nil, minItemsMessage(f)
		}
		return out, ""

	case TypeObjects:
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, f.Label + " must be a JSON array of objects"
		}
		if len(list) < f.MinItems {
			return nil, minItemsMessage(f)
		}
		if list == nil {
			list = []map[string]any{}
		}
		return list, ""
	}
	return nil, "unsupported field type"
}

func minItemsMessage(f *Field) string {
	if f.MinItems == 1 {
		return fmt.Sprintf("At least one %s value is required", strings.ToLower(f.Label))
	}
	return fmt.Sprintf("%s needs at least %d values", f.Label, f.MinItems)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
