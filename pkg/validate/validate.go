// Package validate runs Laravel-style rules declared in `validate` struct
// tags and returns a field → message map keyed by the JSON field name.
//
// Rules (comma-separated):
//
//	required      field must be present and not blank
//	sometimes     skip every rule when a pointer field is nil (absent)
//	nullable      skip every rule when the field is nil or blank
//	email         valid email address
//	alpha_dash    letters, digits, hyphens, underscores
//	numeric       any number
//	integer       whole number
//	min=N         string: min length | number: min value
//	max=N         string: max length | number: max value
//	gte=N, lte=N  numeric bounds
//	between=a,b   number or string length between a and b (inclusive)
//	in=a,b,c      value must be one of the listed items
//	confirmed     value must equal the sibling field <field>_confirmation
//
// Pointer fields are dereferenced before rules run. Types with an
// InexactFloat64 method (shopspring/decimal) are treated as numbers.
//
//	type Input struct {
//	    Name  string           `json:"name"  validate:"required,max=255"`
//	    Price *decimal.Decimal `json:"price" validate:"sometimes,gte=0"`
//	    Role  string           `json:"role"  validate:"required,in=admin,seller"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Struct validates every exported field of v carrying a `validate` tag.
// The first failing rule per field wins.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := JSONName(field)
		rules := splitRules(tag)
		value := rv.Field(i)

		present := true
		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				present = false
			} else {
				value = value.Elem()
			}
		}

		if !present && hasRule(rules, "sometimes") {
			continue
		}
		if hasRule(rules, "nullable") && (!present || isBlank(value)) {
			continue
		}

		for _, rule := range rules {
			if rule == "sometimes" || rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, present, value, rv); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, present bool, v, parent reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	if key == "required" {
		if !present || isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}
	if !present {
		return ""
	}

	raw := stringOf(v)
	numeric := isNumber(v)

	switch key {
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	case "min":
		n := parseFloat(param)
		if numeric {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(length(v, raw)) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := parseFloat(param)
		if numeric {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(length(v, raw)) > n {
			return fmt.Sprintf("The %s must not be greater than %s characters.", field, param)
		}
	case "gte":
		if toFloat(v) < parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lte":
		if toFloat(v) > parseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		l, h := parseFloat(lo), parseFloat(hi)
		if numeric {
			if f := toFloat(v); f < l || f > h {
				return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
			}
		} else if n := float64(length(v, raw)); n < l || n > h {
			return fmt.Sprintf("The %s must be between %s and %s characters.", field, lo, hi)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)

	case "confirmed":
		other, ok := sibling(parent, field+"_confirmation")
		if !ok || stringOf(other) != raw {
			return fmt.Sprintf("The %s confirmation does not match.", field)
		}
	}

	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type floater interface{ InexactFloat64() float64 }

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	_, ok := v.Interface().(floater)
	return ok
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	if f, ok := v.Interface().(floater); ok {
		return f.InexactFloat64()
	}
	return parseFloat(stringOf(v))
}

func stringOf(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// length counts runes for strings and elements for collections.
func length(v reflect.Value, raw string) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	}
	return len([]rune(raw))
}

func isBlank(v reflect.Value) bool {
	return v.Kind() == reflect.String && strings.TrimSpace(v.String()) == ""
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// JSONName returns the name a field has in JSON and in error maps.
func JSONName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

func sibling(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if JSONName(rt.Field(i)) == name {
			v := parent.Field(i)
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					return reflect.Value{}, false
				}
				v = v.Elem()
			}
			return v, true
		}
	}
	return reflect.Value{}, false
}

// splitRules splits a tag on commas, keeping the values of in= and
// between= together: "required,in=a,b,max=3" → [required in=a,b max=3].
func splitRules(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n := len(rules); n > 0 && !isRuleName(part) && takesList(rules[n-1]) {
			rules[n-1] += "," + part
			continue
		}
		rules = append(rules, part)
	}
	return rules
}

var ruleNames = map[string]bool{
	"required": true, "sometimes": true, "nullable": true, "email": true,
	"alpha_dash": true, "numeric": true, "integer": true, "min": true,
	"max": true, "gte": true, "lte": true, "between": true, "in": true,
	"confirmed": true,
}

func isRuleName(s string) bool {
	key, _, hasParam := strings.Cut(s, "=")
	if !ruleNames[key] {
		return false
	}
	// A bare "min" with no parameter is a list value, not a rule.
	switch key {
	case "min", "max", "gte", "lte", "between", "in":
		return hasParam
	}
	return !hasParam
}

func takesList(rule string) bool {
	return strings.HasPrefix(rule, "in=") || strings.HasPrefix(rule, "between=")
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
