package table

import (
	"strconv"
	"strings"
)

// InferType determines the column type of a set of values.
//
// Nil values are ignored. A mix of int64 and float64 yields TypeFloat; any
// other mix yields TypeString.
func InferType(values []interface{}) Type {
	typ := TypeNull
	for _, v := range values {
		var t Type
		switch v.(type) {
		case nil:
			continue
		case string:
			t = TypeString
		case int64:
			t = TypeInt
		case float64:
			t = TypeFloat
		case bool:
			t = TypeBool
		default:
			return TypeString
		}

		switch {
		case typ == TypeNull:
			typ = t
		case typ == t:
		case (typ == TypeInt && t == TypeFloat) || (typ == TypeFloat && t == TypeInt):
			typ = TypeFloat
		default:
			return TypeString
		}
	}
	return typ
}

// ParseColumn converts raw text cells into a typed column.
//
// The narrowest type that accepts every non-empty cell wins, in the order
// int, float, bool, string. Empty cells become null.
func ParseColumn(name string, raw []string) *Column {
	typ := detectTextType(raw)
	values := make([]interface{}, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		switch typ {
		case TypeInt:
			n, _ := strconv.ParseInt(s, 10, 64)
			values[i] = n
		case TypeFloat:
			f, _ := strconv.ParseFloat(s, 64)
			values[i] = f
		case TypeBool:
			values[i] = parseBoolText(s)
		default:
			values[i] = s
		}
	}
	return &Column{Name: name, Type: typ, Values: values}
}

func detectTextType(raw []string) Type {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, s := range raw {
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat && !isInt {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if !isBoolText(s) {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return TypeString
		}
	}
	switch {
	case !seen:
		return TypeNull
	case isInt:
		return TypeInt
	case isFloat:
		return TypeFloat
	case isBool:
		return TypeBool
	default:
		return TypeString
	}
}

func isBoolText(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

func parseBoolText(s string) bool {
	return strings.ToLower(s) == "true"
}

// Strings builds a string column
func Strings(name string, values ...string) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{Name: name, Type: TypeString, Values: cells}
}

// Ints builds an int column
func Ints(name string, values ...int64) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{Name: name, Type: TypeInt, Values: cells}
}

// Floats builds a float column
func Floats(name string, values ...float64) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{Name: name, Type: TypeFloat, Values: cells}
}

// Bools builds a bool column
func Bools(name string, values ...bool) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{Name: name, Type: TypeBool, Values: cells}
}
