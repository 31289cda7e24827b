package query

import (
	"fmt"
	"strings"
	"sync"
)

// Function represents a scalar function that can be evaluated
type Function interface {
	// Name returns the function name (case-insensitive)
	Name() string
	// MinArity returns the minimum number of arguments
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited)
	MaxArity() int
	// Evaluate evaluates the function with the given arguments
	Evaluate(args []interface{}) (interface{}, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register registers a function
func (r *FunctionRegistry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(f.Name())] = f
}

// Get retrieves a function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

// globalRegistry is the default function registry
var globalRegistry *FunctionRegistry

func init() {
	globalRegistry = NewFunctionRegistry()

	globalRegistry.Register(&UpperFunc{})
	globalRegistry.Register(&LowerFunc{})
	globalRegistry.Register(&ConcatFunc{})
	globalRegistry.Register(&LengthFunc{})
	globalRegistry.Register(&TrimFunc{})
}

// GetGlobalRegistry returns the global function registry
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}

func checkArity(fn Function, argCount int) error {
	if argCount < fn.MinArity() {
		return fmt.Errorf("function %s: expected at least %d arguments, got %d", fn.Name(), fn.MinArity(), argCount)
	}
	if fn.MaxArity() >= 0 && argCount > fn.MaxArity() {
		return fmt.Errorf("function %s: expected at most %d arguments, got %d", fn.Name(), fn.MaxArity(), argCount)
	}
	return nil
}

// Helper function to convert value to string
func valueToString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	case bool:
		return fmt.Sprintf("%t", val), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", v)
	}
}

// stringFunc adapts a string-to-value mapping into a single-argument function.
// Null input yields null.
func stringFunc(name string, args []interface{}, fn func(string) interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fn(str), nil
}

// UpperFunc converts a string to uppercase
type UpperFunc struct{}

func (f *UpperFunc) Name() string  { return "UPPER" }
func (f *UpperFunc) MinArity() int { return 1 }
func (f *UpperFunc) MaxArity() int { return 1 }
func (f *UpperFunc) Evaluate(args []interface{}) (interface{}, error) {
	return stringFunc("UPPER", args, func(s string) interface{} { return strings.ToUpper(s) })
}

// LowerFunc converts a string to lowercase
type LowerFunc struct{}

func (f *LowerFunc) Name() string  { return "LOWER" }
func (f *LowerFunc) MinArity() int { return 1 }
func (f *LowerFunc) MaxArity() int { return 1 }
func (f *LowerFunc) Evaluate(args []interface{}) (interface{}, error) {
	return stringFunc("LOWER", args, func(s string) interface{} { return strings.ToLower(s) })
}

// ConcatFunc concatenates the string form of its arguments. Any null
// argument makes the result null.
type ConcatFunc struct{}

func (f *ConcatFunc) Name() string  { return "CONCAT" }
func (f *ConcatFunc) MinArity() int { return 1 }
func (f *ConcatFunc) MaxArity() int { return -1 } // variadic
func (f *ConcatFunc) Evaluate(args []interface{}) (interface{}, error) {
	var builder strings.Builder
	for i, arg := range args {
		if arg == nil {
			return nil, nil
		}
		str, err := valueToString(arg)
		if err != nil {
			return nil, fmt.Errorf("CONCAT: argument %d: %w", i+1, err)
		}
		builder.WriteString(str)
	}
	return builder.String(), nil
}

// LengthFunc returns the length of a string in characters
type LengthFunc struct{}

func (f *LengthFunc) Name() string  { return "LENGTH" }
func (f *LengthFunc) MinArity() int { return 1 }
func (f *LengthFunc) MaxArity() int { return 1 }
func (f *LengthFunc) Evaluate(args []interface{}) (interface{}, error) {
	return stringFunc("LENGTH", args, func(s string) interface{} { return int64(len([]rune(s))) })
}

// TrimFunc trims whitespace from both ends of a string
type TrimFunc struct{}

func (f *TrimFunc) Name() string  { return "TRIM" }
func (f *TrimFunc) MinArity() int { return 1 }
func (f *TrimFunc) MaxArity() int { return 1 }
func (f *TrimFunc) Evaluate(args []interface{}) (interface{}, error) {
	return stringFunc("TRIM", args, func(s string) interface{} { return strings.TrimSpace(s) })
}
