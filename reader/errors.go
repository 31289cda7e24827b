package reader

import "fmt"

// LoadError reports an input file that cannot be opened or parsed
type LoadError struct {
	Path string
	Line int // 1-based line of a malformed record, 0 when not tied to a record
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
