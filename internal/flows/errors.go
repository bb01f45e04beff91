package flows

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindIO Kind = iota + 1
	KindMalformedTable
	KindMissingColumn
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMalformedTable:
		return "malformed_table"
	case KindMissingColumn:
		return "missing_column"
	default:
		return "unknown"
	}
}

var (
	ErrIO             = errors.New("flows: io error")
	ErrMalformedTable = errors.New("flows: malformed table")
	ErrMissingColumn  = errors.New("flows: missing column")
)

// Error is the single failure type of the pipeline. Match the kind with
// errors.Is against ErrIO, ErrMalformedTable or ErrMissingColumn.
type Error struct {
	Kind      Kind
	Path      string
	Column    string
	Available []string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		if e.Path == "" {
			return fmt.Sprintf("flows: read: %v", e.Err)
		}
		return fmt.Sprintf("flows: read %s: %v", e.Path, e.Err)
	case KindMalformedTable:
		if e.Path == "" {
			return fmt.Sprintf("flows: malformed table: %v", e.Err)
		}
		return fmt.Sprintf("flows: malformed table %s: %v", e.Path, e.Err)
	case KindMissingColumn:
		var b strings.Builder
		b.WriteString("flows: ")
		if e.Path != "" {
			fmt.Fprintf(&b, "%s: ", e.Path)
		}
		fmt.Fprintf(&b, "year %s not found in data", e.Column)
		if len(e.Available) == 0 {
			b.WriteString(" (no year columns)")
		} else {
			fmt.Fprintf(&b, " (available years: %s)", strings.Join(e.Available, ", "))
		}
		return b.String()
	default:
		return fmt.Sprintf("flows: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrMalformedTable:
		return e.Kind == KindMalformedTable
	case ErrMissingColumn:
		return e.Kind == KindMissingColumn
	default:
		return false
	}
}
