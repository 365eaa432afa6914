package stdimg

import (
	"fmt"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// ErrOperationUnavailable is the sentinel every failing operation in this
// package wraps. It is the same value as tool.ErrOperationUnavailable.
var ErrOperationUnavailable = tool.ErrOperationUnavailable

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrOperationUnavailable)
}

func wrapUnavailable(what string, err error) error {
	return fmt.Errorf("%s: %w", what, unavailableErr{err})
}

type unavailableErr struct{ err error }

func (e unavailableErr) Error() string   { return e.err.Error() }
func (e unavailableErr) Unwrap() []error { return []error{ErrOperationUnavailable, e.err} }
