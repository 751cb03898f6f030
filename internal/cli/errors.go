package cli

import (
	"errors"
	"fmt"
)

// ErrUsage matches every error caused by how the CLI was invoked or by its
// inputs, as opposed to a failure of the generator itself.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func usageErrorf(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// wrapUsage keeps cause reachable through errors.Is and errors.As.
func wrapUsage(cause error, msg string) error {
	return usageError{msg: msg, cause: cause}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Unwrap() error { return e.cause }

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
