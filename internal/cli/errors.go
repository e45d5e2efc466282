package cli

import (
	"errors"
	"fmt"
)

// ErrUsage matches every error caused by how restgen was invoked (flags,
// config file, input location, output directory) as opposed to a failure
// inside generation.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func usageErrorf(format string, args ...any) error {
	return newUsageError(fmt.Sprintf(format, args...))
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
