package cli

import (
	"errors"
	"fmt"
)

var errUsage = errors.New("usage")

// UsageError reports incorrect flag usage with ExitUsage
func UsageError(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errUsage)
}
