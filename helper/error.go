package helper

import "fmt"

// NewError wraps err with an operation label so callers can tell at a glance
// which step of a handler failed without parsing the message.
func NewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
