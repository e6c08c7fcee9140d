package rclone

import (
	"errors"
	"fmt"
)

// DecodeError reports a malformed payload from the engine. Unlike transport
// failures these are not retryable: the caller cannot tell what state the
// engine is in once its responses stop parsing.
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
