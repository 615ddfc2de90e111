package thread

import (
	"github.com/pkg/errors"
)

// StructuralError reports an operation attempted outside a valid tree
// context: a nil or foreign node, a detached node, a failed node creation.
// It always surfaces before any transport call.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Err.Error()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure from the send capability. The document
// keeps whatever nodes and text were already committed; nothing is rolled
// back or retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports missing or malformed configuration, surfaced
// before any thread is created.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err has a StructuralError in its chain.
func IsStructural(err error) bool {
	var target *StructuralError
	return errors.As(err, &target)
}

// IsTransport reports whether err has a TransportError in its chain.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err has a ConfigurationError in its chain.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
