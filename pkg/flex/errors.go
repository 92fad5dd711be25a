package flex

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownAttribute is matched by every *UnknownAttributeError.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrNoMethod is matched by every *NoMethodError.
	ErrNoMethod = errors.New("no such method")

	// ErrCompanionNotFound is returned by companion resolution when no
	// companion model has been registered under the requested name.
	ErrCompanionNotFound = errors.New("companion model not found")

	// ErrNotOwner is returned when a model does not embed flex.Attributes.
	ErrNotOwner = errors.New("model does not embed flex.Attributes")

	// ErrNotEnabled is returned when flex attributes were never enabled
	// for the model type of an owner.
	ErrNotEnabled = errors.New("flex attributes are not enabled for model")
)

// UnknownAttributeError is raised when a name is neither a native column
// nor an eligible flex attribute.
type UnknownAttributeError struct {
	Model string
	Name  string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q for %s", e.Name, e.Model)
}

func (e *UnknownAttributeError) Is(target error) bool {
	return target == ErrUnknownAttribute
}

// NoMethodError is returned by Call when the method matches nothing on the
// owner. Method is the name exactly as the caller passed it.
type NoMethodError struct {
	Model  string
	Method string
}

func (e *NoMethodError) Error() string {
	return fmt.Sprintf("undefined method %q for %s", e.Method, e.Model)
}

func (e *NoMethodError) Is(target error) bool {
	return target == ErrNoMethod
}
