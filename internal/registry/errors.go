package registry

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/decl"
)

var (
	// ErrRedeclared matches every *RedeclaredError.
	ErrRedeclared = errors.New("symbol redeclared")
	// ErrMissingUnit matches every *MissingUnitError.
	ErrMissingUnit = errors.New("unit not found")
	// ErrUndefinedFunction is returned when calling a function that is not
	// declared in the calling context.
	ErrUndefinedFunction = errors.New("call to undefined function")
	// ErrUndefinedType is returned when a type is not declared in the
	// calling context.
	ErrUndefinedType = errors.New("undefined type")
)

// RedeclaredError reports a run-time declaration of a name that is already
// bound in the declaring context.
type RedeclaredError struct {
	Kind      decl.Kind
	Name      string
	Previous  hcl.Range
	Duplicate hcl.Range
}

func (e *RedeclaredError) Error() string {
	if e.Previous.Filename == "" {
		return fmt.Sprintf("cannot redeclare %s %s", e.Kind, e.Name)
	}
	return fmt.Sprintf("cannot redeclare %s %s (previously declared at %s)", e.Kind, e.Name, e.Previous.String())
}

// Is lets errors.Is(err, ErrRedeclared) match.
func (e *RedeclaredError) Is(target error) bool {
	return target == ErrRedeclared
}

// MissingUnitError reports an include target that resolved to no unit.
type MissingUnitError struct {
	Path string
}

func (e *MissingUnitError) Error() string {
	return fmt.Sprintf("file '%s' cannot be included with current configuration", e.Path)
}

// Is lets errors.Is(err, ErrMissingUnit) match.
func (e *MissingUnitError) Is(target error) bool {
	return target == ErrMissingUnit
}
