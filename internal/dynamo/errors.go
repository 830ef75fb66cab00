package dynamo

import "errors"

// Domain errors for model setup and evaluation.
var (
	// ErrUnknownModel indicates a model key or name that is not registered.
	ErrUnknownModel = errors.New("dynamo: unknown contact model")

	// ErrMissingInteraction indicates a material pair without interaction properties.
	ErrMissingInteraction = errors.New("dynamo: missing interaction properties for material pair")

	// ErrUnknownMaterial indicates an entity referring to an undefined material.
	ErrUnknownMaterial = errors.New("dynamo: unknown material")

	// ErrInvalidParameter indicates a model or material parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidGeometry indicates geometry sizes that cannot produce a shape.
	ErrInvalidGeometry = errors.New("dynamo: invalid geometry")

	// ErrOverlappingMotion indicates motion intervals that overlap in time.
	ErrOverlappingMotion = errors.New("dynamo: overlapping motion intervals")

	// ErrInvalidState indicates NaN or Inf in particle state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted between steps.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SetupError wraps a configuration error with the component that raised it.
type SetupError struct {
	Component string
	Wrapped   error
}

func (e *SetupError) Error() string {
	return e.Component + ": " + e.Wrapped.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Wrapped
}
