// Package wbopts implements the generic functional-options helper the rest
// of the tree configures its constructors with, grounded on the teacher's
// internal/options/options.go (renamed for this module, otherwise
// unchanged): an Option[T] applies to a configuration target T, Apply runs
// a slice of them in order, and NoError wraps a plain mutator for options
// that can't themselves fail.
package wbopts

// Option represents a functional option for configuring any type T.
type Option[T any] interface {
	apply(T) error
}

// Func is a generic functional option that wraps a function.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates a functional option from a function that can fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates a functional option from a function that can't fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order, short-circuiting on the first
// error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
