// Package viewstate holds the loading/error/ready state of a page load cycle.
package viewstate

// Kind names the variant a State is in.
type Kind int

// State variants.
const (
	KindLoading Kind = iota
	KindError
	KindReady
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is exactly one of loading, error (with a message) or ready (with the payload).
type State[T any] struct {
	kind    Kind
	message string
	value   T
}

// Loading returns the initial state of every load cycle.
func Loading[T any]() State[T] { return State[T]{kind: KindLoading} }

// Failed returns an error state carrying msg.
func Failed[T any](msg string) State[T] { return State[T]{kind: KindError, message: msg} }

// Ready returns a populated state.
func Ready[T any](v T) State[T] { return State[T]{kind: KindReady, value: v} }

// Kind reports the variant.
func (s State[T]) Kind() Kind { return s.kind }

// Message returns the error message when the state is an error.
func (s State[T]) Message() (string, bool) {
	return s.message, s.kind == KindError
}

// Value returns the payload when the state is ready.
func (s State[T]) Value() (T, bool) {
	return s.value, s.kind == KindReady
}
