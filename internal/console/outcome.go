package console

// Kind classifies the result of reading one field.
type Kind int

const (
	// KindOK carries a validated value.
	KindOK Kind = iota
	// KindCancelled means the user typed the cancel token.
	KindCancelled
	// KindInvalid carries a reason and triggers a re-prompt.
	KindInvalid
)

// Outcome is the explicit result of parsing or prompting a field.
type Outcome[T any] struct {
	Value  T
	Kind   Kind
	Reason string
}

// OK wraps a validated value.
func OK[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value, Kind: KindOK}
}

// Cancelled signals the cancel token.
func Cancelled[T any]() Outcome[T] {
	return Outcome[T]{Kind: KindCancelled}
}

// Invalid rejects the input with a user-facing reason.
func Invalid[T any](reason string) Outcome[T] {
	return Outcome[T]{Kind: KindInvalid, Reason: reason}
}

// Ok reports whether the outcome carries a value.
func (o Outcome[T]) Ok() bool { return o.Kind == KindOK }

// IsCancelled reports whether the user cancelled the field.
func (o Outcome[T]) IsCancelled() bool { return o.Kind == KindCancelled }
