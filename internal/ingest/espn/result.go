package espn

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound is a well-formed payload that has nothing for the query.
	ErrNotFound = errors.New("espn: not found")
	// ErrMalformed is a payload that does not decode into the expected shape.
	ErrMalformed = errors.New("espn: malformed payload")
)

// Kind tags a parse outcome.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	default:
		return "malformed"
	}
}

// Result is either a value or an explicit NotFound/Malformed outcome.
type Result[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Kind: KindOK, Value: v}
}

func notFound[T any](format string, args ...any) Result[T] {
	return Result[T]{Kind: KindNotFound, Err: errors.Wrapf(ErrNotFound, format, args...)}
}

func malformed[T any](err error, format string, args ...any) Result[T] {
	cause := errors.Wrapf(ErrMalformed, format, args...)
	if err != nil {
		cause = errors.WithSecondaryError(cause, err)
	}
	return Result[T]{Kind: KindMalformed, Err: cause}
}

// Get unpacks the result into the usual (value, error) pair.
func (r Result[T]) Get() (T, error) {
	if r.Kind != KindOK {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}
