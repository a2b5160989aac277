package reject

// A rejection is how the model says "no, fix your input": a kind plus a
// human readable reason. Nothing is computed once one of these is
// returned, and the caller is expected to re-prompt rather than retry.

import(
	"errors"
	"fmt"
)

type Kind int

const(
	InvalidInput          Kind = iota // a level, time or count that breaks a domain constraint
	SubframeCeiling                   // too many subframes to synthesize
	DegenerateRange                   // e.g. a clip with black point == white point
	UnsupportedConversion             // luminance units without QE data
	Config                            // a camera profile / catalog record that doesn't hang together
)

func (k Kind)String() string {
	switch k {
	case InvalidInput:          return "invalid input"
	case SubframeCeiling:       return "subframe ceiling"
	case DegenerateRange:       return "degenerate range"
	case UnsupportedConversion: return "unsupported conversion"
	case Config:                return "configuration"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error)Error() string { return e.Kind.String() + ": " + e.Reason }

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or anything it wraps) is a rejection of the given kind.
func Is(err error, kind Kind) bool {
	var r *Error
	if errors.As(err, &r) {
		return r.Kind == kind
	}
	return false
}
