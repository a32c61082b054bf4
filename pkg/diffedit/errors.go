package diffedit

import (
	"errors"
	"strings"
)

// Kind discriminates structured failures so callers can branch on the
// category of error without inspecting runtime types.
type Kind string

const (
	// KindPatchFormat marks diff text that does not conform to the
	// unified-diff hunk grammar.
	KindPatchFormat Kind = "patch_format"
	// KindRangeOutOfBounds marks a hunk or edit whose range falls outside
	// the supplied snapshot. It usually means the document changed between
	// diff generation and edit synthesis.
	KindRangeOutOfBounds Kind = "range_out_of_bounds"
)

// Error is a structured failure from parsing or synthesis. Fragment holds
// the offending raw lines for diagnostics.
type Error struct {
	Kind     Kind
	Message  string
	Fragment []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fragment) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fragment, "\n")
}

// IsKind reports whether err is (or wraps) a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
