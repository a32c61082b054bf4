package diffedit

import "strings"

// Snapshot is an immutable view of a document used as the coordinate
// reference for hunks and edits. Line indexes are 0-based.
type Snapshot struct {
	lines   []string
	eol     string
	endsEOL bool
}

// NewSnapshot builds a Snapshot from raw document text. The line terminator
// is detected from the text (CRLF wins if present) and whether the document
// ends with a terminator is recorded so it can be preserved on apply.
func NewSnapshot(text string) Snapshot {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	if text == "" {
		return Snapshot{eol: eol}
	}
	endsEOL := strings.HasSuffix(text, eol)
	trimmed := text
	if endsEOL {
		trimmed = text[:len(text)-len(eol)]
	}
	return Snapshot{
		lines:   strings.Split(trimmed, eol),
		eol:     eol,
		endsEOL: endsEOL,
	}
}

// Lines returns the document's lines without terminators. The returned
// slice must be treated as read-only.
func (s Snapshot) Lines() []string { return s.lines }

// LineCount returns the number of lines in the document.
func (s Snapshot) LineCount() int { return len(s.lines) }

// EOL returns the document's line terminator.
func (s Snapshot) EOL() string { return s.eol }

// Text reconstructs the document text, including the trailing terminator
// when the original had one.
func (s Snapshot) Text() string {
	if len(s.lines) == 0 {
		return ""
	}
	text := strings.Join(s.lines, s.eol)
	if s.endsEOL {
		text += s.eol
	}
	return text
}
