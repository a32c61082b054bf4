package diffedit

import (
	"fmt"
	"sort"
	"strings"
)

// ApplyEdits applies the edit sequence to the snapshot and returns the
// resulting text. All ranges are resolved against the original snapshot, so
// the edits may be supplied in any order as long as they do not overlap.
// The original document's trailing-newline state is preserved.
//
// Overlapping edits or a range outside the snapshot fail with a *Error of
// KindRangeOutOfBounds and no text is produced.
func ApplyEdits(snap Snapshot, edits []Edit) (string, error) {
	text := snap.Text()
	if len(edits) == 0 {
		return text, nil
	}

	offsets := make([]int, snap.LineCount()+1)
	off := 0
	for i, line := range snap.lines {
		offsets[i] = off
		off += len(line) + len(snap.eol)
	}
	// Without a trailing terminator the position one past the last line
	// still resolves to the end of the text.
	if off > len(text) {
		off = len(text)
	}
	offsets[snap.LineCount()] = off

	resolve := func(line, char int) (int, error) {
		if line < 0 || line > snap.LineCount() || char < 0 {
			return 0, &Error{
				Kind:    KindRangeOutOfBounds,
				Message: fmt.Sprintf("position (%d,%d) outside document of %d lines", line, char, snap.LineCount()),
			}
		}
		limit := 0
		if line < snap.LineCount() {
			limit = len(snap.lines[line])
		}
		if char > limit {
			return 0, &Error{
				Kind:    KindRangeOutOfBounds,
				Message: fmt.Sprintf("character %d past end of line %d", char, line),
			}
		}
		return offsets[line] + char, nil
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartLine != ordered[j].StartLine {
			return ordered[i].StartLine < ordered[j].StartLine
		}
		return ordered[i].StartChar < ordered[j].StartChar
	})

	var builder strings.Builder
	pos := 0
	for _, edit := range ordered {
		start, err := resolve(edit.StartLine, edit.StartChar)
		if err != nil {
			return "", err
		}
		end, err := resolve(edit.EndLine, edit.EndChar)
		if err != nil {
			return "", err
		}
		if end < start || start < pos {
			return "", &Error{
				Kind:    KindRangeOutOfBounds,
				Message: fmt.Sprintf("edit at (%d,%d) overlaps a preceding edit", edit.StartLine, edit.StartChar),
			}
		}
		builder.WriteString(text[pos:start])
		builder.WriteString(edit.NewText)
		pos = end
	}
	builder.WriteString(text[pos:])

	result := builder.String()
	if snap.endsEOL && result != "" && !strings.HasSuffix(result, snap.eol) {
		result += snap.eol
	}
	if !snap.endsEOL {
		result = strings.TrimSuffix(result, snap.eol)
	}
	return result, nil
}
