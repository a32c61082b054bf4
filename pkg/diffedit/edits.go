package diffedit

import (
	"fmt"
	"strings"
)

// Edit is a half-open range in a Snapshot's line/character coordinate space
// together with the text that replaces it.
type Edit struct {
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
	NewText   string
}

// SynthesizeEdits maps each hunk onto a whole-line replacement edit against
// the snapshot. A hunk replacing N original lines starting at line L becomes
// an edit spanning (L,0)..(L+N,0); a hunk with OrigLines == 0 becomes a
// zero-width insertion at (L,0).
//
// Edits are returned in ascending original-position order with all offsets
// relative to the unmodified snapshot. Callers applying them one at a time
// through a mechanism that shifts positions after each replacement must
// apply them in reverse, or use ApplyEdits which computes offsets against
// the original text.
//
// A hunk whose range extends past the snapshot fails with a *Error of
// KindRangeOutOfBounds; no partial edit sequence is returned.
func SynthesizeEdits(snap Snapshot, hunks []Hunk) ([]Edit, error) {
	edits := make([]Edit, 0, len(hunks))
	for _, hunk := range hunks {
		if hunk.OrigStart < 0 || hunk.OrigLines < 0 {
			return nil, &Error{
				Kind:     KindRangeOutOfBounds,
				Message:  fmt.Sprintf("hunk has negative coordinates (start %d, lines %d)", hunk.OrigStart, hunk.OrigLines),
				Fragment: hunk.Raw,
			}
		}
		end := hunk.OrigStart + hunk.OrigLines
		if end > snap.LineCount() || hunk.OrigStart > snap.LineCount() {
			return nil, &Error{
				Kind:     KindRangeOutOfBounds,
				Message:  fmt.Sprintf("hunk spans lines %d-%d but document has %d lines", hunk.OrigStart, end, snap.LineCount()),
				Fragment: hunk.Raw,
			}
		}
		var text string
		if len(hunk.NewLines) > 0 {
			text = strings.Join(hunk.NewLines, snap.EOL()) + snap.EOL()
		}
		edits = append(edits, Edit{
			StartLine: hunk.OrigStart,
			EndLine:   end,
			NewText:   text,
		})
	}
	return edits, nil
}
