// Package diffgen derives hunks for providers that print the whole
// reformatted document instead of a diff. Line-diffing the tool output
// against the original gives every provider the same downstream path
// through the diffedit synthesizer.
package diffgen

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sortpatch/sortpatch/pkg/diffedit"
)

// Hunks line-diffs original against reformatted and returns hunks
// satisfying the synthesizer's invariants: strictly increasing start
// positions and non-overlapping original ranges. Identical inputs yield no
// hunks.
func Hunks(original, reformatted string) []diffedit.Hunk {
	if original == reformatted {
		return nil
	}

	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(original, reformatted)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	// Each rune indexes a full line (terminator included) in lineArray.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var (
		hunks     []diffedit.Hunk
		orig      int
		pendStart = -1
		delCount  int
		inserted  []string
	)
	flush := func() {
		if pendStart < 0 {
			return
		}
		hunks = append(hunks, diffedit.Hunk{
			OrigStart: pendStart,
			OrigLines: delCount,
			NewLines:  inserted,
		})
		pendStart = -1
		delCount = 0
		inserted = nil
	}

	for _, d := range diffs {
		lines := decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			orig += len(lines)
		case diffmatchpatch.DiffDelete:
			if pendStart < 0 {
				pendStart = orig
			}
			delCount += len(lines)
			orig += len(lines)
		case diffmatchpatch.DiffInsert:
			if pendStart < 0 {
				pendStart = orig
			}
			for _, line := range lines {
				inserted = append(inserted, chompLine(line))
			}
		}
	}
	flush()
	return hunks
}

// chompLine strips the line terminator lineArray entries carry.
func chompLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
