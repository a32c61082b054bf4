package diffedit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hunk describes one contiguous change parsed from a unified diff: the span
// of original lines to replace and the lines that replace them.
type Hunk struct {
	// OrigStart is the 0-based index of the first original line the hunk
	// replaces. For a pure insertion it is the index the new lines are
	// inserted at.
	OrigStart int
	// OrigLines is the number of original lines the hunk replaces. Zero
	// means a pure insertion.
	OrigLines int
	// NewLines is the replacement content: context and added lines in the
	// order they appeared, removed lines skipped.
	NewLines []string
	// Raw keeps the hunk header and body as they appeared in the diff, for
	// diagnostics.
	Raw []string
}

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParsePatch converts unified-diff text into an ordered sequence of hunks.
//
// Empty or whitespace-only input is the valid "no changes" case and yields
// an empty sequence. File headers and other non-hunk preamble are skipped.
// A malformed hunk header, an unclassifiable line inside a hunk body, a
// truncated hunk, or input that contains no hunk header at all fails with a
// *Error of KindPatchFormat carrying the offending text.
func ParsePatch(diffText string) ([]Hunk, error) {
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}

	var (
		hunks       []Hunk
		current     *Hunk
		remainOrig  int
		remainNew   int
		prevHunkEnd int
	)

	flush := func() {
		hunks = append(hunks, *current)
		prevHunkEnd = current.OrigStart + current.OrigLines
		current = nil
	}

	for _, line := range splitLines(diffText) {
		if current == nil {
			if !strings.HasPrefix(line, "@@") {
				// Preamble such as ---/+++ file headers; not ours to judge.
				continue
			}
			match := hunkHeaderPattern.FindStringSubmatch(line)
			if match == nil {
				return nil, &Error{
					Kind:     KindPatchFormat,
					Message:  "malformed hunk header",
					Fragment: []string{line},
				}
			}
			origStart1, err1 := strconv.Atoi(match[1])
			origLen, err2 := atoiDefault(match[2], 1)
			newLen, err3 := atoiDefault(match[4], 1)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, &Error{
					Kind:     KindPatchFormat,
					Message:  "hunk header coordinates out of range",
					Fragment: []string{line},
				}
			}
			// Unified diff counts lines from 1. A zero-length original range
			// uses the "after line N" convention, which already is the
			// 0-based insertion index.
			start := origStart1 - 1
			if origLen == 0 {
				start = origStart1
			}
			if start < 0 {
				return nil, &Error{
					Kind:     KindPatchFormat,
					Message:  "hunk header addresses line 0",
					Fragment: []string{line},
				}
			}
			if start < prevHunkEnd {
				return nil, &Error{
					Kind:     KindPatchFormat,
					Message:  "hunks out of order or overlapping",
					Fragment: []string{line},
				}
			}
			current = &Hunk{OrigStart: start, OrigLines: origLen, Raw: []string{line}}
			remainOrig = origLen
			remainNew = newLen
			if remainOrig == 0 && remainNew == 0 {
				flush()
			}
			continue
		}

		current.Raw = append(current.Raw, line)
		switch {
		case strings.HasPrefix(line, "-"):
			remainOrig--
		case strings.HasPrefix(line, "+"):
			current.NewLines = append(current.NewLines, line[1:])
			remainNew--
		case strings.HasPrefix(line, " "), line == "":
			value := line
			if value != "" {
				value = line[1:]
			}
			current.NewLines = append(current.NewLines, value)
			remainOrig--
			remainNew--
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" marker; carries no content.
		default:
			return nil, &Error{
				Kind:     KindPatchFormat,
				Message:  "unrecognized line in hunk body",
				Fragment: []string{line},
			}
		}
		if remainOrig < 0 || remainNew < 0 {
			return nil, &Error{
				Kind:     KindPatchFormat,
				Message:  "hunk body longer than header declares",
				Fragment: current.Raw,
			}
		}
		if remainOrig == 0 && remainNew == 0 {
			flush()
		}
	}

	if current != nil {
		return nil, &Error{
			Kind:     KindPatchFormat,
			Message:  fmt.Sprintf("truncated hunk: %d original and %d new lines missing", remainOrig, remainNew),
			Fragment: current.Raw,
		}
	}
	if len(hunks) == 0 {
		return nil, &Error{
			Kind:     KindPatchFormat,
			Message:  "no hunk header found in diff text",
			Fragment: firstLines(diffText, 3),
		}
	}
	return hunks, nil
}

func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")
	return strings.Split(normalized, "\n")
}

func firstLines(text string, n int) []string {
	lines := splitLines(text)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

func atoiDefault(digits string, fallback int) (int, error) {
	if digits == "" {
		return fallback, nil
	}
	return strconv.Atoi(digits)
}
