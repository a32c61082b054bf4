package diffedit

import (
	"strings"
	"testing"
)

// patchDocument runs the full parse -> synthesize -> apply pipeline.
func patchDocument(t *testing.T, original, diff string) string {
	t.Helper()
	snap := NewSnapshot(original)
	hunks, err := ParsePatch(diff)
	if err != nil {
		t.Fatalf("ParsePatch returned error: %v", err)
	}
	edits, err := SynthesizeEdits(snap, hunks)
	if err != nil {
		t.Fatalf("SynthesizeEdits returned error: %v", err)
	}
	result, err := ApplyEdits(snap, edits)
	if err != nil {
		t.Fatalf("ApplyEdits returned error: %v", err)
	}
	return result
}

func TestApplyEditsReordersImports(t *testing.T) {
	t.Parallel()

	original := "import a\nimport b\n\nx = 1\n"
	diff := "@@ -1,2 +1,2 @@\n-import a\n-import b\n+import b\n+import a\n"

	got := patchDocument(t, original, diff)
	if want := "import b\nimport a\n\nx = 1\n"; got != want {
		t.Fatalf("patched document mismatch: got %q want %q", got, want)
	}
}

func TestApplyEditsRoundTripsMultiHunkPatch(t *testing.T) {
	t.Parallel()

	original := strings.Join([]string{
		"import sys",
		"import os",
		"",
		"def main():",
		"    pass",
		"",
		"import json",
		"",
	}, "\n")
	diff := strings.Join([]string{
		"@@ -1,2 +1,3 @@",
		"-import sys",
		"+import json",
		" import os",
		"+import sys",
		"@@ -7,1 +8,0 @@",
		"-import json",
		"",
	}, "\n")

	got := patchDocument(t, original, diff)
	want := strings.Join([]string{
		"import json",
		"import os",
		"import sys",
		"",
		"def main():",
		"    pass",
		"",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("patched document mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestApplyEditsInsertionConsumesNoLines(t *testing.T) {
	t.Parallel()

	original := "import os\n\nx = 1\n"
	diff := "@@ -1,0 +2,1 @@\n+import sys\n"

	got := patchDocument(t, original, diff)
	if want := "import os\nimport sys\n\nx = 1\n"; got != want {
		t.Fatalf("patched document mismatch: got %q want %q", got, want)
	}
}

func TestApplyEditsNoEditsLeavesDocumentUnchanged(t *testing.T) {
	t.Parallel()

	original := "import a\nimport b\n"
	snap := NewSnapshot(original)

	got, err := ApplyEdits(snap, nil)
	if err != nil {
		t.Fatalf("ApplyEdits returned error: %v", err)
	}
	if got != original {
		t.Fatalf("document changed without edits: got %q", got)
	}
}

func TestApplyEditsPreservesMissingTrailingNewline(t *testing.T) {
	t.Parallel()

	original := "import b\nimport a"
	snap := NewSnapshot(original)
	edits := []Edit{{StartLine: 0, EndLine: 2, NewText: "import a\nimport b\n"}}

	got, err := ApplyEdits(snap, edits)
	if err != nil {
		t.Fatalf("ApplyEdits returned error: %v", err)
	}
	if want := "import a\nimport b"; got != want {
		t.Fatalf("trailing newline handling wrong: got %q want %q", got, want)
	}
}

func TestApplyEditsPreservesCRLF(t *testing.T) {
	t.Parallel()

	original := "import b\r\nimport a\r\nx = 1\r\n"
	diff := "@@ -1,2 +1,2 @@\n-import b\n-import a\n+import a\n+import b\n"

	got := patchDocument(t, original, diff)
	if want := "import a\r\nimport b\r\nx = 1\r\n"; got != want {
		t.Fatalf("CRLF document mismatch: got %q want %q", got, want)
	}
}

func TestApplyEditsDeleteEverything(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot("a\nb\n")
	edits := []Edit{{StartLine: 0, EndLine: 2}}

	got, err := ApplyEdits(snap, edits)
	if err != nil {
		t.Fatalf("ApplyEdits returned error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty document, got %q", got)
	}
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot("a\nb\nc\nd\n")
	edits := []Edit{
		{StartLine: 0, EndLine: 2, NewText: "x\n"},
		{StartLine: 1, EndLine: 3, NewText: "y\n"},
	}

	if _, err := ApplyEdits(snap, edits); !IsKind(err, KindRangeOutOfBounds) {
		t.Fatalf("overlapping edits not rejected: %v", err)
	}
}

func TestApplyEditsRejectsRangePastDocument(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot("a\n")
	edits := []Edit{{StartLine: 0, EndLine: 5, NewText: "x\n"}}

	if _, err := ApplyEdits(snap, edits); !IsKind(err, KindRangeOutOfBounds) {
		t.Fatalf("out-of-range edit not rejected: %v", err)
	}
}

func TestApplyEditsAcceptsDescendingOrder(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot("a\nb\nc\nd\n")
	edits := []Edit{
		{StartLine: 3, EndLine: 4, NewText: "D\n"},
		{StartLine: 0, EndLine: 1, NewText: "A\n"},
	}

	got, err := ApplyEdits(snap, edits)
	if err != nil {
		t.Fatalf("ApplyEdits returned error: %v", err)
	}
	if want := "A\nb\nc\nD\n"; got != want {
		t.Fatalf("descending-order application mismatch: got %q want %q", got, want)
	}
}
