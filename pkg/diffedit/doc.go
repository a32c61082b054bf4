// Package diffedit converts unified-diff output from external formatting
// tools into range-based edits against an in-memory document.
//
// The package is deliberately free of I/O: it parses diff text into hunks,
// maps hunks onto line/character ranges of an immutable Snapshot, and can
// apply the resulting edits to produce the patched text. Running the tool
// that produced the diff and persisting the result belong to the caller.
package diffedit
