package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixture creates a Python file and a config whose "isort" entry is a
// shell stub emitting the given stdout, so tests never need a real sorter.
func writeFixture(t *testing.T, content, script string, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	docPath := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(docPath, []byte(content), 0o644))

	cfg := `{"commands": {"isort": {"command": "sh", "args": ["-c", ` + jsonString(script) + `]` + extra + `}}}`
	cfgPath := filepath.Join(dir, "sortpatch.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return docPath, cfgPath
}

func jsonString(script string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + replacer.Replace(script) + `"`
}

const reorderDiff = "@@ -1,2 +1,2 @@\n-import b\n-import a\n+import a\n+import b\n"

func TestRunWriteAppliesSortedImports(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import b\nimport a\n\nx = 1\n", "printf '"+reorderDiff+"'", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-write", docPath}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	updated, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, "import a\nimport b\n\nx = 1\n", string(updated))
	require.Contains(t, stdout.String(), "sorted")
}

func TestRunCheckReportsPendingChanges(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import b\nimport a\n", "printf '"+reorderDiff+"'", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-check", docPath}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "imports need sorting")

	// -check must not touch the file.
	content, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, "import b\nimport a\n", string(content))
}

func TestRunCheckCleanFile(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import a\nimport b\n", "true", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-check", docPath}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Empty(t, stdout.String())
}

func TestRunDefaultPrintsDiff(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import b\nimport a\n", "printf '"+reorderDiff+"'", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-no-color", docPath}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "-import b")
	require.Contains(t, stdout.String(), "+import a")
}

func TestRunFullOutputProvider(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import b\nimport a\n",
		"printf 'import a\nimport b\n'", `, "output": "full"`)

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-write", docPath}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	updated, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, "import a\nimport b\n", string(updated))
}

func TestRunToolFailureIsReported(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import a\n", "echo broken-install >&2; exit 3", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, docPath}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "status 3")
}

func TestRunMalformedDiffIsReported(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import a\n", "echo 'not a diff'", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, docPath}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "hunk")
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr strings.Builder

	code := Run(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "usage:")

	stderr.Reset()
	code = Run(context.Background(), []string{"-write", "-check", "whatever.py"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "mutually exclusive")
}

func TestRunMissingFile(t *testing.T) {
	_, cfgPath := writeFixture(t, "", "true", "")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, filepath.Join(t.TempDir(), "absent.py")}, &stdout, &stderr)
	require.Equal(t, 1, code)
}

func TestRunMultipleFilesContinueAfterFailure(t *testing.T) {
	docPath, cfgPath := writeFixture(t, "import b\nimport a\n", "printf '"+reorderDiff+"'", "")
	missing := filepath.Join(t.TempDir(), "absent.py")

	var stdout, stderr strings.Builder
	code := Run(context.Background(), []string{"-config", cfgPath, "-write", missing, docPath}, &stdout, &stderr)
	require.Equal(t, 1, code, "missing file must fail the run")

	updated, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, "import a\nimport b\n", string(updated), "remaining files still processed")
}
