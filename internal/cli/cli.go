// Package cli wires the pipeline together: resolve configuration, run the
// external sorter, translate its diff into edits, and write or report the
// result.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"

	"github.com/sortpatch/sortpatch/internal/config"
	"github.com/sortpatch/sortpatch/internal/diffgen"
	"github.com/sortpatch/sortpatch/internal/logging"
	"github.com/sortpatch/sortpatch/internal/runner"
	"github.com/sortpatch/sortpatch/internal/tui"
	"github.com/sortpatch/sortpatch/pkg/diffedit"
)

// Run executes sortpatch with the provided CLI arguments. It returns a
// POSIX-style exit code: 0 when every file is clean or was updated, 1 when
// -check found pending changes or any step failed, 2 on usage errors.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	flagSet := flag.NewFlagSet("sortpatch", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	provider := flagSet.String("provider", "", "import sorter to use (isort, ruff, black); overrides config and environment")
	configPath := flagSet.String("config", "", "path to a sortpatch.json config file")
	write := flagSet.Bool("write", false, "apply the sorted imports to the files in place")
	check := flagSet.Bool("check", false, "exit 1 if any file needs sorting, without modifying anything")
	review := flagSet.Bool("review", false, "interactively pick hunks before applying them")
	timeoutSec := flagSet.Int("timeout", 0, "tool timeout in seconds; overrides config")
	verbose := flagSet.Bool("verbose", false, "log tool invocations and diagnostics to stderr")
	noColor := flagSet.Bool("no-color", false, "disable colored diff output")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	files := flagSet.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "usage: sortpatch [flags] file.py [file.py ...]")
		flagSet.PrintDefaults()
		return 2
	}
	if countTrue(*write, *check, *review) > 1 {
		fmt.Fprintln(stderr, "-write, -check, and -review are mutually exclusive")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *provider != "" {
		cfg.Provider = config.Provider(*provider)
	}
	if *timeoutSec > 0 {
		cfg.TimeoutSec = *timeoutSec
	}
	tmpl, err := cfg.Template()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	minLevel := logging.LevelWarn
	if *verbose {
		minLevel = logging.LevelDebug
	}
	log := logging.NewTextLogger(minLevel, stderr).WithFields(logging.F("provider", string(cfg.Provider)))
	ctx = logging.WithRunID(ctx, logging.NewRunID())

	app := &app{
		stdout:  stdout,
		stderr:  stderr,
		log:     log,
		runner:  runner.New(log, cfg.Timeout()),
		tmpl:    tmpl,
		write:   *write,
		check:   *check,
		review:  *review,
		printer: newDiffPrinter(*noColor),
	}

	exitCode := 0
	for _, path := range files {
		changed, err := app.processFile(ctx, path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			exitCode = 1
			continue
		}
		if changed && *check {
			exitCode = 1
		}
	}
	return exitCode
}

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	log     logging.Logger
	runner  *runner.Runner
	tmpl    config.CommandTemplate
	write   bool
	check   bool
	review  bool
	printer *diffPrinter
}

// processFile runs the full pipeline for one file and reports whether the
// tool wants to change it.
func (a *app) processFile(ctx context.Context, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := string(raw)
	snap := diffedit.NewSnapshot(content)

	output, err := a.runner.Run(ctx, path, content, a.tmpl)
	if err != nil {
		return false, err
	}

	hunks, err := a.resolveHunks(content, output)
	if err != nil {
		return false, err
	}
	if len(hunks) == 0 {
		a.log.Debug(ctx, "file already sorted", logging.F("path", path))
		return false, nil
	}

	switch {
	case a.check:
		fmt.Fprintf(a.stdout, "%s: imports need sorting (%d hunks)\n", path, len(hunks))
		return true, nil
	case a.review:
		accepted, confirmed, err := tui.Review(path, snap, hunks)
		if err != nil {
			return true, err
		}
		if !confirmed {
			a.log.Info(ctx, "review aborted, file untouched", logging.F("path", path))
			return true, nil
		}
		if len(accepted) == 0 {
			return true, nil
		}
		return true, a.applyAndWrite(ctx, path, snap, accepted)
	case a.write:
		return true, a.applyAndWrite(ctx, path, snap, hunks)
	default:
		a.printer.print(a.stdout, path, snap, hunks)
		return true, nil
	}
}

func (a *app) resolveHunks(content, output string) ([]diffedit.Hunk, error) {
	if a.tmpl.Output == config.OutputFull {
		return diffgen.Hunks(content, output), nil
	}
	return diffedit.ParsePatch(output)
}

func (a *app) applyAndWrite(ctx context.Context, path string, snap diffedit.Snapshot, hunks []diffedit.Hunk) error {
	edits, err := diffedit.SynthesizeEdits(snap, hunks)
	if err != nil {
		return err
	}
	result, err := diffedit.ApplyEdits(snap, edits)
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(result), mode); err != nil {
		return err
	}
	a.log.Info(ctx, "imports sorted",
		logging.F("path", path),
		logging.F("hunks", len(hunks)))
	fmt.Fprintf(a.stdout, "%s: sorted (%d hunks applied)\n", path, len(hunks))
	return nil
}

// diffPrinter renders pending hunks as a colored unified diff. Colors are
// dropped when the terminal does not support them or -no-color is set.
type diffPrinter struct {
	plain  bool
	header lipgloss.Style
	add    lipgloss.Style
	del    lipgloss.Style
}

func newDiffPrinter(noColor bool) *diffPrinter {
	plain := noColor || termenv.EnvColorProfile() == termenv.Ascii
	return &diffPrinter{
		plain:  plain,
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		add:    lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		del:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

func (p *diffPrinter) print(out io.Writer, path string, snap diffedit.Snapshot, hunks []diffedit.Hunk) {
	fmt.Fprintln(out, p.styled(p.header, "--- "+path))
	fmt.Fprintln(out, p.styled(p.header, "+++ "+path+" (sorted)"))
	lines := snap.Lines()
	for _, hunk := range hunks {
		header := fmt.Sprintf("@@ -%s +%d @@", describeRange(hunk), len(hunk.NewLines))
		fmt.Fprintln(out, p.styled(p.header, header))
		for i := hunk.OrigStart; i < hunk.OrigStart+hunk.OrigLines && i < len(lines); i++ {
			fmt.Fprintln(out, p.styled(p.del, "-"+lines[i]))
		}
		for _, line := range hunk.NewLines {
			fmt.Fprintln(out, p.styled(p.add, "+"+line))
		}
	}
}

func (p *diffPrinter) styled(style lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return style.Render(text)
}

func describeRange(hunk diffedit.Hunk) string {
	return fmt.Sprintf("%d,%d", hunk.OrigStart+1, hunk.OrigLines)
}

func countTrue(flags ...bool) int {
	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}
	return count
}
