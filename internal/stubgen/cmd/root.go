package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"stubgen/internal/logging"
	"stubgen/internal/nasm"
	"stubgen/internal/pipeline"
	"stubgen/internal/report"
	"stubgen/internal/stub"
	"stubgen/internal/stubgen/styles"
	"stubgen/internal/ui/colorize"
)

var rootCmd = newRootCmd(stub.Default)

// jsonUsage is shared by the root and verify --json flags.
const jsonUsage = "Output results as JSON (same report format for generate and verify)"

// newRootCmd builds the command tree for the given stub set.
func newRootCmd(stubs stub.Set) *cobra.Command {
	root := &cobra.Command{
		Use:   "stubgen",
		Short: "Assemble loader stubs and emit them as C arrays",
		Long: `Stubgen assembles every loader stub with nasm and writes <stub>.c,
a header-guarded "unsigned char STUB_<stub>[]" declaration holding the raw bytes.

Stubs: ` + fmt.Sprint(stubs),
		Example: `
# Regenerate all stubs in the current directory
stubgen

# Regenerate using a specific assembler, from another directory
stubgen -a /usr/local/bin/nasm -c asmloader/stubs

# Machine-readable report
stubgen --json
  `,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ResolveCwd(cmd)
			if err != nil {
				return err
			}
			lg := newLogger(cmd)
			defer lg.Close()

			assembler, _ := cmd.Flags().GetString("assembler")
			jsonOutput, _ := cmd.Flags().GetBool("json")

			asm := nasm.New(assembler, dir)
			asm.Stdout = cmd.ErrOrStderr()
			asm.Stderr = cmd.ErrOrStderr()

			runner := &pipeline.Runner{Assembler: asm, Dir: dir, Logger: lg.Logger}
			results, runErr := runner.Run(cmd.Context(), stubs)

			if jsonOutput {
				if err := report.WriteJSON(cmd.OutOrStdout(), results, runErr); err != nil {
					return err
				}
				return runErr
			}
			if err := printResults(cmd.OutOrStdout(), "Generated stubs", results); err != nil {
				return err
			}
			return runErr
		},
	}

	root.PersistentFlags().StringP("cwd", "c", "", "Directory holding the stub sources")
	root.PersistentFlags().BoolP("debug", "d", false, "Debug")
	root.PersistentFlags().StringP("assembler", "a", "", "Assembler executable (default $"+nasm.EnvPath+" or "+nasm.DefaultPath+")")
	root.Flags().BoolP("json", "j", false, jsonUsage)

	root.AddCommand(newVerifyCmd(stubs))
	root.AddCommand(newShowCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newSchemaCmd())
	return root
}

func newLogger(cmd *cobra.Command) *logging.LoggerCloser {
	lg := logging.NewLogger()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		lg.SetLevel(log.DebugLevel)
	}
	return lg
}

// printResults writes a styled report on terminals and plain lines otherwise.
func printResults(w io.Writer, title string, results []report.Result) error {
	if isTerminal(w) {
		_, err := fmt.Fprint(w, renderStyled(title, results))
		return err
	}
	return report.Plain(w, results)
}

// renderStyled heads the report with the title badge. Verified results get
// one colored status line each; generated results are rendered as a table.
func renderStyled(title string, results []report.Result) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(results) == 0 || report.Status(results[0]) == "" {
		b.WriteString(styles.RenderMarkdown(report.Markdown("", results), 100))
		return b.String()
	}
	for _, r := range results {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			styles.Badge(report.Status(r)),
			r.Name,
			styles.Muted.Render(fmt.Sprintf("%d bytes  %s", r.Size, r.Output)))
	}
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd()) && colorize.Enabled()
}

// ResolveCwd returns the absolute directory named by --cwd, or the
// current working directory.
func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		abs, err := pathpkg.Abs(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to resolve directory: %v", err)
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("cannot access directory: %w", err)
		}
		if !fi.IsDir() {
			return "", fmt.Errorf("not a directory: %s", cwd)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}

func Execute() {
	// Bypass fang's styled output when piping, e.g. inside make.
	if !term.IsTerminal(os.Stdout.Fd()) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := rootCmd.ExecuteContext(ctx); err != nil {
			stop()
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
