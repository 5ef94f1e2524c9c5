package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stubgen/internal/carray"
	"stubgen/internal/stub"
	"stubgen/internal/ui/colorize"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <stub>",
		Short: "Print the C declaration for an assembled stub",
		Long: `Show renders the declaration for the binary image <stub> without
running the assembler or writing <stub>.c. Piped output is byte-identical
to the generated file.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ResolveCwd(cmd)
			if err != nil {
				return err
			}
			name := stub.Name(args[0])
			if err := name.Validate(); err != nil {
				return err
			}

			data, err := os.ReadFile(joinDir(dir, name.Binary()))
			if err != nil {
				return fmt.Errorf("failed to read binary: %w", err)
			}
			text, err := carray.Declaration(name, data)
			if err != nil {
				return err
			}

			if isTerminal(cmd.OutOrStdout()) {
				if colored, err := colorize.C(text); err == nil {
					text = colored
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}
