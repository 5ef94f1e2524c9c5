package cmd

import (
	"github.com/spf13/cobra"

	"stubgen/internal/pipeline"
	"stubgen/internal/report"
	"stubgen/internal/stub"
)

func newVerifyCmd(stubs stub.Set) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check generated C files against the assembled binaries",
		Long: `Verify decodes every <stub>.c and compares its bytes with the binary
image the assembler last wrote to <stub>. The assembler is not run.
Exits non-zero if any stub is out of date.`,
		Example: `
# Fail the build when a stub was reassembled without regenerating its C file
stubgen verify
  `,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ResolveCwd(cmd)
			if err != nil {
				return err
			}
			jsonOutput, _ := cmd.Flags().GetBool("json")

			results, verifyErr := pipeline.Verify(dir, stubs)
			if jsonOutput {
				if err := report.WriteJSON(cmd.OutOrStdout(), results, verifyErr); err != nil {
					return err
				}
				return verifyErr
			}
			if err := printResults(cmd.OutOrStdout(), "Stub verification", results); err != nil {
				return err
			}
			return verifyErr
		},
	}
	cmd.Flags().BoolP("json", "j", false, jsonUsage)
	return cmd
}
