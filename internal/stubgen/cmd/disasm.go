package cmd

import (
	"fmt"
	"os"
	pathpkg "path/filepath"

	"github.com/spf13/cobra"

	"stubgen/internal/disasm"
	"stubgen/internal/stub"
	"stubgen/internal/ui/colorize"
)

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <stub>",
		Short: "Disassemble an assembled stub",
		Long: `Disasm decodes the binary image <stub> as x86 code. The operand size
comes from the stub name (x86_32_* or x86_64_*) unless --bits is given.`,
		Example: `
stubgen disasm x86_64_linux_stub
stubgen disasm --bits 32 custom_stub
  `,
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

			arch := name.Arch()
			if bits, _ := cmd.Flags().GetInt("bits"); bits != 0 {
				switch bits {
				case 32:
					arch = stub.ArchX86_32
				case 64:
					arch = stub.ArchX86_64
				default:
					return fmt.Errorf("--bits must be 32 or 64, got %d", bits)
				}
			}
			if arch == stub.ArchUnknown {
				return fmt.Errorf("cannot infer architecture of %s; use --bits", name)
			}

			data, err := os.ReadFile(joinDir(dir, name.Binary()))
			if err != nil {
				return fmt.Errorf("failed to read binary: %w", err)
			}
			stream, err := disasm.Decode(data, arch)
			if err != nil {
				return err
			}

			listing := stream.String()
			if isTerminal(cmd.OutOrStdout()) {
				listing = colorize.Listing(listing)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), listing)
			return err
		},
	}
	cmd.Flags().Int("bits", 0, "Operand size (32 or 64)")
	return cmd
}

func joinDir(dir, file string) string {
	if dir == "" {
		return file
	}
	return pathpkg.Join(dir, file)
}
