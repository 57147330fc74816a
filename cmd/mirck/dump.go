package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirck/internal/mir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.mirpk>",
	Short: "Print the canonical text form of a MIR module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("simplify", false, "simplify the CFG before printing")
	dumpCmd.Flags().Int("comment-column", 32, "column for local comments (0 disables alignment)")
	dumpCmd.Flags().Bool("liveness", false, "annotate blocks with their live-in locals")
}

func runDump(cmd *cobra.Command, args []string) error {
	simplify, err := cmd.Flags().GetBool("simplify")
	if err != nil {
		return fmt.Errorf("failed to get simplify flag: %w", err)
	}
	column, err := cmd.Flags().GetInt("comment-column")
	if err != nil {
		return fmt.Errorf("failed to get comment-column flag: %w", err)
	}
	liveness, err := cmd.Flags().GetBool("liveness")
	if err != nil {
		return fmt.Errorf("failed to get liveness flag: %w", err)
	}

	m, err := mir.ReadModuleFile(args[0])
	if err != nil {
		return err
	}
	if simplify {
		if err := mir.ValidateModule(m); err != nil {
			return fmt.Errorf("%s: cannot simplify an invalid module: %w", args[0], err)
		}
		for _, b := range m.Bodies {
			if b != nil {
				mir.SimplifyCFG(b)
			}
		}
	}
	return mir.DumpModule(cmd.OutOrStdout(), m, mir.DumpOptions{CommentColumn: column, Liveness: liveness})
}
