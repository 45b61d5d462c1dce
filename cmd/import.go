package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/bank"
)

var importCmd = &cobra.Command{
	Use:   "import <questions.json | dir>",
	Short: "Validate question files and add them to the local bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := cfg.ResolveDataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		imported, err := bank.Import(args[0], dataDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := 0
		for _, im := range imported {
			fmt.Fprintf(out, "book %d module %d: %d questions -> %s\n", im.BookID, im.ModuleID, im.Questions, im.Path)
			total += im.Questions
		}
		fmt.Fprintf(out, "Imported %d questions in %d module(s) into %s\n", total, len(imported), dataDir)
		return nil
	},
}
