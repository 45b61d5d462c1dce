package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/screens/test"
	"github.com/cfaprep/cfaprep/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a module or book test",
	Example: "  cfaprep play --book 1 --module 3\n" +
		"  cfaprep play --book 2 --mode learning\n" +
		"  cfaprep play --book 1 --module 1 --mode 90_second",
	RunE: func(cmd *cobra.Command, args []string) error {
		book, _ := cmd.Flags().GetInt("book")
		module, _ := cmd.Flags().GetInt("module")
		modeName, _ := cmd.Flags().GetString("mode")

		if book <= 0 {
			return fmt.Errorf("--book must be a positive number")
		}
		mode, err := session.ParseMode(modeName)
		if err != nil {
			return err
		}
		src := session.BookSource(book)
		if module > 0 {
			src = session.ModuleSource(book, module)
		}
		return runApp(cmd, func(env screen.Env) screen.Screen {
			return test.New(env, src, mode)
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start a full mock exam (90 seconds per question)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, func(env screen.Env) screen.Screen {
			return test.New(env, session.MockExamSource(), session.NinetySecond)
		})
	},
}

func init() {
	playCmd.Flags().Int("book", 0, "Book number")
	playCmd.Flags().Int("module", 0, "Module number; omit for a book test")
	playCmd.Flags().String("mode", "standard", "Mode: standard, learning or 90_second")
}
