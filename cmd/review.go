package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/screens/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review missed questions that are due",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, func(env screen.Env) screen.Screen {
			return review.New(env)
		})
	},
}
