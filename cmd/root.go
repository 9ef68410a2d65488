package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/tagrelease/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "tag-release",
	Short: "Tag the current commit as a release and push it",
	Long: `tag-release computes the next release tag, updates package manifests,
commits pending changes, creates the tag and pushes the branch and tag to a
remote. Lifecycle hooks and tagging strategies are read from
config/release.{yaml,yml,json,toml} in the project root.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &domain.AbortError{
			Msg: fmt.Sprintf("%v\nRun '%s --help' for usage.", err, cmd.CommandPath()),
			Err: err,
		}
	})
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which cancels pending prompts.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
