package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/compozy/tagrelease/pkg/version"
)

const shortCommitLen = 7

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the tag-release version and build details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeVersion(cmd.OutOrStdout(), short)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}

// writeVersion prints "tag-release v1.2.3 (commit abc1234, built <date>)",
// leaving out build details that were not injected.
func writeVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version.Summary())
		return
	}
	var details []string
	if commit := buildValue(version.CommitHash); commit != "" {
		if len(commit) > shortCommitLen {
			commit = commit[:shortCommitLen]
		}
		details = append(details, "commit "+commit)
	}
	if built := buildValue(version.BuildDate); built != "" {
		details = append(details, "built "+built)
	}
	line := "tag-release " + version.Summary()
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

func buildValue(value string) string {
	v := strings.TrimSpace(value)
	if v == "unknown" {
		return ""
	}
	return v
}
