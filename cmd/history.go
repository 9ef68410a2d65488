package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/repository"
)

func newHistoryCmd(c *container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the journal of the latest release run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireGit(); err != nil {
				return err
			}
			journal := c.journal()
			if journal == nil {
				return domain.Abort("The repository has no git directory to read the journal from")
			}
			return printLatestRun(cmd, journal, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw run record as JSON")
	return cmd
}

func printLatestRun(cmd *cobra.Command, journal repository.JournalRepository, asJSON bool) error {
	out := cmd.OutOrStdout()
	record, err := journal.LoadLatest(cmd.Context())
	if errors.Is(err, repository.ErrNoRuns) {
		fmt.Fprintln(out, "No release runs recorded.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load latest run: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	writeRunRecord(out, record)
	return nil
}

func writeRunRecord(out io.Writer, record *domain.RunRecord) {
	fmt.Fprintf(out, "Session:\t%s\n", record.SessionID)
	fmt.Fprintf(out, "Started:\t%s\n", record.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Status:\t%s\n", record.Status)
	if record.Tags.Next != "" {
		fmt.Fprintf(out, "Tag:\t%s\n", record.Tags.Next)
	}
	if record.Tags.HasLatest() {
		fmt.Fprintf(out, "Previous:\t%s\n", record.Tags.Latest)
	}
	if record.Branch != "" {
		fmt.Fprintf(out, "Branch:\t%s\n", record.Branch)
	}
	if record.Local {
		fmt.Fprintln(out, "Remote:\t(local only)")
	} else if record.Remote != "" {
		fmt.Fprintf(out, "Remote:\t%s\n", record.Remote)
	}
	if record.Error != "" {
		fmt.Fprintf(out, "Error:\t%s\n", record.Error)
	}
	fmt.Fprintln(out, "Steps:")
	for _, step := range record.Steps {
		fmt.Fprintf(out, "  %-20s %s\n", step.Name, step.Status)
	}
}
