package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/repository"
)

type stubJournal struct {
	record *domain.RunRecord
	err    error
}

func (s *stubJournal) Save(context.Context, *domain.RunRecord) error { return nil }

func (s *stubJournal) Load(context.Context, string) (*domain.RunRecord, error) {
	return s.record, s.err
}

func (s *stubJournal) LoadLatest(context.Context) (*domain.RunRecord, error) {
	return s.record, s.err
}

func runHistory(t *testing.T, journal repository.JournalRepository, asJSON bool) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := printLatestRun(cmd, journal, asJSON)
	return out.String(), err
}

func TestHistory(t *testing.T) {
	t.Run("Should report an empty journal", func(t *testing.T) {
		out, err := runHistory(t, &stubJournal{err: repository.ErrNoRuns}, false)
		require.NoError(t, err)
		assert.Equal(t, "No release runs recorded.\n", out)
	})

	t.Run("Should print the latest run", func(t *testing.T) {
		rec := domain.NewRunRecord("abc")
		rec.StartedAt = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
		rec.Tags = domain.TagResult{Latest: "v1.0.0", Next: "v1.0.1"}
		rec.Remote = "origin"
		rec.MarkStepStarted(domain.StepCheckAtTag)
		rec.MarkStepCompleted(domain.StepCheckAtTag)
		rec.MarkStepStarted(domain.StepPromptTag)
		rec.MarkStepFailed(domain.StepPromptTag, domain.Abort("Aborted."))

		out, err := runHistory(t, &stubJournal{record: rec}, false)
		require.NoError(t, err)
		assert.Contains(t, out, "Session:\tabc\n")
		assert.Contains(t, out, "Started:\t2024-05-01T10:00:00Z\n")
		assert.Contains(t, out, "Status:\taborted\n")
		assert.Contains(t, out, "Tag:\tv1.0.1\n")
		assert.Contains(t, out, "Previous:\tv1.0.0\n")
		assert.Contains(t, out, "Remote:\torigin\n")
		assert.Contains(t, out, "Error:\tAborted.\n")
		assert.Contains(t, out, "check_at_tag")
		assert.Contains(t, out, "prompt_tag")
	})

	t.Run("Should print JSON on request", func(t *testing.T) {
		rec := domain.NewRunRecord("abc")
		rec.Local = true
		out, err := runHistory(t, &stubJournal{record: rec}, true)
		require.NoError(t, err)
		assert.Contains(t, out, `"session_id": "abc"`)
		assert.Contains(t, out, `"local": true`)
	})

	t.Run("Should wrap journal failures", func(t *testing.T) {
		_, err := runHistory(t, &stubJournal{err: errors.New("checksum mismatch")}, false)
		assert.EqualError(t, err, "failed to load latest run: checksum mismatch")
	})
}
