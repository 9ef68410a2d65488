package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/tagrelease/pkg/version"
)

func setBuildInfo(t *testing.T, v, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldBuilt := version.Version, version.CommitHash, version.BuildDate
	t.Cleanup(func() {
		version.Version, version.CommitHash, version.BuildDate = oldVersion, oldCommit, oldBuilt
	})
	version.Version, version.CommitHash, version.BuildDate = v, commit, built
}

func TestWriteVersion(t *testing.T) {
	t.Run("Should print the version with a short commit and build date", func(t *testing.T) {
		setBuildInfo(t, "1.4.0", "0123456789abcdef", "2024-05-01T10:00:00Z")
		var out bytes.Buffer
		writeVersion(&out, false)
		assert.Equal(t, "tag-release v1.4.0 (commit 0123456, built 2024-05-01T10:00:00Z)\n", out.String())
	})
	t.Run("Should leave out build details that were not injected", func(t *testing.T) {
		setBuildInfo(t, "dev", "unknown", " ")
		var out bytes.Buffer
		writeVersion(&out, false)
		assert.Equal(t, "tag-release dev\n", out.String())
	})
	t.Run("Should print only the version when short", func(t *testing.T) {
		setBuildInfo(t, "v2.0.0", "abc", "today")
		var out bytes.Buffer
		writeVersion(&out, true)
		assert.Equal(t, "v2.0.0\n", out.String())
	})
}

func TestVersionCmd(t *testing.T) {
	t.Run("Should accept the short flag", func(t *testing.T) {
		setBuildInfo(t, "1.0.0", "unknown", "unknown")
		cmd := newVersionCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--short"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, "v1.0.0\n", out.String())
	})
}
