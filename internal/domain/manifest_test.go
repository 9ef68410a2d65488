package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	t.Run("Should keep key order when formatting", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"name":"app","version":"1.0.0","scripts":{"test":"x"},"files":[]}`))
		require.NoError(t, err)
		out := m.Format()
		expected := "{\n" +
			"  \"name\": \"app\",\n" +
			"  \"version\": \"1.0.0\",\n" +
			"  \"scripts\": {\n" +
			"    \"test\": \"x\"\n" +
			"  },\n" +
			"  \"files\": []\n" +
			"}\n"
		assert.Equal(t, expected, string(out))
	})
	t.Run("Should replace a string value in place", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"version":"1.0.0","name":"a<b>"}`))
		require.NoError(t, err)
		require.NoError(t, m.SetString(ManifestVersionKey, "1.0.1"))
		out := m.Format()
		assert.Equal(t, "{\n  \"version\": \"1.0.1\",\n  \"name\": \"a<b>\"\n}\n", string(out))
	})
	t.Run("Should keep arrays expanded one element per line", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"version":"1.0.0","files":["a","b"]}`))
		require.NoError(t, err)
		out := m.Format()
		expected := "{\n" +
			"  \"version\": \"1.0.0\",\n" +
			"  \"files\": [\n" +
			"    \"a\",\n" +
			"    \"b\"\n" +
			"  ]\n" +
			"}\n"
		assert.Equal(t, expected, string(out))
	})
	t.Run("Should format an empty object", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{}`))
		require.NoError(t, err)
		out := m.Format()
		assert.Equal(t, "{}\n", string(out))
	})
	t.Run("Should reject non-object documents", func(t *testing.T) {
		_, err := ParseManifest([]byte(`["version"]`))
		assert.ErrorContains(t, err, "must be a JSON object")
		_, err = ParseManifest([]byte(`{"version":`))
		assert.Error(t, err)
	})
	t.Run("Should report missing keys", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"name":"app","nested":{"version":"1"}}`))
		require.NoError(t, err)
		assert.False(t, m.Has(ManifestVersionKey))
		assert.True(t, m.Has("name"))
	})
	t.Run("Should not treat dotted keys as paths", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"a":{"b":"x"}}`))
		require.NoError(t, err)
		assert.False(t, m.Has("a.b"))
	})
}
