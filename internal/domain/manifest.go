package domain

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ManifestVersionKey is the top-level key kept in sync with the release tag.
const ManifestVersionKey = "version"

var manifestStyle = &pretty.Options{Indent: "  "}

// Manifest is a JSON object edited in place, so rewriting a package.json only
// touches the fields that changed and keeps the original key order.
type Manifest struct {
	data []byte
}

// ParseManifest validates data, which must hold a JSON object.
func ParseManifest(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New("manifest must be a JSON object")
	}
	return &Manifest{data: append([]byte(nil), data...)}, nil
}

// Has reports whether key is present at the top level.
func (m *Manifest) Has(key string) bool {
	return gjson.GetBytes(m.data, gjson.Escape(key)).Exists()
}

// SetString sets key to a JSON string, appending the key if it is new.
func (m *Manifest) SetString(key, value string) error {
	data, err := sjson.SetBytes(m.data, gjson.Escape(key), value)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// Format renders the manifest with 2-space indentation and a trailing newline.
func (m *Manifest) Format() []byte {
	return pretty.PrettyOptions(m.data, manifestStyle)
}
