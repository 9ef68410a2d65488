package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Project identifies the repository being released. It is owned by the caller
// and passed by value to strategies and hooks.
type Project struct {
	Root string
	Name string
}

// NewProject builds a Project rooted at root, named after its directory.
func NewProject(root string) Project {
	return Project{Root: root, Name: filepath.Base(root)}
}

// TagResult holds the tag computed for a release. Latest is empty when the
// strategy has no notion of a previous release.
type TagResult struct {
	Latest string `json:"latest,omitempty"`
	Next   string `json:"next"`
}

// HasLatest reports whether a previous release tag was detected.
func (r TagResult) HasLatest() bool {
	return r.Latest != ""
}

// TagInfo describes an existing tag in the repository.
type TagInfo struct {
	Name string
	SHA  string
	Date time.Time
}

// TagNames extracts the names of tags, preserving order.
func TagNames(tags []TagInfo) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

// RefKind distinguishes branch refs from tag refs.
type RefKind string

const (
	RefKindBranch RefKind = "branch"
	RefKindTag    RefKind = "tag"
)

// Ref is a treeish queued for pushing to a remote.
type Ref struct {
	Name string
	Kind RefKind
}

// BranchRef returns a Ref for a branch name.
func BranchRef(name string) Ref {
	return Ref{Name: name, Kind: RefKindBranch}
}

// TagRef returns a Ref for a tag name.
func TagRef(name string) Ref {
	return Ref{Name: name, Kind: RefKindTag}
}

func (r Ref) String() string {
	return r.Name
}

// HasTrackedChanges reports whether a porcelain status lists anything other
// than untracked files.
func HasTrackedChanges(status string) bool {
	for _, line := range strings.Split(status, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "??") {
			continue
		}
		return true
	}
	return false
}
