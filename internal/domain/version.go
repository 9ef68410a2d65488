package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BumpKind selects how a version is incremented.
type BumpKind string

const (
	BumpMajor      BumpKind = "major"
	BumpMinor      BumpKind = "minor"
	BumpPatch      BumpKind = "patch"
	BumpPremajor   BumpKind = "premajor"
	BumpPreminor   BumpKind = "preminor"
	BumpPrepatch   BumpKind = "prepatch"
	BumpPrerelease BumpKind = "prerelease"
)

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string, accepting a "v" prefix.
func NewVersion(s string) (*Version, error) {
	v, err := semver.StrictNewVersion(StripPrefix(s))
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// Bump increments v following npm semver rules. Prerelease counters start at
// 0; a preid different from the current identifier resets the counter.
// Build metadata is dropped.
func (v *Version) Bump(kind BumpKind, preid string) (*Version, error) {
	major, minor, patch := v.Major(), v.Minor(), v.Patch()
	pre := splitPrerelease(v.Prerelease())
	switch kind {
	case BumpMajor:
		if minor != 0 || patch != 0 || len(pre) == 0 {
			major++
		}
		minor, patch, pre = 0, 0, nil
	case BumpMinor:
		if patch != 0 || len(pre) == 0 {
			minor++
		}
		patch, pre = 0, nil
	case BumpPatch:
		if len(pre) == 0 {
			patch++
		}
		pre = nil
	case BumpPremajor:
		major, minor, patch = major+1, 0, 0
		pre = incPrerelease(nil, preid)
	case BumpPreminor:
		minor, patch = minor+1, 0
		pre = incPrerelease(nil, preid)
	case BumpPrepatch:
		patch++
		pre = incPrerelease(nil, preid)
	case BumpPrerelease:
		if len(pre) == 0 {
			patch++
		}
		pre = incPrerelease(pre, preid)
	default:
		return nil, fmt.Errorf("unknown bump kind: %s", kind)
	}
	return &Version{semver.New(major, minor, patch, strings.Join(pre, "."), "")}, nil
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the version without any prefix.
func (v *Version) String() string {
	return v.Version.String()
}

// Tag returns the version with the "v" prefix.
func (v *Version) Tag() string {
	return PrependPrefix(v.String())
}

func splitPrerelease(pre string) []string {
	if pre == "" {
		return nil
	}
	return strings.Split(pre, ".")
}

func incPrerelease(pre []string, preid string) []string {
	out := append([]string(nil), pre...)
	if len(out) == 0 {
		out = []string{"0"}
	} else {
		bumped := false
		for i := len(out) - 1; i >= 0; i-- {
			if n, err := strconv.ParseUint(out[i], 10, 64); err == nil {
				out[i] = strconv.FormatUint(n+1, 10)
				bumped = true
				break
			}
		}
		if !bumped {
			out = append(out, "0")
		}
	}
	if preid != "" {
		if out[0] != preid || len(out) < 2 || !isNumeric(out[1]) {
			out = []string{preid, "0"}
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
