package strategy

import (
	"context"
	"sort"

	"github.com/compozy/tagrelease/internal/domain"
)

// InitialTag is proposed when the repository has no tags at all.
const InitialTag = "v0.1.0"

// ErrNoSemverTagsMessage is reported when tags exist but none is a semantic version.
const ErrNoSemverTagsMessage = "The repository has no tags that are SemVer compliant, " +
	"you must specify a tag name with the --tag option."

// Option names consumed by the semver strategy.
const (
	OptionMajor      = "major"
	OptionMinor      = "minor"
	OptionPremajor   = "premajor"
	OptionPreminor   = "preminor"
	OptionPrepatch   = "prepatch"
	OptionPrerelease = "prerelease"
	OptionPreid      = "preid"
)

// SemverStrategy increments the highest semantic version tag.
type SemverStrategy struct{}

// NewSemverStrategy creates a SemverStrategy.
func NewSemverStrategy() *SemverStrategy {
	return &SemverStrategy{}
}

// AvailableOptions implements OptionProvider.
func (s *SemverStrategy) AvailableOptions() []domain.OptionSpec {
	return []domain.OptionSpec{
		{
			Name:        OptionMajor,
			Shorthand:   "j",
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "when strategy is 'semver', specifies that the major version number should be incremented",
		},
		{
			Name:      OptionMinor,
			Shorthand: "i",
			Type:      domain.OptionTypeBool,
			Default:   false,
			Description: "when strategy is 'semver', specifies that the minor version number should be incremented, " +
				"ignored if '--major' option is true",
		},
		{
			Name:        OptionPremajor,
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "when strategy is 'semver', increments the major version and starts a prerelease",
		},
		{
			Name:        OptionPreminor,
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "when strategy is 'semver', increments the minor version and starts a prerelease",
		},
		{
			Name:        OptionPrepatch,
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "when strategy is 'semver', increments the patch version and starts a prerelease",
		},
		{
			Name:        OptionPrerelease,
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "when strategy is 'semver', advances the prerelease counter, starting one if needed",
		},
		{
			Name:        OptionPreid,
			Type:        domain.OptionTypeString,
			Default:     "",
			Description: "when strategy is 'semver', the prerelease identifier to use (e.g. 'beta')",
		},
	}
}

// LatestTag returns the tag holding the highest semantic version, or "".
func (s *SemverStrategy) LatestTag(
	_ context.Context,
	_ domain.Project,
	tags []string,
	_ domain.Options,
) (string, error) {
	tag, _ := latestSemver(tags)
	return tag, nil
}

// NextTag increments the latest semantic version according to opts.
func (s *SemverStrategy) NextTag(
	_ context.Context,
	_ domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	latestTag, latest := latestSemver(tags)
	if latest == nil {
		if len(tags) > 0 {
			return "", domain.Abort(ErrNoSemverTagsMessage)
		}
		return InitialTag, nil
	}
	next, err := latest.Bump(bumpKind(opts), opts.String(OptionPreid))
	if err != nil {
		return "", err
	}
	if domain.HasPrefix(latestTag) {
		return next.Tag(), nil
	}
	return next.String(), nil
}

func bumpKind(opts domain.Options) domain.BumpKind {
	switch {
	case opts.Bool(OptionMajor):
		return domain.BumpMajor
	case opts.Bool(OptionMinor):
		return domain.BumpMinor
	case opts.Bool(OptionPremajor):
		return domain.BumpPremajor
	case opts.Bool(OptionPreminor):
		return domain.BumpPreminor
	case opts.Bool(OptionPrepatch):
		return domain.BumpPrepatch
	case opts.Bool(OptionPrerelease):
		return domain.BumpPrerelease
	default:
		return domain.BumpPatch
	}
}

type versionedTag struct {
	name    string
	version *domain.Version
}

// latestSemver sorts the valid tags by semver precedence, not lexically, and
// returns the highest one.
func latestSemver(tags []string) (string, *domain.Version) {
	candidates := make([]versionedTag, 0, len(tags))
	for _, tag := range tags {
		v, err := domain.NewVersion(tag)
		if err != nil {
			continue
		}
		candidates = append(candidates, versionedTag{name: tag, version: v})
	}
	if len(candidates) == 0 {
		return "", nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].version.Compare(candidates[j].version) > 0
	})
	return candidates[0].name, candidates[0].version
}
