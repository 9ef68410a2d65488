// Package strategy computes release tag names from the existing tag set.
//
// A Strategy produces the next tag; it may also report the latest release
// (LatestTagger) and contribute command line options (OptionProvider).
// Strategies are described by a Spec, a closed set of variants that Resolve
// normalizes into a Strategy once per run.
package strategy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/compozy/tagrelease/internal/domain"
)

const (
	// NameSemver is the name of the semantic versioning strategy.
	NameSemver = "semver"
	// NameDate is the name of the date based strategy.
	NameDate = "date"
	// DefaultName is the strategy used when none is configured.
	DefaultName = NameSemver
)

// Strategy computes the next tag name.
type Strategy interface {
	NextTag(ctx context.Context, project domain.Project, tags []string, opts domain.Options) (string, error)
}

// LatestTagger is implemented by strategies that can identify the latest release.
// An empty result means no previous release.
type LatestTagger interface {
	LatestTag(ctx context.Context, project domain.Project, tags []string, opts domain.Options) (string, error)
}

// OptionProvider is implemented by strategies that declare their own options.
type OptionProvider interface {
	AvailableOptions() []domain.OptionSpec
}

// NextTagFunc computes the next tag name.
type NextTagFunc func(ctx context.Context, project domain.Project, tags []string, opts domain.Options) (string, error)

// LatestTagFunc reports the latest release tag, or "" when there is none.
type LatestTagFunc func(ctx context.Context, project domain.Project, tags []string, opts domain.Options) (string, error)

// Kind enumerates the Spec variants.
type Kind int

const (
	// KindNamed refers to a strategy registered by name.
	KindNamed Kind = iota
	// KindFunc wraps a bare NextTagFunc.
	KindFunc
	// KindObject carries NextTag, an optional LatestTag and declared options.
	KindObject
)

// Spec describes which strategy a run uses.
type Spec struct {
	Kind    Kind
	Name    string
	Next    NextTagFunc
	Latest  LatestTagFunc
	Options []domain.OptionSpec
}

// Named returns a Spec referring to a registered strategy.
func Named(name string) Spec {
	return Spec{Kind: KindNamed, Name: name}
}

// Func returns a Spec wrapping fn as the strategy's NextTag.
func Func(fn NextTagFunc) Spec {
	return Spec{Kind: KindFunc, Next: fn}
}

// Object returns a Spec for a custom strategy. latest and options may be nil.
func Object(next NextTagFunc, latest LatestTagFunc, options []domain.OptionSpec) Spec {
	return Spec{Kind: KindObject, Next: next, Latest: latest, Options: options}
}

// AvailableOptions returns the options declared by a custom strategy.
func (s Spec) AvailableOptions() []domain.OptionSpec {
	if s.Kind != KindObject {
		return nil
	}
	return s.Options
}

// Resolve normalizes spec into a Strategy. Unknown names abort the run.
func Resolve(spec Spec, registry *Registry) (Strategy, error) {
	switch spec.Kind {
	case KindNamed:
		if s, ok := registry.Get(spec.Name); ok {
			return s, nil
		}
		return nil, domain.Abortf("Unknown versioning strategy: '%s'", spec.Name)
	case KindFunc:
		if spec.Next == nil {
			return nil, fmt.Errorf("strategy function is nil")
		}
		return funcStrategy{next: spec.Next}, nil
	case KindObject:
		if spec.Next == nil {
			return nil, fmt.Errorf("custom strategy does not define a next tag function")
		}
		return &objectStrategy{next: spec.Next, latest: spec.Latest, options: spec.Options}, nil
	default:
		return nil, fmt.Errorf("unknown strategy kind: %d", spec.Kind)
	}
}

type funcStrategy struct {
	next NextTagFunc
}

func (s funcStrategy) NextTag(
	ctx context.Context,
	project domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	return s.next(ctx, project, tags, opts)
}

type objectStrategy struct {
	next    NextTagFunc
	latest  LatestTagFunc
	options []domain.OptionSpec
}

func (s *objectStrategy) NextTag(
	ctx context.Context,
	project domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	return s.next(ctx, project, tags, opts)
}

func (s *objectStrategy) LatestTag(
	ctx context.Context,
	project domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	if s.latest == nil {
		return "", nil
	}
	return s.latest(ctx, project, tags, opts)
}

func (s *objectStrategy) AvailableOptions() []domain.OptionSpec {
	return s.options
}

// Registry maps strategy names to implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// DefaultRegistry returns a registry holding the built-in strategies. now is
// the clock used by the date strategy; nil means time.Now.
func DefaultRegistry(now func() time.Time) *Registry {
	r := NewRegistry()
	r.Register(NameSemver, NewSemverStrategy())
	r.Register(NameDate, NewDateStrategy(now))
	return r
}

// Register adds or replaces a named strategy.
func (r *Registry) Register(name string, s Strategy) {
	r.strategies[name] = s
}

// Get looks up a strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableOptions collects the options declared by every registered strategy,
// in name order, skipping duplicates.
func (r *Registry) AvailableOptions() []domain.OptionSpec {
	var out []domain.OptionSpec
	seen := make(map[string]bool)
	for _, name := range r.Names() {
		provider, ok := r.strategies[name].(OptionProvider)
		if !ok {
			continue
		}
		for _, opt := range provider.AvailableOptions() {
			if seen[opt.Name] {
				continue
			}
			seen[opt.Name] = true
			out = append(out, opt)
		}
	}
	return out
}
