package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/repository"
	"github.com/compozy/tagrelease/internal/strategy"
)

// ErrEmptyTagMessage is reported when a strategy produces no tag name.
const ErrEmptyTagMessage = "Tagging strategy must return a non-empty tag name"

// ResolveTagUseCase computes the tags of a release. Strategy is only needed
// when no explicit tag is given.
type ResolveTagUseCase struct {
	GitRepo  repository.GitRepository
	Strategy strategy.Strategy
}

// Execute returns explicitTag as next when set, without a latest tag.
// Otherwise the strategy computes next, and latest when it can.
func (uc *ResolveTagUseCase) Execute(
	ctx context.Context,
	project domain.Project,
	explicitTag string,
	opts domain.Options,
) (domain.TagResult, error) {
	if explicitTag != "" {
		return domain.TagResult{Next: explicitTag}, nil
	}
	if uc.Strategy == nil {
		return domain.TagResult{}, fmt.Errorf("no tagging strategy configured")
	}
	tags, err := uc.GitRepo.Tags(ctx)
	if err != nil {
		return domain.TagResult{}, fmt.Errorf("failed to list tags: %w", err)
	}
	names := domain.TagNames(tags)
	next, err := uc.Strategy.NextTag(ctx, project, names, opts.Clone())
	if err != nil {
		return domain.TagResult{}, err
	}
	if strings.TrimSpace(next) == "" {
		return domain.TagResult{}, domain.Abort(ErrEmptyTagMessage)
	}
	result := domain.TagResult{Next: next}
	if latestTagger, ok := uc.Strategy.(strategy.LatestTagger); ok {
		latest, err := latestTagger.LatestTag(ctx, project, names, opts.Clone())
		if err != nil {
			return domain.TagResult{}, err
		}
		result.Latest = latest
	}
	return result, nil
}
