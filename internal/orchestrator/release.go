package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/hook"
	"github.com/compozy/tagrelease/internal/repository"
	"github.com/compozy/tagrelease/internal/strategy"
	"github.com/compozy/tagrelease/internal/ui"
	"github.com/compozy/tagrelease/internal/usecase"
)

// ReleaseConfig contains the options of one release run.
type ReleaseConfig struct {
	Local      bool
	Remote     string
	Tag        string
	Annotation string
	Message    string
	Manifest   []string
	Yes        bool
	Strategy   strategy.Spec
	// StrategyOptions are handed to the strategy unchanged.
	StrategyOptions domain.Options
}

// ReleaseOrchestrator tags and pushes a release.
type ReleaseOrchestrator struct {
	project    domain.Project
	gitRepo    repository.GitRepository
	fsRepo     repository.FileSystemRepository
	ui         ui.UI
	hooks      *hook.Executor
	strategies *strategy.Registry
	journal    repository.JournalRepository
	logger     *zap.Logger
}

// NewReleaseOrchestrator creates a new release orchestrator. journal may be nil.
func NewReleaseOrchestrator(
	project domain.Project,
	gitRepo repository.GitRepository,
	fsRepo repository.FileSystemRepository,
	console ui.UI,
	hooks *hook.Executor,
	strategies *strategy.Registry,
	journal repository.JournalRepository,
	logger *zap.Logger,
) *ReleaseOrchestrator {
	if hooks == nil {
		hooks = hook.NewExecutor(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReleaseOrchestrator{
		project:    project,
		gitRepo:    gitRepo,
		fsRepo:     fsRepo,
		ui:         console,
		hooks:      hooks,
		strategies: strategies,
		journal:    journal,
		logger:     logger,
	}
}

// workflowContext holds state shared between steps.
type workflowContext struct {
	tags      domain.TagResult
	pushQueue []domain.Ref
}

// Execute runs the release workflow. Expected terminations are returned as
// *domain.AbortError.
func (o *ReleaseOrchestrator) Execute(ctx context.Context, cfg ReleaseConfig) error {
	runner := NewStepRunner(o.journal, o.logger)
	runner.Record().Remote = cfg.Remote
	runner.Record().Local = cfg.Local
	wctx := &workflowContext{}
	o.addCheckAtTagStep(runner)
	o.addResolveTagStep(runner, cfg, wctx)
	o.addHookStep(runner, domain.StepInitHook, domain.HookInit, wctx)
	o.addDirtyCheckStep(runner, cfg)
	o.addReportLatestStep(runner, wctx)
	o.addUpdateManifestsStep(runner, cfg, wctx)
	o.addHookStep(runner, domain.StepBeforeCommitHook, domain.HookBeforeCommit, wctx)
	o.addCommitStep(runner, cfg, wctx)
	o.addPromptTagStep(runner, cfg, wctx)
	o.addCreateTagStep(runner, cfg, wctx)
	o.addPushStep(runner, cfg, wctx)
	o.addHookStep(runner, domain.StepAfterPushHook, domain.HookAfterPush, wctx)
	return runner.Execute(ctx)
}

func (o *ReleaseOrchestrator) addCheckAtTagStep(runner *StepRunner) {
	runner.AddStep(Step{
		Name: domain.StepCheckAtTag,
		Execute: func(ctx context.Context) error {
			tag, err := o.gitRepo.CurrentTag(ctx)
			if err != nil {
				return fmt.Errorf("failed to get current tag: %w", err)
			}
			if tag != "" {
				return domain.Abortf(msgSkippedTagging, tag)
			}
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addResolveTagStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepResolveTag,
		Execute: func(ctx context.Context) error {
			uc := &usecase.ResolveTagUseCase{GitRepo: o.gitRepo}
			if cfg.Tag == "" {
				s, err := strategy.Resolve(cfg.Strategy, o.strategies)
				if err != nil {
					return err
				}
				uc.Strategy = s
			}
			tags, err := uc.Execute(ctx, o.project, cfg.Tag, cfg.StrategyOptions)
			if err != nil {
				return err
			}
			wctx.tags = tags
			runner.Record().Tags = tags
			o.logger.Debug("resolved tags", zap.String("latest", tags.Latest), zap.String("next", tags.Next))
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addHookStep(
	runner *StepRunner,
	step domain.StepName,
	name domain.HookName,
	wctx *workflowContext,
) {
	runner.AddStep(Step{
		Name: step,
		Execute: func(ctx context.Context) error {
			return o.hooks.Execute(ctx, name, o.project, wctx.tags)
		},
	})
}

func (o *ReleaseOrchestrator) addDirtyCheckStep(runner *StepRunner, cfg ReleaseConfig) {
	runner.AddStep(Step{
		Name: domain.StepDirtyCheck,
		Execute: func(ctx context.Context) error {
			dirty, err := o.isDirty(ctx)
			if err != nil {
				return err
			}
			if !dirty {
				return nil
			}
			return o.confirm(ctx, cfg, MsgDirtyTree)
		},
	})
}

func (o *ReleaseOrchestrator) addReportLatestStep(runner *StepRunner, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepReportLatest,
		Execute: func(_ context.Context) error {
			if wctx.tags.HasLatest() {
				o.ui.Info(fmt.Sprintf(msgLatestVersion, wctx.tags.Latest))
			}
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addUpdateManifestsStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepUpdateManifests,
		Execute: func(ctx context.Context) error {
			uc := &usecase.UpdateManifestsUseCase{Fs: o.fsRepo}
			updated, err := uc.Execute(ctx, o.project.Root, cfg.Manifest, wctx.tags.Next)
			if err != nil {
				return err
			}
			if len(updated) > 0 {
				o.logger.Debug("updated manifests", zap.Strings("paths", updated))
			}
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addCommitStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepCommit,
		Execute: func(ctx context.Context) error {
			dirty, err := o.isDirty(ctx)
			if err != nil {
				return err
			}
			if !dirty {
				return nil
			}
			branch, err := o.gitRepo.CurrentBranch(ctx)
			if err != nil {
				return fmt.Errorf("failed to get current branch: %w", err)
			}
			if branch == "" {
				return domain.Abort(MsgMissingBranch)
			}
			message := strings.ReplaceAll(cfg.Message, TagPlaceholder, wctx.tags.Next)
			if err := o.gitRepo.CommitAll(ctx, message); err != nil {
				return fmt.Errorf("failed to commit changes: %w", err)
			}
			o.ui.Success(fmt.Sprintf(msgCommitted, message))
			runner.Record().Branch = branch
			wctx.pushQueue = append(wctx.pushQueue, domain.BranchRef(branch))
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addPromptTagStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepPromptTag,
		Execute: func(ctx context.Context) error {
			message := fmt.Sprintf(msgAboutToTag, wctx.tags.Next)
			if !cfg.Local {
				message += fmt.Sprintf(msgAndPush, cfg.Remote)
			}
			return o.confirm(ctx, cfg, message)
		},
	})
}

func (o *ReleaseOrchestrator) addCreateTagStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepCreateTag,
		Execute: func(ctx context.Context) error {
			annotation := strings.ReplaceAll(cfg.Annotation, TagPlaceholder, wctx.tags.Next)
			if err := o.gitRepo.CreateTag(ctx, wctx.tags.Next, annotation); err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			o.ui.Success(fmt.Sprintf(msgTagCreated, wctx.tags.Next))
			wctx.pushQueue = append(wctx.pushQueue, domain.TagRef(wctx.tags.Next))
			return nil
		},
	})
}

// addPushStep pushes every queued ref concurrently and waits for all of them.
func (o *ReleaseOrchestrator) addPushStep(runner *StepRunner, cfg ReleaseConfig, wctx *workflowContext) {
	runner.AddStep(Step{
		Name: domain.StepPush,
		Execute: func(ctx context.Context) error {
			if cfg.Local || len(wctx.pushQueue) == 0 {
				return nil
			}
			var g errgroup.Group
			for _, ref := range wctx.pushQueue {
				g.Go(func() error {
					if err := o.gitRepo.Push(ctx, cfg.Remote, ref); err != nil {
						return fmt.Errorf("failed to push %s: %w", ref, err)
					}
					o.ui.Success(fmt.Sprintf(msgPushed, ref.Name, cfg.Remote))
					return nil
				})
			}
			return g.Wait()
		},
	})
}

func (o *ReleaseOrchestrator) isDirty(ctx context.Context) (bool, error) {
	status, err := o.gitRepo.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get working tree status: %w", err)
	}
	return domain.HasTrackedChanges(status), nil
}

// confirm asks the user unless confirmation was given up front.
func (o *ReleaseOrchestrator) confirm(ctx context.Context, cfg ReleaseConfig, message string) error {
	if cfg.Yes {
		return nil
	}
	ok, err := o.ui.Confirm(ctx, message)
	if errors.Is(err, context.Canceled) {
		return &domain.AbortError{Msg: MsgAborted, Err: err}
	}
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		return domain.Abort(MsgAborted)
	}
	return nil
}
