package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/compozy/tagrelease/internal/config"
	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/hook"
	"github.com/compozy/tagrelease/internal/orchestrator"
	"github.com/compozy/tagrelease/internal/repository"
	"github.com/compozy/tagrelease/internal/strategy"
	"github.com/compozy/tagrelease/internal/ui"
)

// container holds all the dependencies for the application.
type container struct {
	root    string
	cfg     *config.Config
	level   zap.AtomicLevel
	logger  *zap.Logger
	fsRepo  repository.FileSystemRepository
	gitRepo *repository.GoGitRepository
	// gitErr is reported when a command needs the repository.
	gitErr error
	// cfgErr is reported when a release runs.
	cfgErr     error
	strategies *strategy.Registry
	custom     *strategy.Spec
	console    *ui.Console
}

// newContainer builds the container for the working directory.
func newContainer() (*container, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return newContainerAt(cwd)
}

// newContainerAt resolves the project root from cwd, loads its configuration
// and builds the shared services.
func newContainerAt(cwd string) (*container, error) {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, err := newLogger(level)
	if err != nil {
		return nil, err
	}
	c := &container{
		root:       cwd,
		level:      level,
		logger:     logger,
		fsRepo:     repository.NewFileSystemRepository(),
		strategies: strategy.DefaultRegistry(nil),
		console:    ui.NewConsole(os.Stdin, os.Stdout),
	}
	gitRepo, err := repository.NewGitRepository(cwd)
	if err != nil {
		c.gitErr = err
	} else {
		root, err := gitRepo.Root()
		if err != nil {
			return nil, err
		}
		c.root = root
		c.gitRepo = gitRepo
	}
	if err := c.loadConfig(); err != nil {
		c.cfgErr = err
		c.cfg = &config.Config{
			Values: domain.Options{},
			Hooks:  make(map[domain.HookName]string),
		}
		c.custom = nil
	}
	return c, nil
}

func (c *container) loadConfig() error {
	cfg, err := config.Load(c.fsRepo, c.root)
	if err != nil {
		return domain.NewInternalError(err.Error(), err, nil)
	}
	c.cfg = cfg
	compiler, err := strategy.NewExpressionCompiler()
	if err != nil {
		return err
	}
	spec, ok, err := cfg.CustomStrategy(compiler)
	if err != nil {
		return err
	}
	if ok {
		c.custom = &spec
	}
	return nil
}

// newLogger builds a console logger on stderr. level can be raised later, once
// flags are parsed.
func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// setVerbose switches the logger to debug output.
func (c *container) setVerbose(on bool) {
	if on {
		c.level.SetLevel(zapcore.DebugLevel)
	}
}

func (c *container) requireGit() error {
	if c.gitErr == nil {
		return nil
	}
	return &domain.AbortError{Msg: fmt.Sprintf("Not a git repository: %s", c.root), Err: c.gitErr}
}

// journal returns nil when the repository has no on-disk git directory.
func (c *container) journal() repository.JournalRepository {
	if c.gitRepo == nil || c.gitRepo.GitDir() == "" {
		return nil
	}
	return repository.NewJSONJournalRepository(c.fsRepo, repository.JournalDir(c.gitRepo.GitDir()), c.logger)
}

func (c *container) releaseOrchestrator() (*orchestrator.ReleaseOrchestrator, error) {
	if c.cfgErr != nil {
		return nil, c.cfgErr
	}
	if err := c.requireGit(); err != nil {
		return nil, err
	}
	return orchestrator.NewReleaseOrchestrator(
		domain.NewProject(c.root),
		c.gitRepo,
		c.fsRepo,
		c.console,
		hook.NewExecutor(hook.Commands(c.cfg.Hooks), c.logger),
		c.strategies,
		c.journal(),
		c.logger,
	), nil
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	configureReleaseCmd(rootCmd, c)
	rootCmd.AddCommand(newHistoryCmd(c))
	rootCmd.AddCommand(newVersionCmd())
	return nil
}
