package cmd

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/compozy/tagrelease/internal/config"
	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/orchestrator"
	"github.com/compozy/tagrelease/internal/strategy"
)

// baseOptions are the release flags independent of the tagging strategy.
func baseOptions(defaults domain.Options, strategies []string) []domain.OptionSpec {
	return []domain.OptionSpec{
		{
			Name:        config.KeyLocal,
			Shorthand:   "l",
			Type:        domain.OptionTypeBool,
			Default:     defaults[config.KeyLocal],
			Description: "only perform actions locally, do not push anything to the remote",
		},
		{
			Name:        config.KeyRemote,
			Shorthand:   "r",
			Type:        domain.OptionTypeString,
			Default:     defaults[config.KeyRemote],
			Description: "remote the branch and tag are pushed to",
		},
		{
			Name:        config.KeyTag,
			Shorthand:   "t",
			Type:        domain.OptionTypeString,
			Default:     "",
			Description: "tag name to create, bypassing the tagging strategy",
		},
		{
			Name:        config.KeyAnnotation,
			Shorthand:   "a",
			Type:        domain.OptionTypeString,
			Default:     defaults[config.KeyAnnotation],
			Description: "annotation message for the tag, '%@' is replaced by the tag name; lightweight tag when empty",
		},
		{
			Name:        config.KeyMessage,
			Shorthand:   "m",
			Type:        domain.OptionTypeString,
			Default:     defaults[config.KeyMessage],
			Description: "commit message used when committing pending changes, '%@' is replaced by the tag name",
		},
		{
			Name:        config.KeyManifest,
			Type:        domain.OptionTypeStrings,
			Default:     defaults[config.KeyManifest],
			Description: "JSON manifest whose 'version' field is updated, relative to the project root (repeatable)",
		},
		{
			Name:        config.KeyYes,
			Shorthand:   "y",
			Type:        domain.OptionTypeBool,
			Default:     false,
			Description: "answer yes to every confirmation prompt",
		},
		{
			Name:        config.KeyStrategy,
			Shorthand:   "s",
			Type:        domain.OptionTypeString,
			Default:     defaults[config.KeyStrategy],
			Description: fmt.Sprintf("tagging strategy, one of %v", strategies),
		},
	}
}

// releaseOptions lists every flag of the release command: base options, then
// options of the registered strategies, then those of a custom strategy.
// Later duplicates are dropped.
func releaseOptions(c *container) []domain.OptionSpec {
	specs := baseOptions(config.Defaults(), c.strategies.Names())
	specs = append(specs, c.strategies.AvailableOptions()...)
	if c.custom != nil {
		specs = append(specs, c.custom.AvailableOptions()...)
	}
	seen := make(map[string]bool, len(specs))
	out := make([]domain.OptionSpec, 0, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		out = append(out, spec)
	}
	return out
}

func configureReleaseCmd(cmd *cobra.Command, c *container) {
	specs := releaseOptions(c)
	registered := registerOptionFlags(cmd, specs, c.cfg)
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.setVerbose(verbose)
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		for _, warning := range c.cfg.Warnings {
			c.console.Warn(warning)
		}
		opts, err := readOptionFlags(cmd.Flags(), registered)
		if err != nil {
			return err
		}
		orch, err := c.releaseOrchestrator()
		if err != nil {
			return err
		}
		return orch.Execute(cmd.Context(), newReleaseConfig(cmd.Flags(), opts, c.custom))
	}
}

// registerOptionFlags adds a flag per spec, using configured values as
// defaults. Specs clashing with an existing flag are skipped and clashing
// shorthands dropped. It returns the specs that were registered.
func registerOptionFlags(cmd *cobra.Command, specs []domain.OptionSpec, cfg *config.Config) []domain.OptionSpec {
	flags := cmd.Flags()
	registered := make([]domain.OptionSpec, 0, len(specs))
	for _, spec := range specs {
		if flags.Lookup(spec.Name) != nil || cmd.PersistentFlags().Lookup(spec.Name) != nil {
			continue
		}
		shorthand := spec.Shorthand
		if shorthand != "" &&
			(flags.ShorthandLookup(shorthand) != nil || cmd.PersistentFlags().ShorthandLookup(shorthand) != nil) {
			shorthand = ""
		}
		def := spec.Default
		usage := spec.Description
		if cfg != nil && cfg.Has(spec.Name) {
			def = cfg.Values[spec.Name]
			usage += fmt.Sprintf(" (configured in %s)", cfg.Source())
		}
		switch spec.Type {
		case domain.OptionTypeBool:
			flags.BoolP(spec.Name, shorthand, cast.ToBool(def), usage)
		case domain.OptionTypeStrings:
			flags.StringArrayP(spec.Name, shorthand, cast.ToStringSlice(def), usage)
		default:
			flags.StringP(spec.Name, shorthand, cast.ToString(def), usage)
		}
		registered = append(registered, spec)
	}
	return registered
}

// readOptionFlags collects the parsed value of every registered option.
func readOptionFlags(flags *pflag.FlagSet, specs []domain.OptionSpec) (domain.Options, error) {
	opts := make(domain.Options, len(specs))
	for _, spec := range specs {
		var (
			value any
			err   error
		)
		switch spec.Type {
		case domain.OptionTypeBool:
			value, err = flags.GetBool(spec.Name)
		case domain.OptionTypeStrings:
			value, err = flags.GetStringArray(spec.Name)
		default:
			value, err = flags.GetString(spec.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read flag %s: %w", spec.Name, err)
		}
		opts[spec.Name] = value
	}
	return opts, nil
}

// newReleaseConfig maps option values to a run configuration. A strategy
// given on the command line wins over a custom strategy from the config.
func newReleaseConfig(flags *pflag.FlagSet, opts domain.Options, custom *strategy.Spec) orchestrator.ReleaseConfig {
	spec := strategy.Named(opts.String(config.KeyStrategy))
	if custom != nil && !flags.Changed(config.KeyStrategy) {
		spec = *custom
	}
	return orchestrator.ReleaseConfig{
		Local:           opts.Bool(config.KeyLocal),
		Remote:          opts.String(config.KeyRemote),
		Tag:             opts.String(config.KeyTag),
		Annotation:      opts.String(config.KeyAnnotation),
		Message:         opts.String(config.KeyMessage),
		Manifest:        opts.Strings(config.KeyManifest),
		Yes:             opts.Bool(config.KeyYes),
		Strategy:        spec,
		StrategyOptions: opts,
	}
}
