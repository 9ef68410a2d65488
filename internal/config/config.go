// Package config resolves release options from config/release.* and
// TAG_RELEASE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/strategy"
)

const (
	// Dir is the directory, relative to the project root, holding the config file.
	Dir = "config"
	// FileName is the config file name without extension.
	FileName = "release"
	// EnvPrefix prefixes environment variables, e.g. TAG_RELEASE_REMOTE.
	EnvPrefix = "TAG_RELEASE"
)

// Option keys understood by the release command.
const (
	KeyLocal      = "local"
	KeyRemote     = "remote"
	KeyAnnotation = "annotation"
	KeyMessage    = "message"
	KeyManifest   = "manifest"
	KeyStrategy   = "strategy"
	KeyTag        = "tag"
	KeyYes        = "yes"
)

// SupportedExtensions lists config file extensions in lookup order.
var SupportedExtensions = []string{"yaml", "yml", "json", "toml"}

// configurable maps the keys allowed in config to their declared type.
var configurable = map[string]domain.OptionType{
	KeyLocal:                domain.OptionTypeBool,
	KeyRemote:               domain.OptionTypeString,
	KeyAnnotation:           domain.OptionTypeString,
	KeyMessage:              domain.OptionTypeString,
	KeyManifest:             domain.OptionTypeStrings,
	KeyStrategy:             domain.OptionTypeString,
	strategy.OptionFormat:   domain.OptionTypeString,
	strategy.OptionTimezone: domain.OptionTypeString,
	strategy.OptionPreid:    domain.OptionTypeString,
}

// restricted lists options that exist on the command line but must be
// chosen per run.
var restricted = []string{
	KeyTag,
	KeyYes,
	strategy.OptionMajor,
	strategy.OptionMinor,
	strategy.OptionPremajor,
	strategy.OptionPreminor,
	strategy.OptionPrepatch,
	strategy.OptionPrerelease,
	"verbose",
}

// Defaults returns the built-in option values.
func Defaults() domain.Options {
	return domain.Options{
		KeyLocal:      false,
		KeyRemote:     "origin",
		KeyAnnotation: "",
		KeyMessage:    "Released %@",
		KeyManifest:   []string{"package.json", "bower.json"},
		KeyStrategy:   strategy.DefaultName,
	}
}

// StrategyConfig is a custom strategy declared in the config file.
type StrategyConfig struct {
	Next    string
	Latest  string
	Options []domain.OptionSpec
}

// Config holds everything resolved from the config file and environment.
type Config struct {
	// Path is the config file relative to the project root, empty when absent.
	Path     string
	Values   domain.Options
	Hooks    map[domain.HookName]string
	Strategy *StrategyConfig
	Warnings []string
}

// Has reports whether key was configured.
func (c *Config) Has(key string) bool {
	_, ok := c.Values[key]
	return ok
}

// Source describes where configured values come from, for flag descriptions.
func (c *Config) Source() string {
	if c.Path == "" {
		return "environment"
	}
	return c.Path
}

// CustomStrategy compiles the configured custom strategy, if any.
func (c *Config) CustomStrategy(compiler *strategy.ExpressionCompiler) (strategy.Spec, bool, error) {
	if c.Strategy == nil {
		return strategy.Spec{}, false, nil
	}
	spec, err := compiler.Compile(c.Strategy.Next, c.Strategy.Latest, c.Strategy.Options)
	if err != nil {
		return strategy.Spec{}, false, &domain.AbortError{
			Msg: fmt.Sprintf("Invalid `strategy` in %s: %v", c.Source(), err),
			Err: err,
		}
	}
	return spec, true, nil
}

// Load reads config/release.{yaml,yml,json,toml} under root, if present, and
// TAG_RELEASE_* environment variables. Problems with individual keys are
// reported as warnings; an unreadable config file is an error.
func Load(fs afero.Fs, root string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	cfg := &Config{
		Values: domain.Options{},
		Hooks:  make(map[domain.HookName]string),
	}
	path, err := findConfigFile(fs, root)
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.Path = filepath.ToSlash(filepath.Join(Dir, filepath.Base(path)))
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfg.Path, err)
		}
	}
	for key := range configurable {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	settings := v.AllSettings()
	if raw, ok := settings[KeyStrategy]; ok {
		cfg.resolveStrategy(raw)
		delete(settings, KeyStrategy)
	}
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cfg.resolveKey(key, settings[key])
	}
	return cfg, nil
}

func findConfigFile(fs afero.Fs, root string) (string, error) {
	for _, ext := range SupportedExtensions {
		path := filepath.Join(root, Dir, FileName+"."+ext)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to check config file %s: %w", path, err)
		}
		if exists {
			return path, nil
		}
	}
	return "", nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// sourceOf names the origin of key for warnings.
func (c *Config) sourceOf(key string) string {
	if _, ok := os.LookupEnv(envName(key)); ok {
		return envName(key)
	}
	return c.Source()
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("Warning: "+format, args...))
}

func (c *Config) resolveKey(key string, raw any) {
	if hook, ok := matchHook(key); ok {
		cmd, isString := raw.(string)
		if !isString || strings.TrimSpace(cmd) == "" {
			c.warnf("`%s` is not a command in %s, ignoring", hook, c.Source())
			return
		}
		c.Hooks[hook] = cmd
		return
	}
	typ, ok := configurable[key]
	if !ok {
		if c.isRestricted(key) {
			c.warnf("cannot specify option `%s` in %s, ignoring", key, c.Source())
		} else {
			c.warnf("invalid option `%s` in %s, ignoring", key, c.Source())
		}
		return
	}
	value, err := coerce(typ, raw)
	if err != nil {
		c.warnf("invalid value for option `%s` in %s, ignoring", key, c.sourceOf(key))
		return
	}
	c.Values[key] = value
}

func (c *Config) isRestricted(key string) bool {
	for _, name := range restricted {
		if name == key {
			return true
		}
	}
	if c.Strategy != nil {
		for _, opt := range c.Strategy.Options {
			if strings.EqualFold(opt.Name, key) {
				return true
			}
		}
	}
	return false
}

// matchHook compares case-insensitively since viper lowercases keys.
func matchHook(key string) (domain.HookName, bool) {
	for _, name := range domain.HookNames {
		if strings.EqualFold(string(name), key) {
			return name, true
		}
	}
	return "", false
}

func (c *Config) resolveStrategy(raw any) {
	switch val := raw.(type) {
	case string:
		c.Values[KeyStrategy] = val
	case map[string]any:
		next := cast.ToString(val["next"])
		if strings.TrimSpace(next) == "" {
			c.warnf("`%s` in %s does not define `next`, ignoring", KeyStrategy, c.Source())
			return
		}
		c.Strategy = &StrategyConfig{
			Next:    next,
			Latest:  cast.ToString(val["latest"]),
			Options: c.resolveStrategyOptions(val["options"]),
		}
	default:
		c.warnf("invalid value for option `%s` in %s, ignoring", KeyStrategy, c.sourceOf(KeyStrategy))
	}
}

func (c *Config) resolveStrategyOptions(raw any) []domain.OptionSpec {
	if raw == nil {
		return nil
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		c.warnf("`%s.options` in %s is not a list, ignoring", KeyStrategy, c.Source())
		return nil
	}
	specs := make([]domain.OptionSpec, 0, len(items))
	for _, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			c.warnf("invalid `%s.options` entry in %s, ignoring", KeyStrategy, c.Source())
			continue
		}
		spec := domain.OptionSpec{
			Name:        cast.ToString(m["name"]),
			Type:        domain.OptionType(cast.ToString(m["type"])),
			Description: cast.ToString(m["description"]),
		}
		if spec.Type == "" {
			spec.Type = domain.OptionTypeString
		}
		if spec.Name == "" || !spec.Type.IsValid() {
			c.warnf("invalid `%s.options` entry in %s, ignoring", KeyStrategy, c.Source())
			continue
		}
		if def, ok := m["default"]; ok {
			value, err := coerce(spec.Type, def)
			if err != nil {
				c.warnf("invalid default for strategy option `%s` in %s, ignoring", spec.Name, c.Source())
				continue
			}
			spec.Default = value
		}
		specs = append(specs, spec)
	}
	return specs
}

// coerce converts raw to the declared option type. A string given for a list
// option is split on commas.
func coerce(typ domain.OptionType, raw any) (any, error) {
	switch typ {
	case domain.OptionTypeBool:
		return cast.ToBoolE(raw)
	case domain.OptionTypeString:
		return cast.ToStringE(raw)
	case domain.OptionTypeStrings:
		if s, ok := raw.(string); ok {
			return splitList(s), nil
		}
		return cast.ToStringSliceE(raw)
	default:
		return nil, fmt.Errorf("unsupported option type: %s", typ)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
