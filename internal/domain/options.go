package domain

import "github.com/spf13/cast"

// OptionType is the declared type of a release option.
type OptionType string

const (
	OptionTypeBool    OptionType = "bool"
	OptionTypeString  OptionType = "string"
	OptionTypeStrings OptionType = "strings"
)

// IsValid returns true if t is a supported option type.
func (t OptionType) IsValid() bool {
	switch t {
	case OptionTypeBool, OptionTypeString, OptionTypeStrings:
		return true
	default:
		return false
	}
}

// OptionSpec declares an option exposed on the command line. Strategies
// contribute their own specs on top of the base release options.
type OptionSpec struct {
	Name        string
	Shorthand   string
	Type        OptionType
	Default     any
	Description string
}

// Options carries option values handed to strategies.
type Options map[string]any

// Bool returns the named option as a bool, false when unset or not coercible.
func (o Options) Bool(name string) bool {
	v, ok := o[name]
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// String returns the named option as a string, empty when unset.
func (o Options) String(name string) string {
	v, ok := o[name]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Strings returns the named option as a string slice.
func (o Options) Strings(name string) []string {
	v, ok := o[name]
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
