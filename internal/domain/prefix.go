package domain

import "strings"

// DefaultTagPrefix is the conventional prefix for version tags.
const DefaultTagPrefix = "v"

// HasPrefix reports whether tag starts with the default "v" prefix.
func HasPrefix(tag string) bool {
	return HasPrefixWith(tag, DefaultTagPrefix)
}

// HasPrefixWith reports whether tag starts with prefix.
func HasPrefixWith(tag, prefix string) bool {
	return strings.HasPrefix(tag, prefix)
}

// StripPrefix removes a leading "v" from tag if present.
func StripPrefix(tag string) string {
	return StripPrefixWith(tag, DefaultTagPrefix)
}

// StripPrefixWith removes a leading prefix from tag if present.
func StripPrefixWith(tag, prefix string) string {
	return strings.TrimPrefix(tag, prefix)
}

// PrependPrefix returns tag with the "v" prefix prepended.
func PrependPrefix(tag string) string {
	return PrependPrefixWith(tag, DefaultTagPrefix)
}

// PrependPrefixWith returns prefix + tag.
func PrependPrefixWith(tag, prefix string) string {
	return prefix + tag
}
