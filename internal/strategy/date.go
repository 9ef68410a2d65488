package strategy

import (
	"context"
	"fmt"
	"time"
	// embeds the IANA database so --timezone works on hosts without zoneinfo
	_ "time/tzdata"

	"github.com/nleeper/goment"

	"github.com/compozy/tagrelease/internal/domain"
)

// Option names and defaults consumed by the date strategy.
const (
	OptionFormat    = "format"
	OptionTimezone  = "timezone"
	DefaultFormat   = "YYYY.MM.DD"
	DefaultTimezone = "UTC"
)

// DateStrategy names releases after the current date. Tags created on the same
// day receive an increasing ".N" suffix.
type DateStrategy struct {
	now func() time.Time
}

// NewDateStrategy creates a DateStrategy reading the clock from now, or
// time.Now when nil.
func NewDateStrategy(now func() time.Time) *DateStrategy {
	if now == nil {
		now = time.Now
	}
	return &DateStrategy{now: now}
}

// AvailableOptions implements OptionProvider.
func (s *DateStrategy) AvailableOptions() []domain.OptionSpec {
	return []domain.OptionSpec{
		{
			Name:        OptionFormat,
			Shorthand:   "f",
			Type:        domain.OptionTypeString,
			Default:     DefaultFormat,
			Description: "when strategy is 'date', the date format used to name tags",
		},
		{
			Name:        OptionTimezone,
			Shorthand:   "z",
			Type:        domain.OptionTypeString,
			Default:     DefaultTimezone,
			Description: "when strategy is 'date', the IANA timezone in which the date is computed",
		},
	}
}

// NextTag formats the current time with moment-style tokens (YYYY, MM, DD,
// [literal]) and appends a counter on collision.
func (s *DateStrategy) NextTag(
	_ context.Context,
	_ domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	format := opts.String(OptionFormat)
	if format == "" {
		format = DefaultFormat
	}
	tz := opts.String(OptionTimezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", &domain.AbortError{Msg: fmt.Sprintf("Unknown timezone: '%s'", tz), Err: err}
	}
	now, err := goment.New(s.now().In(loc))
	if err != nil {
		return "", fmt.Errorf("failed to read the clock: %w", err)
	}
	base := now.Format(format)
	existing := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		existing[tag] = struct{}{}
	}
	name := base
	for n := 1; ; n++ {
		if _, taken := existing[name]; !taken {
			return name, nil
		}
		name = fmt.Sprintf("%s.%d", base, n)
	}
}
