package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foyer/internal/core"
)

// ParsePeriod reads the year and month query parameters. A missing value
// defaults to the month of now; a malformed one is an error wrapping
// core.ErrInvalidPeriod.
func ParsePeriod(query url.Values, now time.Time) (core.Period, error) {
	p := core.NewPeriod(now)

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("year %q: %w", v, core.ErrInvalidPeriod)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("month %q: %w", v, core.ErrInvalidPeriod)
		}
		p.Month = m
	}

	if err := p.Validate(); err != nil {
		return core.Period{}, fmt.Errorf("%04d-%02d: %w", p.Year, p.Month, err)
	}
	return p, nil
}
