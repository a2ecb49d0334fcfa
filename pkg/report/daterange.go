// Package report turns fetched history into the prompts sent to the model.
//
// Everything here is pure: date windows, contributor grouping, changelog PR
// correlation and prompt rendering. No network or filesystem access.
package report

import (
	"strconv"
	"strings"
	"time"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/github"
)

// WindowOptions describes a history window as given on the command line.
type WindowOptions struct {
	Weeks        string // raw --weeks value, "" when unset
	Months       string // raw --months value, takes precedence over Weeks
	All          bool   // no window at all
	DefaultWeeks int    // used when neither Weeks nor Months is set
}

// ComputeDateRange anchors the window at now. It returns nil for All.
// Months use calendar arithmetic, weeks are exactly 7*n days.
func ComputeDateRange(now time.Time, opts WindowOptions) (*github.DateRange, error) {
	if opts.All {
		return nil, nil
	}

	if opts.Months != "" {
		months, err := parsePositive(opts.Months)
		if err != nil {
			return nil, gserrors.NewConfigErrorWithCause("months",
				"Invalid --months value. Must be a positive number.", err)
		}
		return &github.DateRange{Since: now.AddDate(0, -months, 0), Until: now}, nil
	}

	weeks := opts.DefaultWeeks
	if opts.Weeks != "" {
		n, err := parsePositive(opts.Weeks)
		if err != nil {
			return nil, gserrors.NewConfigErrorWithCause("weeks",
				"Invalid --weeks value. Must be a positive number.", err)
		}
		weeks = n
	}
	if weeks < 1 {
		return nil, gserrors.NewConfigError("weeks", "Invalid --weeks value. Must be a positive number.")
	}

	return &github.DateRange{Since: now.AddDate(0, 0, -7*weeks), Until: now}, nil
}

// MonthsBack returns the window covering the last n calendar months.
func MonthsBack(now time.Time, n int) *github.DateRange {
	return &github.DateRange{Since: now.AddDate(0, -n, 0), Until: now}
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, gserrors.Newf("%d is not positive", n)
	}
	return n, nil
}
