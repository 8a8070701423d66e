package lifecycle

import (
	"strings"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/dnchandra/logfleet/internal/logdate"
	"github.com/dnchandra/logfleet/internal/match"
)

// Policy decides which discovered files an action may touch.
type Policy struct {
	// ThresholdDays is the minimum age in days. The boundary is
	// inclusive: a file dated exactly ThresholdDays ago is eligible.
	ThresholdDays int
	// RequireDate gates eligibility on a parseable filename date. The
	// archive pipeline sets this false: it takes every already-compressed
	// file regardless of age, and never looks at the filename date.
	RequireDate bool
}

// SelectEligible filters discovered paths down to those the action applies
// to: basename passes include then exclude patterns, and (when the policy
// requires it) the filename date is at or past the threshold. Output
// preserves discovery order. onSkip, if non-nil, is called for files whose
// date cannot be parsed; such files are never eligible.
func SelectEligible(files []string, osType inventory.OSType, inc, exc *match.Matcher, pol Policy, today time.Time, onSkip func(path string)) []string {
	cutoff := dateOnly(today).AddDate(0, 0, -pol.ThresholdDays)

	var eligible []string
	for _, path := range files {
		name := Basename(path)
		if !inc.Match(name) {
			continue
		}
		// Exclude wins over include; an empty exclude set excludes nothing.
		if !exc.Empty() && exc.Match(name) {
			continue
		}

		if pol.RequireDate {
			d, ok := logdate.Extract(name, osType)
			if !ok {
				if onSkip != nil {
					onSkip(path)
				}
				continue
			}
			if dateOnly(d).After(cutoff) {
				continue
			}
		}

		eligible = append(eligible, path)
	}
	return eligible
}

// Basename returns the final path element for either separator style, so
// Windows paths listed by PowerShell filter correctly on a Linux operator
// host.
func Basename(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
