// Package logdate extracts the date embedded in a log filename. Filenames
// are the only age signal available in a single discovery round-trip; no
// per-file stat is issued.
package logdate

import (
	"regexp"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
)

var (
	// Linux rotated logs embed either a dot-delimited ISO date
	// ("app.2024-01-05.log") or a dot-delimited 12-digit timestamp
	// ("app.202401050300.log") whose trailing four digits are time of day.
	linuxISO    = regexp.MustCompile(`\.(\d{4}-\d{2}-\d{2})`)
	linuxDigits = regexp.MustCompile(`\.(\d{12})`)

	// Windows IIS-style logs carry a 6-digit YYMMDD after "_ex"
	// ("u_ex240105.log.zip").
	windowsEx = regexp.MustCompile(`_ex(\d{6})`)
)

// Extract parses the date out of filename according to the server's OS
// convention. The second return is false when no date is present or the
// matched digits are not a valid calendar date; callers must treat such
// files as age-unknown and exclude them from eligibility.
func Extract(filename string, osType inventory.OSType) (time.Time, bool) {
	if osType == inventory.OSLinux {
		return extractLinux(filename)
	}
	return extractWindows(filename)
}

func extractLinux(filename string) (time.Time, bool) {
	if m := linuxISO.FindStringSubmatch(filename); m != nil {
		t, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if m := linuxDigits.FindStringSubmatch(filename); m != nil {
		t, err := time.Parse("20060102", m[1][:8])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func extractWindows(filename string) (time.Time, bool) {
	m := windowsEx.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("060102", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
