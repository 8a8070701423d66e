package lifecycle

import (
	"reflect"
	"testing"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/dnchandra/logfleet/internal/match"
)

var fixedToday = time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC)

func selectWith(t *testing.T, files []string, osType inventory.OSType, inc, exc []string, pol Policy) []string {
	t.Helper()
	return SelectEligible(files, osType, match.Compile(inc), match.Compile(exc), pol, fixedToday, nil)
}

func TestThresholdBoundaryInclusive(t *testing.T) {
	pol := Policy{ThresholdDays: 5, RequireDate: true}

	tests := []struct {
		name string
		file string
		want bool
	}{
		{"exactly threshold days old", "/var/log/app/app.2024-01-05.log", true},
		{"older than threshold", "/var/log/app/app.2023-12-01.log", true},
		{"one day too young", "/var/log/app/app.2024-01-06.log", false},
		{"future dated", "/var/log/app/app.2099-01-01.log", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectWith(t, []string{tt.file}, inventory.OSLinux, nil, nil, pol)
			if (len(got) == 1) != tt.want {
				t.Errorf("eligibility of %s = %v, want %v", tt.file, len(got) == 1, tt.want)
			}
		})
	}
}

func TestSelectEligibleScenario(t *testing.T) {
	// One Linux path entry, no patterns, today fixed at 2024-01-10.
	files := []string{
		"/var/log/app/app.2024-01-01.log",
		"/var/log/app/app.2099-01-01.log",
	}
	got := selectWith(t, files, inventory.OSLinux, nil, nil, Policy{ThresholdDays: 5, RequireDate: true})

	want := []string{"/var/log/app/app.2024-01-01.log"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("eligible = %v, want %v", got, want)
	}
}

func TestUnparseableDateExcludedAndReported(t *testing.T) {
	var skipped []string
	files := []string{"/var/log/app/nodate.log", "/var/log/app/app.2023-01-01.log"}
	got := SelectEligible(files, inventory.OSLinux, match.Compile(nil), match.Compile(nil),
		Policy{ThresholdDays: 5, RequireDate: true}, fixedToday,
		func(path string) { skipped = append(skipped, path) })

	if len(got) != 1 || got[0] != "/var/log/app/app.2023-01-01.log" {
		t.Errorf("eligible = %v, want only the dated file", got)
	}
	if len(skipped) != 1 || skipped[0] != "/var/log/app/nodate.log" {
		t.Errorf("skipped = %v, want the undated file reported", skipped)
	}
}

func TestExcludeOverridesInclude(t *testing.T) {
	files := []string{
		"/var/log/app/app.2023-01-01.log",
		"/var/log/app/debug.2023-01-01.log",
	}
	got := selectWith(t, files, inventory.OSLinux, []string{"*.log"}, []string{"debug*"},
		Policy{ThresholdDays: 5, RequireDate: true})

	want := []string{"/var/log/app/app.2023-01-01.log"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("eligible = %v, want %v", got, want)
	}
}

func TestArchivePolicyIgnoresAge(t *testing.T) {
	// Age-independent: undated and future-dated files are all eligible,
	// and no skip warnings fire.
	files := []string{
		"/var/log/app/app.log.gz",
		"/var/log/app/app.2099-01-01.log.gz",
	}
	called := false
	got := SelectEligible(files, inventory.OSLinux, match.Compile(nil), match.Compile(nil),
		Policy{ThresholdDays: 0, RequireDate: false}, fixedToday,
		func(string) { called = true })

	if !reflect.DeepEqual(got, files) {
		t.Errorf("eligible = %v, want all files", got)
	}
	if called {
		t.Error("age-independent policy must not attempt date extraction")
	}
}

func TestDiscoveryOrderPreserved(t *testing.T) {
	files := []string{
		"/l/z.2023-01-02.log",
		"/l/a.2023-01-03.log",
		"/l/m.2023-01-01.log",
	}
	got := selectWith(t, files, inventory.OSLinux, nil, nil, Policy{ThresholdDays: 5, RequireDate: true})
	if !reflect.DeepEqual(got, files) {
		t.Errorf("order changed: got %v, want %v", got, files)
	}
}

func TestWindowsBasenameFiltering(t *testing.T) {
	files := []string{
		`C:\logs\u_ex231201.log.zip`,
		`C:\logs\skipme_ex231201.log.zip`,
	}
	got := selectWith(t, files, inventory.OSWindows, []string{"u_ex*"}, nil,
		Policy{ThresholdDays: 5, RequireDate: true})

	want := []string{`C:\logs\u_ex231201.log.zip`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("eligible = %v, want %v", got, want)
	}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/var/log/app/app.log", "app.log"},
		{`C:\logs\u_ex240101.log`, "u_ex240101.log"},
		{"plain.log", "plain.log"},
		{`/mixed\sep/file.log`, "file.log"},
	}
	for _, tt := range tests {
		if got := Basename(tt.path); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
