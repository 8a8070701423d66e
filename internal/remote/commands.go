package remote

import (
	"fmt"
	"strings"
)

// ExtFilter selects which files a discovery listing returns.
type ExtFilter int

const (
	// FilterUncompressed lists files not yet compressed (no .gz/.zip),
	// used by the compress pipeline.
	FilterUncompressed ExtFilter = iota
	// FilterCompressed lists only .gz/.zip files, used by the archive and
	// delete pipelines.
	FilterCompressed
)

// CommandSet builds the ready-to-execute remote command strings for one
// operating system. It isolates shell syntax differences so callers never
// branch on OS themselves.
type CommandSet interface {
	// ListFiles returns a recursive listing command printing one absolute
	// path per line under basePath, filtered by f.
	ListFiles(basePath string, f ExtFilter) string
	// Compress returns a command that compresses path in place. The
	// original must survive if compression fails.
	Compress(path string) string
	// Remove returns a command that deletes path.
	Remove(path string) string
}

// CommandsFor returns the CommandSet for an inventory os value. Anything
// other than linux gets the PowerShell set.
func CommandsFor(osName string) CommandSet {
	if strings.EqualFold(strings.TrimSpace(osName), "linux") {
		return LinuxCommands{}
	}
	return WindowsCommands{}
}

// LinuxCommands builds POSIX find/gzip/rm invocations. Only these three
// tools are assumed present on the remote host.
type LinuxCommands struct{}

func (LinuxCommands) ListFiles(basePath string, f ExtFilter) string {
	switch f {
	case FilterCompressed:
		return fmt.Sprintf(`find '%s' -type f \( -name '*.gz' -o -name '*.zip' \)`, basePath)
	default:
		return fmt.Sprintf(`find '%s' -type f ! -name '*.gz' ! -name '*.zip'`, basePath)
	}
}

func (LinuxCommands) Compress(path string) string {
	return fmt.Sprintf(`gzip '%s'`, path)
}

func (LinuxCommands) Remove(path string) string {
	return fmt.Sprintf(`rm -f '%s'`, path)
}

// WindowsCommands builds PowerShell one-liners. Each command is a single
// `powershell -Command` invocation so one SSH round-trip covers it.
type WindowsCommands struct{}

func (WindowsCommands) ListFiles(basePath string, f ExtFilter) string {
	switch f {
	case FilterCompressed:
		return fmt.Sprintf(`powershell -Command "Get-ChildItem -Path '%s' -Recurse -Include '*.gz','*.zip' -File | Select-Object -ExpandProperty FullName"`, basePath)
	default:
		return fmt.Sprintf(`powershell -Command "Get-ChildItem -Path '%s' -Recurse -File | Where-Object { $_.Extension -ne '.gz' -and $_.Extension -ne '.zip' } | Select-Object -ExpandProperty FullName"`, basePath)
	}
}

// Compress chains archive creation and original removal in one command;
// -ErrorAction Stop aborts before Remove-Item when compression fails, so
// the original is removed only once the archive exists.
func (WindowsCommands) Compress(path string) string {
	return fmt.Sprintf(`powershell -Command "Compress-Archive -Path '%s' -DestinationPath '%s.zip' -ErrorAction Stop; Remove-Item -Force '%s'"`, path, path, path)
}

func (WindowsCommands) Remove(path string) string {
	return fmt.Sprintf(`powershell -Command Remove-Item -Force '%s'`, path)
}

// RemoveCommandFor picks the removal syntax by inspecting the path itself:
// a backslash or drive colon means the Windows form, whatever the unit's
// declared OS. Guards against mixed-separator inventory data.
func RemoveCommandFor(path string, declared CommandSet) string {
	if strings.ContainsAny(path, `\:`) {
		return WindowsCommands{}.Remove(path)
	}
	return declared.Remove(path)
}
