package inventory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// csvColumns are the required header columns for bulk import files.
var csvColumns = []string{
	"server", "os", "user", "log_base_path", "log_folder",
	"include_patterns", "exclude_patterns",
}

// ImportStats summarizes a bulk import.
type ImportStats struct {
	Servers int
	Users   int
	Entries int
}

// ImportCSV merges rows from a CSV file into the inventory. Rows missing a
// server, os, user, or base path are skipped. Pattern cells are
// comma-separated within the cell.
func (inv Inventory) ImportCSV(path string) (ImportStats, error) {
	var stats ImportStats

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return stats, fmt.Errorf("reading import file: %w", err)
	}
	if len(records) == 0 {
		return stats, fmt.Errorf("import file %s is empty", path)
	}

	col, err := headerIndex(records[0])
	if err != nil {
		return stats, err
	}

	for _, row := range records[1:] {
		get := func(name string) string {
			i := col[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		server := get("server")
		osType := strings.ToLower(get("os"))
		user := get("user")
		base := get("log_base_path")
		if server == "" || osType == "" || user == "" || base == "" {
			continue
		}

		if _, ok := inv[server]; !ok {
			stats.Servers++
		} else if _, ok := inv[server].Users[user]; !ok {
			stats.Users++
		}

		inv.AddEntry(server, osType, user, PathEntry{
			LogBasePath:     base,
			LogFolder:       get("log_folder"),
			IncludePatterns: SplitPatterns(get("include_patterns")),
			ExcludePatterns: SplitPatterns(get("exclude_patterns")),
		})
		stats.Entries++
	}

	return stats, nil
}

// RemoveCSV deletes the (server, user) pairs listed in a CSV file with
// "server" and "user" columns. It returns the number of users removed.
func (inv Inventory) RemoveCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening removal file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading removal file: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("removal file %s is empty", path)
	}

	col := make(map[string]int)
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"server", "user"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("removal file missing required column %q", required)
		}
	}

	removed := 0
	for _, row := range records[1:] {
		if col["server"] >= len(row) || col["user"] >= len(row) {
			continue
		}
		server := strings.TrimSpace(row[col["server"]])
		user := strings.TrimSpace(row[col["user"]])
		if inv.RemoveUser(server, user) {
			removed++
		}
	}
	return removed, nil
}

func headerIndex(header []string) (map[string]int, error) {
	col := make(map[string]int)
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range csvColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("import file missing required columns: %s", strings.Join(missing, ", "))
	}
	return col, nil
}
