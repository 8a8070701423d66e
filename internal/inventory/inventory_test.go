package inventory

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleInventory = `{
    "web01": {
        "os": "linux",
        "users": {
            "appsvc": [
                {
                    "log_base_path": "/var/log/app",
                    "include_patterns": ["*.log"],
                    "exclude_patterns": ["*debug*"]
                }
            ]
        }
    },
    "win01": {
        "os": "windows",
        "users": {
            "Administrator": [
                {
                    "log_base_path": "D:\\Logs",
                    "include_patterns": [],
                    "exclude_patterns": []
                }
            ]
        }
    }
}`

const sampleKeys = `{
    "web01": {
        "users": {
            "appsvc": "/home/operator/.ssh/id_web01"
        }
    }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInventory(t *testing.T) {
	path := writeFile(t, "inventory.json", sampleInventory)

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory() failed: %v", err)
	}

	if len(inv) != 2 {
		t.Fatalf("got %d servers, want 2", len(inv))
	}

	web := inv["web01"]
	if web.OSType() != OSLinux {
		t.Errorf("web01 os = %v, want linux", web.OSType())
	}
	entries := web.Users["appsvc"]
	if len(entries) != 1 || entries[0].LogBasePath != "/var/log/app" {
		t.Errorf("unexpected appsvc entries: %+v", entries)
	}

	if inv["win01"].OSType() != OSWindows {
		t.Errorf("win01 should parse as windows")
	}
}

func TestLoadInventoryMissingFile(t *testing.T) {
	if _, err := LoadInventory(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing inventory file")
	}
}

func TestLoadInventoryMalformed(t *testing.T) {
	path := writeFile(t, "inventory.json", "{not json")
	if _, err := LoadInventory(path); err == nil {
		t.Error("expected error for malformed inventory file")
	}
}

func TestLoadInventoryOrNew(t *testing.T) {
	inv, err := LoadInventoryOrNew(filepath.Join(t.TempDir(), "inventory.json"))
	if err != nil {
		t.Fatalf("missing file should yield an empty inventory, got %v", err)
	}
	if len(inv) != 0 {
		t.Errorf("got %d servers, want empty inventory", len(inv))
	}

	// A malformed file must surface the parse error; starting fresh here
	// would let a later Save destroy every existing entry.
	path := writeFile(t, "inventory.json", "{not json")
	if _, err := LoadInventoryOrNew(path); err == nil {
		t.Error("expected parse error for malformed inventory file")
	}
}

func TestLoadKeysOrNew(t *testing.T) {
	keys, err := LoadKeysOrNew(filepath.Join(t.TempDir(), "keys.json"))
	if err != nil {
		t.Fatalf("missing file should yield an empty key file, got %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d servers, want empty key file", len(keys))
	}

	path := writeFile(t, "keys.json", "[broken")
	if _, err := LoadKeysOrNew(path); err == nil {
		t.Error("expected parse error for malformed credential file")
	}
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		in   string
		want OSType
	}{
		{"linux", OSLinux},
		{"Linux", OSLinux},
		{" LINUX ", OSLinux},
		{"windows", OSWindows},
		{"solaris", OSWindows},
		{"", OSWindows},
	}
	for _, tt := range tests {
		if got := ParseOS(tt.in); got != tt.want {
			t.Errorf("ParseOS(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKeyFor(t *testing.T) {
	path := writeFile(t, "keys.json", sampleKeys)
	keys, err := LoadKeys(path)
	if err != nil {
		t.Fatalf("LoadKeys() failed: %v", err)
	}

	if got := keys.KeyFor("web01", "appsvc"); got != "/home/operator/.ssh/id_web01" {
		t.Errorf("KeyFor(web01, appsvc) = %q", got)
	}
	if got := keys.KeyFor("web01", "other"); got != "" {
		t.Errorf("KeyFor unknown user = %q, want empty", got)
	}
	if got := keys.KeyFor("unknown", "appsvc"); got != "" {
		t.Errorf("KeyFor unknown server = %q, want empty", got)
	}
}

func TestKeyFileSortedNames(t *testing.T) {
	keys := KeyFile{
		"web02": {Users: map[string]string{"zeta": "/k/z", "alpha": "/k/a"}},
		"web01": {Users: map[string]string{"appsvc": "/k/b"}},
	}

	servers := keys.ServerNames()
	if len(servers) != 2 || servers[0] != "web01" || servers[1] != "web02" {
		t.Errorf("ServerNames() = %v, want sorted order", servers)
	}

	users := keys["web02"].UserNames()
	if len(users) != 2 || users[0] != "alpha" || users[1] != "zeta" {
		t.Errorf("UserNames() = %v, want sorted order", users)
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	inv := Inventory{}
	inv.AddEntry("web01", "linux", "appsvc", PathEntry{LogBasePath: "/var/log/a"})
	inv.AddEntry("web01", "linux", "appsvc", PathEntry{LogBasePath: "/var/log/b"})
	inv.AddEntry("web01", "linux", "batch", PathEntry{LogBasePath: "/var/log/c"})

	if len(inv["web01"].Users["appsvc"]) != 2 {
		t.Errorf("appsvc should have two ordered entries")
	}

	if !inv.RemoveUser("web01", "batch") {
		t.Error("RemoveUser should report success")
	}
	if _, ok := inv["web01"]; !ok {
		t.Error("server with remaining users must survive")
	}

	if !inv.RemoveUser("web01", "appsvc") {
		t.Error("RemoveUser should report success")
	}
	if _, ok := inv["web01"]; ok {
		t.Error("server should be dropped with its last user")
	}

	if inv.RemoveUser("web01", "appsvc") {
		t.Error("removing a missing user should report false")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")

	inv := Inventory{}
	inv.AddEntry("web01", "linux", "appsvc", PathEntry{
		LogBasePath:     "/var/log/app",
		IncludePatterns: []string{"*.log"},
	})
	if err := inv.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	entries := loaded["web01"].Users["appsvc"]
	if len(entries) != 1 || entries[0].IncludePatterns[0] != "*.log" {
		t.Errorf("round trip lost data: %+v", entries)
	}
}

func TestSplitPatterns(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"*.log, app.*", 2},
		{"*.log", 1},
		{"", 0},
		{" , , ", 0},
	}
	for _, tt := range tests {
		if got := SplitPatterns(tt.in); len(got) != tt.want {
			t.Errorf("SplitPatterns(%q) = %v, want %d items", tt.in, got, tt.want)
		}
	}
}

func TestImportCSV(t *testing.T) {
	csv := `server,os,user,log_base_path,log_folder,include_patterns,exclude_patterns
web01,linux,appsvc,/var/log/app,app,"*.log,app.*",*debug*
web01,linux,batch,/var/log/batch,batch,,
win01,windows,Administrator,D:\Logs,iis,u_ex*,
,linux,nobody,/skip,,,
`
	path := writeFile(t, "bulk.csv", csv)

	inv := Inventory{}
	stats, err := inv.ImportCSV(path)
	if err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}

	if stats.Entries != 3 {
		t.Errorf("Entries = %d, want 3 (blank server row skipped)", stats.Entries)
	}
	if len(inv) != 2 {
		t.Errorf("got %d servers, want 2", len(inv))
	}

	entry := inv["web01"].Users["appsvc"][0]
	if len(entry.IncludePatterns) != 2 || entry.IncludePatterns[1] != "app.*" {
		t.Errorf("include patterns = %v", entry.IncludePatterns)
	}
	if len(entry.ExcludePatterns) != 1 {
		t.Errorf("exclude patterns = %v", entry.ExcludePatterns)
	}
}

func TestImportCSVMissingColumns(t *testing.T) {
	path := writeFile(t, "bad.csv", "server,user\nweb01,appsvc\n")
	inv := Inventory{}
	if _, err := inv.ImportCSV(path); err == nil {
		t.Error("expected error for missing required columns")
	}
}

func TestRemoveCSV(t *testing.T) {
	inv := Inventory{}
	inv.AddEntry("web01", "linux", "appsvc", PathEntry{LogBasePath: "/var/log/a"})
	inv.AddEntry("web02", "linux", "appsvc", PathEntry{LogBasePath: "/var/log/b"})

	path := writeFile(t, "remove.csv", "server,user\nweb01,appsvc\nweb09,ghost\n")
	removed, err := inv.RemoveCSV(path)
	if err != nil {
		t.Fatalf("RemoveCSV() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := inv["web01"]; ok {
		t.Error("web01 should be gone")
	}
	if _, ok := inv["web02"]; !ok {
		t.Error("web02 should remain")
	}
}
