package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// OSType selects the remote command syntax for a server.
type OSType string

const (
	OSLinux   OSType = "linux"
	OSWindows OSType = "windows"
)

// ParseOS maps an inventory "os" value to an OSType. Anything other than
// "linux" is treated as Windows.
func ParseOS(s string) OSType {
	if strings.EqualFold(strings.TrimSpace(s), "linux") {
		return OSLinux
	}
	return OSWindows
}

// PathEntry is one monitored directory for one user on one server.
type PathEntry struct {
	LogBasePath     string   `json:"log_base_path"`
	LogFolder       string   `json:"log_folder,omitempty"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`
}

// Server is one inventory entry. OS is fixed for the lifetime of the entry
// and governs parsing and command syntax for every path under it.
type Server struct {
	OS    string                 `json:"os"`
	Users map[string][]PathEntry `json:"users"`
}

// OSType returns the parsed operating system of the server.
func (s *Server) OSType() OSType {
	return ParseOS(s.OS)
}

// Inventory maps server name to its entry.
type Inventory map[string]*Server

// ServerKeys holds the per-user SSH key paths for one server.
type ServerKeys struct {
	Users map[string]string `json:"users"`
}

// KeyFile maps server name to its user key paths.
type KeyFile map[string]*ServerKeys

// LoadInventory reads the inventory file. A missing or malformed file is a
// configuration error and fatal to the run.
func LoadInventory(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}
	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory file %s: %w", path, err)
	}
	return inv, nil
}

// LoadInventoryOrNew reads the inventory file, starting from an empty
// inventory when the file does not exist yet. Any other failure, malformed
// JSON included, is returned as-is so editing tools never overwrite a
// corrupt file with a fresh one.
func LoadInventoryOrNew(path string) (Inventory, error) {
	inv, err := LoadInventory(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Inventory{}, nil
	}
	return inv, err
}

// LoadKeys reads the credential file mapping (server, user) to key paths.
func LoadKeys(path string) (KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}
	var keys KeyFile
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing credential file %s: %w", path, err)
	}
	return keys, nil
}

// LoadKeysOrNew reads the credential file, starting from an empty key file
// when it does not exist yet. Parse failures are returned, not discarded.
func LoadKeysOrNew(path string) (KeyFile, error) {
	keys, err := LoadKeys(path)
	if errors.Is(err, fs.ErrNotExist) {
		return KeyFile{}, nil
	}
	return keys, err
}

// KeyFor returns the configured key path for user on server, or "" if the
// server or user has no entry.
func (k KeyFile) KeyFor(server, user string) string {
	sk, ok := k[server]
	if !ok || sk == nil {
		return ""
	}
	return sk.Users[user]
}

// Save writes the inventory back to disk with indentation, matching the
// layout the interactive editor produces.
func (inv Inventory) Save(path string) error {
	data, err := json.MarshalIndent(inv, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing inventory file: %w", err)
	}
	return nil
}

// Save writes the credential file back to disk with indentation.
func (k KeyFile) Save(path string) error {
	data, err := json.MarshalIndent(k, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding credential file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// AddEntry appends a path entry for user on server, creating the server
// (with the given os type) and user as needed. When the server already
// exists its recorded os type is kept.
func (inv Inventory) AddEntry(server, osType, user string, entry PathEntry) {
	srv, ok := inv[server]
	if !ok {
		srv = &Server{OS: osType, Users: make(map[string][]PathEntry)}
		inv[server] = srv
	}
	if srv.Users == nil {
		srv.Users = make(map[string][]PathEntry)
	}
	srv.Users[user] = append(srv.Users[user], entry)
}

// RemoveUser deletes a user from a server, and the server itself once its
// last user is gone. It reports whether anything was removed.
func (inv Inventory) RemoveUser(server, user string) bool {
	srv, ok := inv[server]
	if !ok {
		return false
	}
	if _, ok := srv.Users[user]; !ok {
		return false
	}
	delete(srv.Users, user)
	if len(srv.Users) == 0 {
		delete(inv, server)
	}
	return true
}

// ServerNames returns the inventory's server names in sorted order, for
// deterministic iteration and display.
func (inv Inventory) ServerNames() []string {
	names := make([]string, 0, len(inv))
	for name := range inv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserNames returns a server's user names in sorted order.
func (s *Server) UserNames() []string {
	names := make([]string, 0, len(s.Users))
	for name := range s.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServerNames returns the credential file's server names in sorted order.
func (k KeyFile) ServerNames() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserNames returns the entry's user names in sorted order.
func (sk *ServerKeys) UserNames() []string {
	names := make([]string, 0, len(sk.Users))
	for name := range sk.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitPatterns parses a comma-separated pattern cell into a clean list,
// dropping empty items.
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
