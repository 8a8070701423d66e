package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/dnchandra/logfleet/internal/match"
	"github.com/dnchandra/logfleet/internal/remote"
)

// UnitError records why one server, user, or path entry failed.
type UnitError struct {
	Server string
	Unit   string
	Reason string
}

// Summary accumulates the counters for one run. All mutation goes through
// the add methods so a parallel fleet walk stays consistent.
type Summary struct {
	mu             sync.Mutex
	Discovered     int
	Matched        int
	Acted          int
	Failed         int
	SkippedServers int
	Errors         []UnitError
}

func (s *Summary) addDiscovered(n int) {
	s.mu.Lock()
	s.Discovered += n
	s.mu.Unlock()
}

func (s *Summary) addMatched(n int) {
	s.mu.Lock()
	s.Matched += n
	s.mu.Unlock()
}

func (s *Summary) addActed() {
	s.mu.Lock()
	s.Acted++
	s.mu.Unlock()
}

func (s *Summary) addFailure(server, unit, reason string) {
	s.mu.Lock()
	s.Failed++
	s.Errors = append(s.Errors, UnitError{Server: server, Unit: unit, Reason: reason})
	s.mu.Unlock()
}

func (s *Summary) addSkippedServer(server, reason string) {
	s.mu.Lock()
	s.SkippedServers++
	s.Errors = append(s.Errors, UnitError{Server: server, Unit: server, Reason: reason})
	s.mu.Unlock()
}

// Fleet walks the whole inventory for one action. Servers are independent:
// one host being down never stops the rest of the run.
type Fleet struct {
	Inventory      inventory.Inventory
	Keys           inventory.KeyFile
	Dial           remote.Dialer
	CommandTimeout time.Duration
	// Workers bounds concurrent server walks. 1 (the default behavior)
	// processes the fleet strictly sequentially.
	Workers int
	Today   time.Time
	Logger  *slog.Logger
}

// Run applies the action across every (server, user, path-entry) unit and
// returns the accumulated summary. Only the caller's ctx can end the run
// early; per-unit failures are logged and counted, never propagated.
func (f *Fleet) Run(ctx context.Context, action Action) *Summary {
	if f.Logger == nil {
		f.Logger = slog.Default()
	}
	sum := &Summary{}
	servers := f.Inventory.ServerNames()

	f.Logger.Info("starting fleet run", "action", action.Name(), "servers", len(servers), "workers", f.workerCount())

	if f.workerCount() == 1 {
		for _, name := range servers {
			if ctx.Err() != nil {
				break
			}
			f.processServer(ctx, action, name, sum)
		}
		return sum
	}

	// Bounded pool across servers. Units on distinct servers never share a
	// remote path, and a single run performs one action kind, so no two
	// workers can touch the same file destructively.
	jobs := make(chan string, len(servers))
	var wg sync.WaitGroup
	for i := 0; i < f.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if ctx.Err() != nil {
					continue
				}
				f.processServer(ctx, action, name, sum)
			}
		}()
	}
	for _, name := range servers {
		jobs <- name
	}
	close(jobs)
	wg.Wait()

	return sum
}

func (f *Fleet) workerCount() int {
	if f.Workers < 1 {
		return 1
	}
	return f.Workers
}

func (f *Fleet) processServer(ctx context.Context, action Action, name string, sum *Summary) {
	srv := f.Inventory[name]
	log := f.Logger.With("server", name, "action", action.Name())

	if _, ok := f.Keys[name]; !ok {
		reason := "no credential entry for server"
		log.Warn("skipping server", "reason", reason)
		sum.addSkippedServer(name, reason)
		return
	}

	osType := srv.OSType()
	for _, user := range srv.UserNames() {
		keyPath := f.Keys.KeyFor(name, user)
		if err := checkKey(name, user, keyPath); err != nil {
			log.Warn("skipping user", "user", user, "error", err)
			sum.addFailure(name, fmt.Sprintf("%s@%s", user, name), err.Error())
			continue
		}

		conn, err := f.Dial(name, user, keyPath)
		if err != nil {
			log.Warn("cannot connect", "user", user, "error", err)
			sum.addFailure(name, fmt.Sprintf("%s@%s", user, name), err.Error())
			continue
		}

		for _, entry := range srv.Users[user] {
			if ctx.Err() != nil {
				break
			}
			unit := Unit{Server: name, User: user, OS: osType, Entry: entry}
			f.processEntry(ctx, action, conn, unit, sum)
		}

		if err := conn.Close(); err != nil {
			log.Debug("closing connection", "user", user, "error", err)
		}
	}
}

func (f *Fleet) processEntry(ctx context.Context, action Action, conn remote.Conn, unit Unit, sum *Summary) {
	log := f.Logger.With("server", unit.Server, "user", unit.User, "base_path", unit.Entry.LogBasePath, "action", action.Name())
	cmds := remote.CommandsFor(string(unit.OS))

	discoverCtx, cancel := context.WithTimeout(ctx, f.CommandTimeout)
	files, err := Discover(discoverCtx, conn, cmds, unit.Entry.LogBasePath, action.Filter())
	cancel()
	if err != nil {
		log.Warn("discovery failed", "error", err)
		sum.addFailure(unit.Server, unit.String(), err.Error())
		return
	}
	sum.addDiscovered(len(files))

	inc := match.Compile(unit.Entry.IncludePatterns)
	exc := match.Compile(unit.Entry.ExcludePatterns)

	eligible := SelectEligible(files, unit.OS, inc, exc, action.Policy(), f.Today, func(path string) {
		log.Warn("cannot determine file age from filename, skipping", "file", Basename(path))
	})
	sum.addMatched(len(eligible))

	if len(eligible) == 0 {
		log.Info("no eligible files")
		return
	}
	log.Info("eligible files", "count", len(eligible))

	for _, path := range eligible {
		if ctx.Err() != nil {
			return
		}
		fileCtx, cancel := context.WithTimeout(ctx, action.FileTimeout())
		err := action.Apply(fileCtx, conn, unit, path)
		cancel()
		if err != nil {
			log.Warn("action failed", "file", path, "error", err)
			sum.addFailure(unit.Server, unit.String(), fmt.Sprintf("%s %s: %v", action.Name(), path, err))
			continue
		}
		sum.addActed()
	}
}

// checkKey enforces the per-user credential precondition: a configured key
// path that exists on the operator host.
func checkKey(server, user, keyPath string) error {
	if keyPath == "" {
		return &CredentialError{Server: server, User: user, Reason: "no key configured"}
	}
	if _, err := os.Stat(keyPath); err != nil {
		return &CredentialError{Server: server, User: user, Reason: fmt.Sprintf("key file %s: %v", keyPath, err)}
	}
	return nil
}
