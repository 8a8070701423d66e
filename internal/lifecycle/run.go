package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/dnchandra/logfleet/internal/store"
)

// Pipeline ties one fleet walk to the run-history store. The store is
// best-effort audit: a write failure is logged, never fatal, and a nil
// store disables recording entirely.
type Pipeline struct {
	Fleet  *Fleet
	Store  *store.Store
	Logger *slog.Logger
}

// Execute runs the action across the fleet and records the outcome. The
// returned summary is always valid, including when recording failed.
func (p *Pipeline) Execute(ctx context.Context, action Action, dryRun bool) *Summary {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	var rec *store.Run
	if p.Store != nil {
		rec = &store.Run{
			Operation: action.Name(),
			DryRun:    dryRun,
			StartTime: time.Now(),
			Status:    "running",
		}
		if err := p.Store.CreateRun(rec); err != nil {
			log.Warn("could not record run start", "error", err)
			rec = nil
		}
	}

	sum := p.Fleet.Run(ctx, action)

	log.Info("run complete",
		"action", action.Name(),
		"dry_run", dryRun,
		"discovered", sum.Discovered,
		"matched", sum.Matched,
		"acted", sum.Acted,
		"failed", sum.Failed,
		"skipped_servers", sum.SkippedServers,
	)

	if rec != nil {
		rec.EndTime = time.Now()
		rec.Discovered = sum.Discovered
		rec.Matched = sum.Matched
		rec.Acted = sum.Acted
		rec.Failed = sum.Failed
		rec.SkippedServers = sum.SkippedServers
		rec.Status = "completed"
		if sum.Failed > 0 || sum.SkippedServers > 0 {
			rec.Status = "partial"
		}
		if err := p.Store.UpdateRun(rec); err != nil {
			log.Warn("could not record run result", "error", err)
		}
		for _, ue := range sum.Errors {
			if err := p.Store.AddRunError(rec.ID, ue.Server, ue.Unit, ue.Reason); err != nil {
				log.Warn("could not record run error", "error", err)
				break
			}
		}
	}

	return sum
}
