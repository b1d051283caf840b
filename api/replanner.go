/*
replanner.go - Automated plan recomputation

PURPOSE:
  Periodically re-runs the planner over all stored activities so end dates
  and the shared load stay current as activities are created, completed or
  re-sized between manual recomputations.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each pass is a normal RunPlan: load, recompute, persist, record a run
  - Results and warnings are logged; a failed pass never crashes the server

CONFIGURATION:
  - Interval: How often to recompute (default: 1 hour)
  - Enabled:  Whether the replanner is active (default: true)

USAGE:
  rp := NewReplanner(store, handler)
  rp.Start()
  // ... later
  rp.Stop()

SEE ALSO:
  - handlers.go: RunPlan (shared with the manual endpoint)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// Replanner re-runs the plan on a fixed interval.
type Replanner struct {
	Store    Store
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReplanner creates a new replanner.
func NewReplanner(store Store, handler *Handler) *Replanner {
	return &Replanner{
		Store:    store,
		Handler:  handler,
		Interval: 1 * time.Hour,
		Enabled:  true,
		stop:     make(chan bool),
	}
}

// Start begins the replanner.
func (rp *Replanner) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if !rp.Enabled {
		log.Println("[Replanner] Disabled, not starting")
		return
	}

	rp.ticker = time.NewTicker(rp.Interval)
	rp.wg.Add(1)

	go rp.run()

	log.Printf("[Replanner] Started with interval: %v", rp.Interval)
}

// Stop stops the replanner.
func (rp *Replanner) Stop() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.ticker != nil {
		rp.ticker.Stop()
		close(rp.stop)
		rp.wg.Wait()
		log.Println("[Replanner] Stopped")
	}
}

func (rp *Replanner) run() {
	defer rp.wg.Done()

	// Run immediately on start
	rp.recompute()

	for {
		select {
		case <-rp.ticker.C:
			rp.recompute()
		case <-rp.stop:
			return
		}
	}
}

func (rp *Replanner) recompute() {
	ctx := context.Background()

	result, run, err := RunPlan(ctx, rp.Store, rp.Handler.Planner)
	if err != nil {
		log.Printf("[Replanner] Recomputation failed: %v", err)
		return
	}

	log.Printf("[Replanner] Completed %s: %d activities, %s hours planned, %d warnings",
		run.ID, len(result.Plans), result.TotalPlanned(), len(result.Warnings))
	for _, warn := range result.Warnings {
		log.Printf("[Replanner] warning: %v", warn)
	}
}

// RunNow triggers an immediate recomputation (for testing/admin).
func (rp *Replanner) RunNow() {
	rp.recompute()
}
