// Package scheduler provides background monitoring jobs for the drug advisor
// API: an hourly catalog health watch and a daily snapshot of accumulated
// cost savings, coordinated with gocron.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/interfaces"
	"github.com/carerx/drug-advisor-api/logging"
)

// Scheduler runs periodic monitoring jobs over the catalog and ledger
type Scheduler struct {
	catalog   *catalog.Catalog
	ledger    interfaces.CostLedger
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(cat *catalog.Catalog, ledger interfaces.CostLedger) *Scheduler {
	return &Scheduler{
		catalog:   cat,
		ledger:    ledger,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start registers the monitoring jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Hourly catalog health watch
	if _, err := s.scheduler.Every(1).Hours().Do(s.checkCatalogHealth); err != nil {
		logging.Error("Failed to schedule catalog health watch", "error", err)
		return fmt.Errorf("failed to schedule catalog health watch: %w", err)
	}

	// Daily savings snapshot at 06:00
	if _, err := s.scheduler.Every(1).Days().At("06:00").Do(s.logSavingsSnapshot); err != nil {
		logging.Error("Failed to schedule savings snapshot", "error", err)
		return fmt.Errorf("failed to schedule savings snapshot: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkCatalogHealth warns when the in-memory catalog is unusable
func (s *Scheduler) checkCatalogHealth() {
	if s.catalog == nil || s.catalog.Len() == 0 {
		logging.Warn("Drug catalog is empty, recommendations are unavailable")
		return
	}
	logging.Debug("Catalog health check passed", "record_count", s.catalog.Len())
}

// logSavingsSnapshot logs the accumulated savings from the ledger
func (s *Scheduler) logSavingsSnapshot() {
	if s.ledger == nil {
		return
	}

	summary, err := s.ledger.Summary()
	if err != nil {
		logging.Error("Failed to read savings summary", "error", err)
		return
	}

	logging.Info("Daily cost savings snapshot",
		"original_total_cost", summary.OriginalTotalCost,
		"reduced_total_cost", summary.ReducedTotalCost,
		"total_savings", summary.TotalSavings,
		"reduction_percent", summary.ReductionPercent,
	)
}
