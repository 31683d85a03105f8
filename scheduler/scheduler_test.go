package scheduler

import (
	"errors"
	"testing"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/interfaces"
)

type summaryLedger struct {
	summary     interfaces.CostSummary
	summaryErr  error
	summaryGets int
}

func (l *summaryLedger) Append(originalCost, reducedCost float64) error { return nil }
func (l *summaryLedger) Summary() (interfaces.CostSummary, error) {
	l.summaryGets++
	return l.summary, l.summaryErr
}
func (l *summaryLedger) Records() ([]interfaces.CostImpact, error) { return nil, nil }
func (l *summaryLedger) Clear() error                              { return nil }
func (l *summaryLedger) Close() error                              { return nil }

func testCatalog(n int) *catalog.Catalog {
	var records []entities.DrugRecord
	for i := 0; i < n; i++ {
		generic := "GEN"
		records = append(records, entities.DrugRecord{
			DrugName:    "DRUG " + string(rune('A'+i)),
			GenericName: &generic,
		})
	}
	return catalog.New(records)
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(testCatalog(1), &summaryLedger{})
	if s.scheduler == nil {
		t.Fatal("gocron scheduler not initialized")
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(testCatalog(1), &summaryLedger{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if !s.scheduler.IsRunning() {
		t.Error("scheduler not running after Start")
	}
	if got := len(s.scheduler.Jobs()); got != 2 {
		t.Errorf("jobs = %d, want 2", got)
	}
}

func TestCheckCatalogHealthDoesNotPanic(t *testing.T) {
	// Empty and nil catalogs only log, they never panic.
	NewScheduler(testCatalog(0), &summaryLedger{}).checkCatalogHealth()
	NewScheduler(nil, &summaryLedger{}).checkCatalogHealth()
	NewScheduler(testCatalog(2), &summaryLedger{}).checkCatalogHealth()
}

func TestLogSavingsSnapshot(t *testing.T) {
	ledger := &summaryLedger{summary: interfaces.CostSummary{TotalSavings: 40}}
	s := NewScheduler(testCatalog(1), ledger)

	s.logSavingsSnapshot()
	if ledger.summaryGets != 1 {
		t.Errorf("summary reads = %d, want 1", ledger.summaryGets)
	}

	// A failing or missing ledger is tolerated.
	NewScheduler(testCatalog(1), &summaryLedger{summaryErr: errors.New("closed")}).logSavingsSnapshot()
	NewScheduler(testCatalog(1), nil).logSavingsSnapshot()
}
