// Package ledger implements the append-only cost-impact ledger on SQLite.
// Each positive-savings recommendation appends one (original, reduced) row;
// the summary is aggregated on demand, never maintained incrementally.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carerx/drug-advisor-api/interfaces"
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time check to ensure SQLiteLedger implements CostLedger
var _ interfaces.CostLedger = (*SQLiteLedger)(nil)

// SQLiteLedger stores cost-impact rows in a local SQLite database.
// database/sql serializes access, so the ledger is safe for concurrent
// appends from parallel requests.
type SQLiteLedger struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the ledger database at path.
func Open(path string) (*SQLiteLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cost_impact (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			original_cost REAL NOT NULL,
			reduced_cost REAL NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Append inserts one cost-impact row. Rows are never deduplicated:
// repeating a recommendation appends again.
func (l *SQLiteLedger) Append(originalCost, reducedCost float64) error {
	_, err := l.db.Exec(
		`INSERT INTO cost_impact (original_cost, reduced_cost, timestamp) VALUES (?, ?, ?)`,
		originalCost, reducedCost, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append cost impact: %w", err)
	}
	return nil
}

// Summary aggregates all rows into totals and a reduction percentage.
func (l *SQLiteLedger) Summary() (interfaces.CostSummary, error) {
	row := l.db.QueryRow(`SELECT COALESCE(SUM(original_cost), 0), COALESCE(SUM(reduced_cost), 0) FROM cost_impact`)

	var summary interfaces.CostSummary
	if err := row.Scan(&summary.OriginalTotalCost, &summary.ReducedTotalCost); err != nil {
		return interfaces.CostSummary{}, fmt.Errorf("failed to summarize cost impact: %w", err)
	}

	summary.TotalSavings = summary.OriginalTotalCost - summary.ReducedTotalCost
	if summary.OriginalTotalCost > 0 {
		summary.ReductionPercent = summary.TotalSavings / summary.OriginalTotalCost * 100
	}
	return summary, nil
}

// Records returns all rows, newest first.
func (l *SQLiteLedger) Records() ([]interfaces.CostImpact, error) {
	rows, err := l.db.Query(`SELECT id, original_cost, reduced_cost, timestamp FROM cost_impact ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read cost impact records: %w", err)
	}
	defer rows.Close()

	var records []interfaces.CostImpact
	for rows.Next() {
		var rec interfaces.CostImpact
		if err := rows.Scan(&rec.ID, &rec.OriginalCost, &rec.ReducedCost, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan cost impact record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cost impact records: %w", err)
	}
	return records, nil
}

// Clear deletes all rows.
func (l *SQLiteLedger) Clear() error {
	if _, err := l.db.Exec(`DELETE FROM cost_impact`); err != nil {
		return fmt.Errorf("failed to clear cost impact records: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
