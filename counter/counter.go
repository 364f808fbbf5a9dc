// Package counter implements named, durable sequence counters backed by the
// counters table. Increments happen in a single upsert statement so
// concurrent callers, even across processes sharing the database file, never
// receive the same value twice.
package counter

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SequenceBill is the sequence receipt numbers are drawn from.
const SequenceBill = "bill"

// Querier is satisfied by *sql.DB and *sql.Tx, so an increment can join a
// larger transaction (bill creation draws its receipt number inside the
// insert transaction).
type Querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// Next atomically increments the named sequence and returns the new value,
// creating the sequence at 1 if it does not exist. A storage failure is
// returned as-is; callers must abort whatever the number was for.
func Next(q Querier, name string) (int64, error) {
	var v int64
	err := q.QueryRow(`INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = counters.value + 1
		RETURNING value`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("incrementing sequence %q: %w", name, err)
	}
	return v, nil
}

// Current returns the sequence's value without incrementing, or 0 if the
// sequence has never been used.
func Current(q Querier, name string) (int64, error) {
	var v int64
	err := q.QueryRow("SELECT value FROM counters WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading sequence %q: %w", name, err)
	}
	return v, nil
}

// Reset sets the sequence to an explicit value and stamps last_reset. The
// next call to Next returns value+1.
func Reset(q Querier, name string, value int64) error {
	var v int64
	err := q.QueryRow(`INSERT INTO counters (name, value, last_reset) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, last_reset = CURRENT_TIMESTAMP
		RETURNING value`, name, value).Scan(&v)
	if err != nil {
		return fmt.Errorf("resetting sequence %q: %w", name, err)
	}
	return nil
}

// CheckAndResetDue resets to 0 every sequence whose reset frequency boundary
// (day, month or year) has been crossed since its last reset. The policy
// lives here; the trigger is the caller's scheduler.
func CheckAndResetDue(db *sql.DB, now time.Time) error {
	rows, err := db.Query("SELECT name, reset_frequency, last_reset FROM counters WHERE reset_frequency != 'never'")
	if err != nil {
		return fmt.Errorf("listing resettable sequences: %w", err)
	}
	defer rows.Close()

	type due struct{ name string }
	var pending []due
	for rows.Next() {
		var name, freq string
		var last time.Time
		if err := rows.Scan(&name, &freq, &last); err != nil {
			return fmt.Errorf("scanning sequence row: %w", err)
		}
		if boundaryCrossed(freq, last, now) {
			pending = append(pending, due{name})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range pending {
		if err := Reset(db, p.name, 0); err != nil {
			return err
		}
		slog.Info("sequence reset", "name", p.name)
	}
	return nil
}

func boundaryCrossed(freq string, last, now time.Time) bool {
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	switch freq {
	case "daily":
		return ly != ny || lm != nm || ld != nd
	case "monthly":
		return ly != ny || lm != nm
	case "yearly":
		return ly != ny
	}
	return false
}
