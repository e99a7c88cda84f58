package store

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// ReplaceShifts swaps out the entire roster in one transaction: delete all,
// insert all. Readers observe either the old or the new roster, never a mix.
// Dates are normalized with defaultYear before storage; rows with a blank raw
// date are dropped, while dates that match no known grammar are stored
// verbatim so the bad upstream data stays visible. Returns the number of rows
// stored and how many of them carry an anomalous date key.
func (r *SQLiteRepo) ReplaceShifts(ctx context.Context, rows []domain.RosterRow, defaultYear int) (stored, anomalous int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shifts`); err != nil {
		_ = tx.Rollback()
		return 0, 0, err
	}

	fetchedAt := time.Now().UTC().Unix()
	for _, row := range rows {
		key := domain.NormalizeDate(row.Date, defaultYear)
		if key == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (date_key, person, shift_type, location, fetched_at)
			VALUES (?, ?, ?, ?, ?)`,
			key, row.Person, row.ShiftType, row.Location, fetchedAt,
		); err != nil {
			_ = tx.Rollback()
			return 0, 0, err
		}
		stored++
		if !domain.DateKeyCanonical(key) {
			anomalous++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return stored, anomalous, nil
}

// ShiftsByPerson returns all shifts of one person in chronological order.
// Chronological ordering needs a yyyy-mm-dd comparison key; sorting the stored
// dd-mm-yyyy keys lexically would break across month and year boundaries.
// Anomalous dates sort after all proper ones.
func (r *SQLiteRepo) ShiftsByPerson(ctx context.Context, person string) ([]domain.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_key, person, shift_type, location, fetched_at
		FROM shifts
		WHERE person = ?`,
		person,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts, err := scanShifts(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(shifts, func(i, j int) bool {
		return domain.DateSortKey(shifts[i].Date) < domain.DateSortKey(shifts[j].Date)
	})
	return shifts, nil
}

// ShiftsForDate returns every shift stored under the given date key.
func (r *SQLiteRepo) ShiftsForDate(ctx context.Context, dateKey string) ([]domain.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_key, person, shift_type, location, fetched_at
		FROM shifts
		WHERE date_key = ?`,
		dateKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

// DistinctPersons returns the sorted list of person names present in the
// roster, for the identity picker.
func (r *SQLiteRepo) DistinctPersons(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT person FROM shifts ORDER BY person`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func scanShifts(rows *sql.Rows) ([]domain.Shift, error) {
	var shifts []domain.Shift
	for rows.Next() {
		var (
			s       domain.Shift
			fetched int64
		)
		if err := rows.Scan(&s.Date, &s.Person, &s.ShiftType, &s.Location, &fetched); err != nil {
			return nil, err
		}
		s.FetchedAt = time.Unix(fetched, 0).UTC()
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}
