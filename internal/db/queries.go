package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
)

const dailyColumns = `id, day, mass, energy, mood, created_at, updated_at`

// InsertIfAbsent stores d unless a record for the same day already exists.
// Reports whether a row was inserted.
func InsertIfAbsent(ctx context.Context, q Querier, d *daily.Daily) (bool, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO dailies (`+dailyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO NOTHING
	`,
		d.ID, d.Day(), toNullFloat(d.Mass), toNullFloat(d.Energy), toNullMood(d.Mood),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return false, errors.NewStore("insert", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewStore("insert", err)
	}
	return n == 1, nil
}

// Upsert inserts d, or merges its non-nil values into the existing record for
// the same day. Returns the stored record and whether it was newly inserted.
// d.ID is only used when inserting.
func Upsert(ctx context.Context, q Querier, d *daily.Daily) (*daily.Daily, bool, error) {
	row := q.QueryRowContext(ctx, `
		INSERT INTO dailies (`+dailyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			mass       = COALESCE(excluded.mass, dailies.mass),
			energy     = COALESCE(excluded.energy, dailies.energy),
			mood       = COALESCE(excluded.mood, dailies.mood),
			updated_at = excluded.updated_at
		RETURNING `+dailyColumns,
		d.ID, d.Day(), toNullFloat(d.Mass), toNullFloat(d.Energy), toNullMood(d.Mood),
		d.CreatedAt, d.UpdatedAt,
	)

	stored, err := scanDaily(row, d.Date.Location())
	if err != nil {
		return nil, false, errors.NewStore("upsert", err)
	}
	return stored, stored.ID == d.ID, nil
}

// GetByDay retrieves the record for a normalized day.
func GetByDay(ctx context.Context, q Querier, day time.Time) (*daily.Daily, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+dailyColumns+`
		FROM dailies
		WHERE day = ?
	`, day.Format(daily.DayLayout))

	d, err := scanDaily(row, day.Location())
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(day.Format(daily.DayLayout))
	}
	if err != nil {
		return nil, errors.NewStore("fetch", err)
	}
	return d, nil
}

// ListRange returns records with start <= day <= end, ascending by day.
func ListRange(ctx context.Context, q Querier, start, end time.Time) ([]daily.Daily, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+dailyColumns+`
		FROM dailies
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC
	`, start.Format(daily.DayLayout), end.Format(daily.DayLayout))
	if err != nil {
		return nil, errors.NewStore("fetch_range", err)
	}
	defer rows.Close()

	return collect(rows, start.Location(), "fetch_range")
}

// ListAll returns every record ascending by day.
func ListAll(ctx context.Context, q Querier, loc *time.Location) ([]daily.Daily, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+dailyColumns+`
		FROM dailies
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, errors.NewStore("fetch_all", err)
	}
	defer rows.Close()

	return collect(rows, loc, "fetch_all")
}

// GetLatest returns the record with the most recent day, or nil if the table is empty.
func GetLatest(ctx context.Context, q Querier, loc *time.Location) (*daily.Daily, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+dailyColumns+`
		FROM dailies
		ORDER BY day DESC
		LIMIT 1
	`)

	d, err := scanDaily(row, loc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStore("fetch_latest", err)
	}
	return d, nil
}

// DeleteByDay removes the record for a day and returns it.
func DeleteByDay(ctx context.Context, q Querier, day time.Time) (*daily.Daily, error) {
	row := q.QueryRowContext(ctx, `
		DELETE FROM dailies
		WHERE day = ?
		RETURNING `+dailyColumns,
		day.Format(daily.DayLayout))

	d, err := scanDaily(row, day.Location())
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(day.Format(daily.DayLayout))
	}
	if err != nil {
		return nil, errors.NewStore("delete", err)
	}
	return d, nil
}

// DeleteAll removes every record. Returns the number of rows deleted.
func DeleteAll(ctx context.Context, q Querier) (int, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM dailies`)
	if err != nil {
		return 0, errors.NewStore("delete_all", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewStore("delete_all", err)
	}
	return int(n), nil
}

// Count returns the number of stored records.
func Count(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM dailies`).Scan(&n); err != nil {
		return 0, errors.NewStore("count", err)
	}
	return n, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDaily scans a single row into a Daily, parsing its day in loc.
func scanDaily(row scanner, loc *time.Location) (*daily.Daily, error) {
	var (
		d      daily.Daily
		day    string
		mass   sql.NullFloat64
		energy sql.NullFloat64
		mood   sql.NullInt64
	)

	if err := row.Scan(&d.ID, &day, &mass, &energy, &mood, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation(daily.DayLayout, day, loc)
	if err != nil {
		return nil, fmt.Errorf("corrupt day %q for %s: %w", day, d.ID, err)
	}
	d.Date = date
	d.Mass = fromNullFloat(mass)
	d.Energy = fromNullFloat(energy)
	if mood.Valid {
		m := daily.Mood(mood.Int64)
		d.Mood = &m
	}

	return &d, nil
}

// collect drains rows into a slice.
func collect(rows *sql.Rows, loc *time.Location, op string) ([]daily.Daily, error) {
	var out []daily.Daily
	for rows.Next() {
		d, err := scanDaily(rows, loc)
		if err != nil {
			return nil, errors.NewStore(op, err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStore(op, err)
	}
	return out, nil
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func toNullMood(m *daily.Mood) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*m), Valid: true}
}
