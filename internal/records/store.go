// Package records is the daily record store: one record per calendar day,
// with fetch, range, latest, upsert and wipe operations over SQLite, and a
// change channel that subscribers use to keep derived indexes current.
package records

import (
	"context"
	"crypto/rand"
	"database/sql"
	"io"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/db"
	"github.com/burnerhq/burner/internal/errors"
)

// Store owns the persistent collection of daily records.
// A Store is safe for concurrent use; mutations are serialized so that
// change sets reach subscribers in commit order.
type Store struct {
	db     *sql.DB
	loc    *time.Location
	broker *broker
	now    func() time.Time

	mu      sync.Mutex // guards mutations and entropy
	entropy io.Reader
}

// New creates a Store over an initialized database.
// Dates are normalized to midnight in loc (nil means time.Local).
func New(database *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		db:      database,
		loc:     loc,
		broker:  newBroker(),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Location returns the zone dates are normalized in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Normalize truncates t to midnight in the store's zone.
func (s *Store) Normalize(t time.Time) time.Time {
	return daily.Normalize(t, s.loc)
}

// Subscribe returns a subscription that receives a ChangeSet for every
// mutation committed after this call. Callers must Close it when done.
func (s *Store) Subscribe(buffer int) *Subscription {
	return s.broker.subscribe(buffer)
}

// Fetch returns the record for date, or NOT_FOUND.
func (s *Store) Fetch(ctx context.Context, date time.Time) (*daily.Daily, error) {
	return db.GetByDay(ctx, s.db, s.Normalize(date))
}

// FetchOrCreate returns the record for date, persisting a new empty one if
// none exists yet.
func (s *Store) FetchOrCreate(ctx context.Context, date time.Time) (*daily.Daily, error) {
	day := s.Normalize(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.newDaily(day)
	if err != nil {
		return nil, err
	}

	inserted, err := db.InsertIfAbsent(ctx, s.db, d)
	if err != nil {
		return nil, err
	}

	stored, err := db.GetByDay(ctx, s.db, day)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.broker.publish(ChangeSet{Inserted: []daily.Daily{*stored}})
	}
	return stored, nil
}

// FetchRange returns all records with start <= date <= end, ascending by date.
func (s *Store) FetchRange(ctx context.Context, start, end time.Time) ([]daily.Daily, error) {
	start, end = s.Normalize(start), s.Normalize(end)
	if start.After(end) {
		return nil, errors.NewInvalidRequest("range start must not be after range end")
	}
	return db.ListRange(ctx, s.db, start, end)
}

// FetchLatest returns the most recent record by date, or nil if the store is empty.
func (s *Store) FetchLatest(ctx context.Context) (*daily.Daily, error) {
	return db.GetLatest(ctx, s.db, s.loc)
}

// FetchAll returns every record ascending by date.
func (s *Store) FetchAll(ctx context.Context) ([]daily.Daily, error) {
	return db.ListAll(ctx, s.db, s.loc)
}

// UpdateInput contains parameters for the UpdateOrCreate operation.
// Nil values leave the stored value unchanged.
type UpdateInput struct {
	Date   time.Time
	Mass   *float64 // kilograms
	Energy *float64 // kilocalories
	Mood   *daily.Mood
}

// UpdateOrCreate upserts the record for input.Date. Only non-nil fields are
// written; on create, nil fields stay absent. The change is durable when
// UpdateOrCreate returns without error.
func (s *Store) UpdateOrCreate(ctx context.Context, input UpdateInput) (*daily.Daily, error) {
	if err := validateValues(input.Mass, input.Energy, input.Mood); err != nil {
		return nil, err
	}
	day := s.Normalize(input.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.newDaily(day)
	if err != nil {
		return nil, err
	}
	d.Mass, d.Energy, d.Mood = input.Mass, input.Energy, input.Mood

	stored, inserted, err := db.Upsert(ctx, s.db, d)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.broker.publish(ChangeSet{Inserted: []daily.Daily{*stored}})
	} else {
		s.broker.publish(ChangeSet{Updated: []daily.Daily{*stored}})
	}
	return stored, nil
}

// Delete removes the record for date. Returns NOT_FOUND if there is none.
func (s *Store) Delete(ctx context.Context, date time.Time) (*daily.Daily, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := db.DeleteByDay(ctx, s.db, s.Normalize(date))
	if err != nil {
		return nil, err
	}

	s.broker.publish(ChangeSet{Deleted: []daily.Daily{*deleted}})
	return deleted, nil
}

// DeleteAll removes every record, but only when confirm is true; otherwise it
// is a no-op. A failure while listing the records is treated as nothing to
// delete. Returns the number of records removed.
func (s *Store) DeleteAll(ctx context.Context, confirm bool) (int, error) {
	if !confirm {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewStore("delete_all", err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := db.ListAll(ctx, tx, s.loc)
	if err != nil {
		return 0, nil
	}
	if len(existing) == 0 {
		return 0, nil
	}

	n, err := db.DeleteAll(ctx, tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.NewStore("delete_all", err)
	}

	s.broker.publish(ChangeSet{Deleted: existing})
	return n, nil
}

// newDaily builds an empty record for a normalized day. Caller holds s.mu.
func (s *Store) newDaily(day time.Time) (*daily.Daily, error) {
	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &daily.Daily{
		ID:        id.String(),
		Date:      day,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}, nil
}

// validateValues rejects negative or non-finite measurements and unknown moods.
func validateValues(mass, energy *float64, mood *daily.Mood) error {
	if mass != nil && (math.IsNaN(*mass) || math.IsInf(*mass, 0) || *mass <= 0) {
		return errors.NewInvalidRequest("mass must be a positive number")
	}
	if energy != nil && (math.IsNaN(*energy) || math.IsInf(*energy, 0) || *energy < 0) {
		return errors.NewInvalidRequest("energy must be a non-negative number")
	}
	if mood != nil && !mood.Valid() {
		return errors.NewInvalidRequest("unknown mood")
	}
	return nil
}
