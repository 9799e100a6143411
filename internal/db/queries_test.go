package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatPtr(f float64) *float64 { return &f }

func moodPtr(m daily.Mood) *daily.Mood { return &m }

func newDaily(id string, date time.Time) *daily.Daily {
	return &daily.Daily{ID: id, Date: date, CreatedAt: 1000, UpdatedAt: 1000}
}

func TestInsertIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inserted, err := InsertIfAbsent(ctx, db, newDaily("A", day(2020, 1, 1)))
	if err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}
	if !inserted {
		t.Error("first insert should report inserted")
	}

	inserted, err = InsertIfAbsent(ctx, db, newDaily("B", day(2020, 1, 1)))
	if err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}
	if inserted {
		t.Error("second insert for same day should be a no-op")
	}

	got, err := GetByDay(ctx, db, day(2020, 1, 1))
	if err != nil {
		t.Fatalf("GetByDay() error = %v", err)
	}
	if got.ID != "A" {
		t.Errorf("ID = %q, want %q", got.ID, "A")
	}
	if !got.Date.Equal(day(2020, 1, 1)) {
		t.Errorf("Date = %v, want 2020-01-01", got.Date)
	}
}

func TestGetByDay_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetByDay(context.Background(), db, day(2020, 1, 1))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestUpsert_InsertThenMerge(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := newDaily("A", day(2020, 1, 1))
	d.Mass = floatPtr(70)
	d.Mood = moodPtr(daily.MoodGood)

	stored, inserted, err := Upsert(ctx, db, d)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !inserted {
		t.Error("first upsert should insert")
	}
	if stored.Energy != nil {
		t.Errorf("Energy = %v, want nil", *stored.Energy)
	}

	// Merge: only energy provided; mass and mood must survive
	update := newDaily("B", day(2020, 1, 1))
	update.Energy = floatPtr(2000)
	update.UpdatedAt = 2000

	stored, inserted, err = Upsert(ctx, db, update)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if inserted {
		t.Error("second upsert should update")
	}
	if stored.ID != "A" {
		t.Errorf("ID = %q, want original %q", stored.ID, "A")
	}
	if stored.Mass == nil || *stored.Mass != 70 {
		t.Errorf("Mass = %v, want 70", stored.Mass)
	}
	if stored.Energy == nil || *stored.Energy != 2000 {
		t.Errorf("Energy = %v, want 2000", stored.Energy)
	}
	if stored.Mood == nil || *stored.Mood != daily.MoodGood {
		t.Errorf("Mood = %v, want good", stored.Mood)
	}
	if stored.CreatedAt != 1000 || stored.UpdatedAt != 2000 {
		t.Errorf("timestamps = %d/%d, want 1000/2000", stored.CreatedAt, stored.UpdatedAt)
	}
}

func TestListRange_InclusiveAndOrdered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Insert out of order
	for i, d := range []time.Time{day(2020, 1, 5), day(2020, 1, 1), day(2020, 1, 3), day(2020, 1, 10)} {
		if _, err := InsertIfAbsent(ctx, db, newDaily(string(rune('A'+i)), d)); err != nil {
			t.Fatalf("InsertIfAbsent() error = %v", err)
		}
	}

	got, err := ListRange(ctx, db, day(2020, 1, 1), day(2020, 1, 5))
	if err != nil {
		t.Fatalf("ListRange() error = %v", err)
	}

	want := []string{"2020-01-01", "2020-01-03", "2020-01-05"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Day() != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Day(), want[i])
		}
	}
}

func TestListRange_Empty(t *testing.T) {
	db := setupTestDB(t)

	got, err := ListRange(context.Background(), db, day(2020, 1, 1), day(2020, 1, 31))
	if err != nil {
		t.Fatalf("ListRange() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestGetLatest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	latest, err := GetLatest(ctx, db, time.UTC)
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if latest != nil {
		t.Fatalf("GetLatest() on empty table = %v, want nil", latest)
	}

	for i, d := range []time.Time{day(2020, 2, 1), day(2021, 1, 1), day(2020, 12, 31)} {
		if _, err := InsertIfAbsent(ctx, db, newDaily(string(rune('A'+i)), d)); err != nil {
			t.Fatalf("InsertIfAbsent() error = %v", err)
		}
	}

	latest, err = GetLatest(ctx, db, time.UTC)
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if latest == nil || latest.Day() != "2021-01-01" {
		t.Errorf("GetLatest() = %v, want 2021-01-01", latest)
	}
}

func TestDeleteByDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := InsertIfAbsent(ctx, db, newDaily("A", day(2020, 1, 1))); err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}

	deleted, err := DeleteByDay(ctx, db, day(2020, 1, 1))
	if err != nil {
		t.Fatalf("DeleteByDay() error = %v", err)
	}
	if deleted.ID != "A" {
		t.Errorf("deleted ID = %q, want %q", deleted.ID, "A")
	}

	_, err = DeleteByDay(ctx, db, day(2020, 1, 1))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete error = %v, want NOT_FOUND", err)
	}
}

func TestDeleteAllAndCount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := InsertIfAbsent(ctx, db, newDaily(string(rune('A'+i)), day(2020, 1, i))); err != nil {
			t.Fatalf("InsertIfAbsent() error = %v", err)
		}
	}

	n, err := Count(ctx, db)
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3", n, err)
	}

	deleted, err := DeleteAll(ctx, db)
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteAll() = %d, want 3", deleted)
	}

	n, err = Count(ctx, db)
	if err != nil || n != 0 {
		t.Errorf("Count() after DeleteAll = %d, %v; want 0", n, err)
	}
}

func TestQueries_ClosedDatabaseIsStoreError(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	_, err := ListAll(context.Background(), db, time.UTC)
	if !errors.Is(err, errors.ErrStore) {
		t.Errorf("error = %v, want STORE_ERROR", err)
	}
}

func TestQueries_WorkInsideTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := InsertIfAbsent(ctx, tx, newDaily("A", day(2020, 1, 1))); err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	n, err := Count(ctx, db)
	if err != nil || n != 0 {
		t.Errorf("Count() after rollback = %d, %v; want 0", n, err)
	}
}

func TestScan_PreservesLocation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	loc := time.FixedZone("UTC-5", -5*3600)

	d := &daily.Daily{ID: "A", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, loc), CreatedAt: 1, UpdatedAt: 1}
	if _, err := InsertIfAbsent(ctx, db, d); err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}

	got, err := GetByDay(ctx, db, time.Date(2020, 1, 1, 0, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("GetByDay() error = %v", err)
	}
	if got.Date.Location() != loc {
		t.Errorf("Location = %v, want %v", got.Date.Location(), loc)
	}
}
