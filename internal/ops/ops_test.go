package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/db"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/records"
)

func setup(t *testing.T) (*records.Store, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.Timezone = "UTC"

	database, err := db.Init(cfg.BaseDir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return records.New(database, time.UTC), cfg
}

func floatPtr(f float64) *float64 { return &f }
func stringPtr(s string) *string  { return &s }

func TestUpdateThenGet(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(70)})
	require.NoError(t, err)
	_, err = Update(ctx, store, UpdateInput{Date: "2020-01-01", Energy: floatPtr(2000), Mood: stringPtr("Good")})
	require.NoError(t, err)

	d, err := Get(ctx, store, GetInput{Date: "2020-01-01"})
	require.NoError(t, err)
	require.Equal(t, 70.0, *d.Mass)
	require.Equal(t, 2000.0, *d.Energy)
	require.Equal(t, "good", d.Mood.String())
}

func TestUpdate_InvalidInput(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "01/02/2020"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Update(ctx, store, UpdateInput{Date: "2020-01-01", Mood: stringPtr("ecstatic")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(-1)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestGet_NotFoundUnlessCreate(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	_, err := Get(ctx, store, GetInput{Date: "2020-01-01"})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	created, err := Get(ctx, store, GetInput{Date: "2020-01-01", Create: true})
	require.NoError(t, err)
	require.True(t, created.IsEmpty())

	again, err := Get(ctx, store, GetInput{Date: "2020-01-01", Create: true})
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
}

func TestGet_RelativeDates(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	orig := now
	now = func() time.Time { return time.Date(2020, 3, 10, 15, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	d, err := Get(ctx, store, GetInput{Date: "yesterday", Create: true})
	require.NoError(t, err)
	require.Equal(t, "2020-03-09", d.Day())

	d, err = Get(ctx, store, GetInput{Create: true})
	require.NoError(t, err)
	require.Equal(t, "2020-03-10", d.Day())
}

func TestRange(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	for _, date := range []string{"2020-01-03", "2020-01-01", "2020-01-05"} {
		_, err := Update(ctx, store, UpdateInput{Date: date, Mass: floatPtr(70)})
		require.NoError(t, err)
	}

	out, err := Range(ctx, store, RangeInput{Start: "2020-01-01", End: "2020-01-03"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, "2020-01-01", out.Items[0].Day())
	require.Equal(t, "2020-01-03", out.Items[1].Day())

	out, err = Range(ctx, store, RangeInput{Start: "2021-01-01", End: "2021-01-31"})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Zero(t, out.Count)

	_, err = Range(ctx, store, RangeInput{End: "2020-01-03"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Range(ctx, store, RangeInput{Start: "2020-02-01", End: "2020-01-01"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestLatest(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	out, err := Latest(ctx, store)
	require.NoError(t, err)
	require.Nil(t, out.Item)

	for _, date := range []string{"2020-01-03", "2020-01-07", "2020-01-05"} {
		_, err := Update(ctx, store, UpdateInput{Date: date, Mass: floatPtr(70)})
		require.NoError(t, err)
	}

	out, err = Latest(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "2020-01-07", out.Item.Day())
}

func TestDelete(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	created, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(70)})
	require.NoError(t, err)

	out, err := Delete(ctx, store, DeleteInput{Date: "2020-01-01"})
	require.NoError(t, err)
	require.True(t, out.Deleted)
	require.Equal(t, created.ID, out.ID)

	_, err = Delete(ctx, store, DeleteInput{Date: "2020-01-01"})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Delete(ctx, store, DeleteInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestDeleteAll_RequiresConfirm(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	for _, date := range []string{"2020-01-01", "2020-01-02"} {
		_, err := Update(ctx, store, UpdateInput{Date: date, Mass: floatPtr(70)})
		require.NoError(t, err)
	}

	out, err := DeleteAll(ctx, store, DeleteAllInput{})
	require.NoError(t, err)
	require.Zero(t, out.Deleted)
	require.Contains(t, out.Message, "confirm")

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	out, err = DeleteAll(ctx, store, DeleteAllInput{Confirm: true})
	require.NoError(t, err)
	require.Equal(t, 2, out.Deleted)
	require.Equal(t, "Permanently deleted 2 entries", out.Message)

	out, err = DeleteAll(ctx, store, DeleteAllInput{Confirm: true})
	require.NoError(t, err)
	require.Equal(t, "No entries to delete", out.Message)
}

func TestExport_DefaultPath(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(70), Energy: floatPtr(2000)})
	require.NoError(t, err)
	_, err = Update(ctx, store, UpdateInput{Date: "2020-01-02", Energy: floatPtr(1500)})
	require.NoError(t, err)

	out, err := Export(ctx, store, cfg, ExportInput{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, filepath.Join(cfg.BaseDir, "exports"), filepath.Dir(out.Path))
	require.True(t, strings.HasPrefix(filepath.Base(out.Path), "burner-"))

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	require.Equal(t,
		"Date; Mass; Energy\n"+
			"Wednesday, January 1, 2020; 70 kg; 2,000 kcal\n"+
			"Thursday, January 2, 2020; missing data; 1,500 kcal",
		string(data))

	info, err := os.Stat(out.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExport_RangeAndReplace(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	for _, date := range []string{"2020-01-01", "2020-01-02", "2020-01-03"} {
		_, err := Update(ctx, store, UpdateInput{Date: date, Mass: floatPtr(70)})
		require.NoError(t, err)
	}

	path := filepath.Join(cfg.BaseDir, "exports", "jan.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	out, err := Export(ctx, store, cfg, ExportInput{Path: path, Start: "2020-01-02", End: "2020-01-03"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, strings.Split(string(data), "\n"), 3)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRenderCSV(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(70)})
	require.NoError(t, err)

	data, count, err := RenderCSV(ctx, store, cfg, ExportInput{})
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, "Date; Mass; Energy\nWednesday, January 1, 2020; 70 kg; missing data", string(data))

	_, _, err = RenderCSV(ctx, store, cfg, ExportInput{End: "2020-01-01"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestExport_RejectsPathOutsideExports(t *testing.T) {
	store, cfg := setup(t)

	_, err := Export(context.Background(), store, cfg, ExportInput{Path: filepath.Join(t.TempDir(), "out.csv")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestExport_Cancelled(t *testing.T) {
	store, cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, store, cfg, ExportInput{})
	require.Error(t, err)
}

func TestImportHealth(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mood: stringPtr("good")})
	require.NoError(t, err)

	path := filepath.Join(cfg.BaseDir, "exports", "health.json")
	doc := `{
  "mass": [{"start": "2020-01-01T07:00:00Z", "kg": 70.2}],
  "energy": [
    {"start": "2020-01-01T09:00:00Z", "kcal": 400},
    {"start": "2020-01-02T09:00:00Z", "kcal": 900}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	res, err := ImportHealth(ctx, store, cfg, ImportHealthInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.Equal(t, 1, res.Updated)

	d, err := Get(ctx, store, GetInput{Date: "2020-01-01"})
	require.NoError(t, err)
	require.Equal(t, 70.2, *d.Mass)
	require.Equal(t, 400.0, *d.Energy)
	require.Equal(t, "good", d.Mood.String()) // preserved
}

func TestImportHealth_Since(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	path := filepath.Join(cfg.BaseDir, "exports", "health.json")
	doc := `{"mass": [
  {"start": "2020-01-01T07:00:00Z", "kg": 70},
  {"start": "2020-01-05T07:00:00Z", "kg": 69}
], "energy": []}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	res, err := ImportHealth(ctx, store, cfg, ImportHealthInput{Path: path, Since: "2020-01-03"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
}

func TestImportHealth_Missing(t *testing.T) {
	store, cfg := setup(t)

	_, err := ImportHealth(context.Background(), store, cfg, ImportHealthInput{
		Path: filepath.Join(cfg.BaseDir, "exports", "missing.json"),
	})
	require.True(t, errors.Is(err, errors.ErrFileNotFound))
}

func TestReport(t *testing.T) {
	store, cfg := setup(t)
	ctx := context.Background()

	_, err := Update(ctx, store, UpdateInput{Date: "2020-01-01", Mass: floatPtr(70), Energy: floatPtr(2000)})
	require.NoError(t, err)
	_, err = Update(ctx, store, UpdateInput{Date: "2020-02-01", Mass: floatPtr(80)})
	require.NoError(t, err)

	out, err := Report(ctx, store, cfg, ReportInput{Month: "2020-01"})
	require.NoError(t, err)
	require.Equal(t, "2020-01", out.Month)
	require.Equal(t, 1, out.Summary.Count)
	require.Equal(t, 70.0, *out.Summary.AverageMass)
	require.Contains(t, out.Markdown, "# January 2020")

	_, err = Report(ctx, store, cfg, ReportInput{Month: "January"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
