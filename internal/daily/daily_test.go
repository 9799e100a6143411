package daily

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	in := time.Date(2020, 1, 1, 23, 30, 0, 0, time.UTC) // 01:30 on Jan 2 in loc
	got := Normalize(in, loc)

	require.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, loc), got)
	require.Equal(t, got, Normalize(got, loc), "Normalize should be idempotent")
}

func TestParseDay(t *testing.T) {
	now := time.Date(2020, 3, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"iso date", "2020-01-01", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"whitespace", " 2020-01-01 ", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty means today", "", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"today", "Today", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"yesterday", "yesterday", time.Date(2020, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"bad format", "01/02/2020", time.Time{}, true},
		{"bad day", "2020-02-30", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.input, time.UTC, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Zagreb")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// DST starts on 2020-03-29 in Europe; that day is 23h long.
	a := time.Date(2020, 3, 28, 0, 0, 0, 0, loc)
	b := time.Date(2020, 3, 30, 0, 0, 0, 0, loc)

	require.Equal(t, 2, DaysBetween(a, b))
	require.Equal(t, -2, DaysBetween(b, a))
	require.Equal(t, 0, DaysBetween(a, a))
}

func TestDaysBetween_LongSpan(t *testing.T) {
	a := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 426 years with 104 leap days
	require.Equal(t, 426*365+104, DaysBetween(a, b))
	require.Equal(t, -(426*365 + 104), DaysBetween(b, a))
	require.Equal(t, DaysBetween(a, b)-10, DaysBetween(a, b.AddDate(0, 0, -10)))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2020, 2, 14, 12, 0, 0, 0, time.UTC), time.UTC)

	require.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), first)
	require.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), last)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2020, 3, 15, 18, 0, 0, 0, time.UTC)

	got, err := ParseMonth("", time.UTC, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseMonth("2019-12", time.UTC, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonth("2019-13", time.UTC, now)
	require.Error(t, err)
}

func TestParseMood(t *testing.T) {
	m, err := ParseMood(" Good ")
	require.NoError(t, err)
	require.Equal(t, MoodGood, m)
	require.Equal(t, "good", m.String())

	_, err = ParseMood("ecstatic")
	require.Error(t, err)

	require.False(t, Mood(42).Valid())
	require.Equal(t, "mood(42)", Mood(42).String())
}

func TestDaily_JSON(t *testing.T) {
	mass := 70.5
	mood := MoodGreat
	d := Daily{
		ID:        "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Date:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Mass:      &mass,
		Mood:      &mood,
		CreatedAt: 10,
		UpdatedAt: 20,
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "2020-01-01", decoded["date"])
	require.Equal(t, 70.5, decoded["mass"])
	require.Equal(t, "great", decoded["mood"])
	require.NotContains(t, decoded, "energy")
}

func TestDaily_IsEmpty(t *testing.T) {
	require.True(t, Daily{}.IsEmpty())

	energy := 2000.0
	require.False(t, Daily{Energy: &energy}.IsEmpty())
}
