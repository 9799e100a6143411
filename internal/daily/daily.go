package daily

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the storage and wire format of a normalized date.
const DayLayout = "2006-01-02"

// Daily is one calendar day's tracked data.
type Daily struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"-"`
	Mass      *float64  `json:"mass,omitempty"`   // kilograms
	Energy    *float64  `json:"energy,omitempty"` // kilocalories
	Mood      *Mood     `json:"mood,omitempty"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

// Day returns the record's date in DayLayout.
func (d Daily) Day() string {
	return d.Date.Format(DayLayout)
}

// IsEmpty reports whether no value has been tracked for the day.
func (d Daily) IsEmpty() bool {
	return d.Mass == nil && d.Energy == nil && d.Mood == nil
}

// MarshalJSON adds the "date" field in DayLayout.
func (d Daily) MarshalJSON() ([]byte, error) {
	type alias Daily
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{
		Date:  d.Day(),
		alias: alias(d),
	})
}

// Mood is how the user felt on a given day.
type Mood int

const (
	MoodAwful Mood = iota
	MoodBad
	MoodNeutral
	MoodGood
	MoodGreat
)

var moodNames = []string{"awful", "bad", "neutral", "good", "great"}

// String returns the lowercase mood name.
func (m Mood) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mood(%d)", int(m))
	}
	return moodNames[m]
}

// Valid reports whether m is one of the defined moods.
func (m Mood) Valid() bool {
	return m >= MoodAwful && m <= MoodGreat
}

// ParseMood parses a mood name (case-insensitive).
func ParseMood(s string) (Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range moodNames {
		if s == name {
			return Mood(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mood %q (want one of %s)", s, strings.Join(moodNames, ", "))
}

// MarshalJSON encodes the mood by name.
func (m Mood) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mood name.
func (m *Mood) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMood(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MoodNames lists every valid mood name in order.
func MoodNames() []string {
	out := make([]string, len(moodNames))
	copy(out, moodNames)
	return out
}
