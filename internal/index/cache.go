// Package index maps calendar dates to layout positions and positions back
// to records for a bounded date range, kept current from store change sets.
package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/records"
)

// SectionTitleLayout formats section titles ("long" date style).
const SectionTitleLayout = "January 2, 2006"

// Position locates a day in the calendar's chronological layout.
// Section counts days from the start bound; Row is always 0.
type Position struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// Fetcher loads records for a date range.
type Fetcher interface {
	FetchRange(ctx context.Context, start, end time.Time) ([]daily.Daily, error)
}

// Cache is a bidirectional date <-> position index over [start, end].
// It is safe for concurrent readers while Watch applies change sets.
type Cache struct {
	start time.Time
	end   time.Time
	loc   *time.Location

	mu      sync.RWMutex
	objects map[Position]daily.Daily
	dates   map[string]Position // day key -> position
	byID    map[string]string   // record ID -> day key it was cached under
}

// New creates an empty cache bound to the inclusive range [start, end].
func New(start, end time.Time, loc *time.Location) (*Cache, error) {
	start, end = daily.Normalize(start, loc), daily.Normalize(end, loc)
	if start.After(end) {
		return nil, fmt.Errorf("index start %s is after end %s", start.Format(daily.DayLayout), end.Format(daily.DayLayout))
	}
	return &Cache{
		start:   start,
		end:     end,
		loc:     start.Location(),
		objects: make(map[Position]daily.Daily),
		dates:   make(map[string]Position),
		byID:    make(map[string]string),
	}, nil
}

// Bounds returns the inclusive date bounds.
func (c *Cache) Bounds() (time.Time, time.Time) {
	return c.start, c.end
}

// Load fetches every record in the bounds and caches it.
func (c *Cache) Load(ctx context.Context, f Fetcher) error {
	items, err := f.FetchRange(ctx, c.start, c.end)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range items {
		c.cache(d)
	}
	return nil
}

// Sections is the number of days covered by the bounds.
func (c *Cache) Sections() int {
	return daily.DaysBetween(c.start, c.end) + 1
}

// TitleForSection formats the date of a section, or "" if out of range.
func (c *Cache) TitleForSection(section int) string {
	if section < 0 || section >= c.Sections() {
		return ""
	}
	return c.start.AddDate(0, 0, section).Format(SectionTitleLayout)
}

// PositionFor returns the position of date: the cached one if present,
// otherwise computed from the bounds. ok is false outside the bounds.
func (c *Cache) PositionFor(date time.Time) (Position, bool) {
	day := daily.Normalize(date, c.loc)
	if !c.contains(day) {
		return Position{}, false
	}

	c.mu.RLock()
	pos, ok := c.dates[day.Format(daily.DayLayout)]
	c.mu.RUnlock()
	if ok {
		return pos, true
	}
	return c.compute(day), true
}

// RecordAt returns the cached record at pos. It never consults the store.
func (c *Cache) RecordAt(pos Position) (daily.Daily, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.objects[pos]
	return d, ok
}

// PositionOfRecord returns where a record is cached, matched by identity.
func (c *Cache) PositionOfRecord(d daily.Daily) (Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.byID[d.ID]
	if !ok {
		return Position{}, false
	}
	pos, ok := c.dates[key]
	return pos, ok
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Apply updates the index from one change set. Inserted and updated records
// are (re)cached at their computed position. Deleted records are evicted by
// identity, using the date they were cached under.
func (c *Cache) Apply(cs records.ChangeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range cs.Inserted {
		c.cache(d)
	}
	for _, d := range cs.Updated {
		c.cache(d)
	}
	for _, d := range cs.Deleted {
		c.evict(d.ID)
	}
}

// Watch applies change sets from sub until ctx is done or sub is closed.
// It closes sub on return.
func (c *Cache) Watch(ctx context.Context, sub *records.Subscription) error {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done():
			return nil
		case cs := <-sub.C:
			c.Apply(cs)
		}
	}
}

// cache stores d under its computed position. Caller holds c.mu.
func (c *Cache) cache(d daily.Daily) {
	day := daily.Normalize(d.Date, c.loc)
	if !c.contains(day) {
		return
	}
	key := day.Format(daily.DayLayout)

	// A record re-cached under a different date leaves no stale entry behind.
	if prev, ok := c.byID[d.ID]; ok && prev != key {
		c.evict(d.ID)
	}

	pos := c.compute(day)
	c.dates[key] = pos
	c.objects[pos] = d
	c.byID[d.ID] = key
}

// evict removes the entries recorded for a record ID. Caller holds c.mu.
func (c *Cache) evict(id string) {
	key, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)

	pos, ok := c.dates[key]
	if !ok {
		return
	}
	delete(c.dates, key)
	if cur, ok := c.objects[pos]; ok && cur.ID == id {
		delete(c.objects, pos)
	}
}

func (c *Cache) contains(day time.Time) bool {
	return !day.Before(c.start) && !day.After(c.end)
}

func (c *Cache) compute(day time.Time) Position {
	return Position{Section: daily.DaysBetween(c.start, day), Row: 0}
}
