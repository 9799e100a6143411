package web

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/csvexport"
	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
	"github.com/burnerhq/burner/internal/index"
	"github.com/burnerhq/burner/internal/ops"
	"github.com/burnerhq/burner/internal/records"
)

const monthParamLayout = "2006-01"

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store     *records.Store
	cfg       *config.Config
	cal       *index.Cache
	renderer  *Renderer
	formatter *csvexport.UnitFormatter
	logger    *slog.Logger
	now       func() time.Time
}

// HandleCalendar handles GET /calendar: a Monday-first month grid.
func (h *Handlers) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := ops.ParseMonth(r.URL.Query().Get("month"), h.store.Location())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	first, last := daily.MonthBounds(month, h.store.Location())

	lookup, indexed, err := h.monthRecords(r.Context(), first, last)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	today := h.store.Normalize(h.now()).Format(daily.DayLayout)
	gridStart := first.AddDate(0, 0, -mondayOffset(first))

	var weeks [][]CalendarCell
	for day := gridStart; !day.After(last); {
		week := make([]CalendarCell, 0, len(weekdays))
		for range weekdays {
			cell := CalendarCell{
				Date:    day.Format(daily.DayLayout),
				Day:     day.Day(),
				InMonth: day.Month() == first.Month(),
			}
			cell.Today = cell.Date == today
			if cell.InMonth {
				if d, ok := lookup(day); ok {
					h.fillCell(&cell, d)
				}
			}
			week = append(week, cell)
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}

	h.renderer.renderPage(w, r, "calendar", CalendarPageData{
		PageData: PageData{
			Title:   first.Format("January 2006"),
			Version: h.renderer.version,
			Nav:     "calendar",
		},
		Month:    first.Format("January 2006"),
		Prev:     first.AddDate(0, -1, 0).Format(monthParamLayout),
		Next:     first.AddDate(0, 1, 0).Format(monthParamLayout),
		Weekdays: weekdays,
		Weeks:    weeks,
		Indexed:  indexed,
	})
}

// monthRecords returns a lookup for records in [first, last]. Months inside
// the calendar index are served from it; others are fetched from the store.
func (h *Handlers) monthRecords(ctx context.Context, first, last time.Time) (func(time.Time) (daily.Daily, bool), bool, error) {
	start, end := h.cal.Bounds()
	if !first.Before(start) && !last.After(end) {
		return func(day time.Time) (daily.Daily, bool) {
			pos, ok := h.cal.PositionFor(day)
			if !ok {
				return daily.Daily{}, false
			}
			return h.cal.RecordAt(pos)
		}, true, nil
	}

	items, err := h.store.FetchRange(ctx, first, last)
	if err != nil {
		return nil, false, err
	}
	byDay := make(map[string]daily.Daily, len(items))
	for _, d := range items {
		byDay[d.Day()] = d
	}
	return func(day time.Time) (daily.Daily, bool) {
		d, ok := byDay[day.Format(daily.DayLayout)]
		return d, ok
	}, false, nil
}

func (h *Handlers) fillCell(cell *CalendarCell, d daily.Daily) {
	cell.Tracked = !d.IsEmpty()
	if d.Mass != nil {
		cell.Mass = h.formatter.FormatMass(*d.Mass)
	}
	if d.Energy != nil {
		cell.Energy = h.formatter.FormatEnergy(*d.Energy)
	}
	if d.Mood != nil {
		cell.Mood = d.Mood.String()
	}
}

// HandleDay handles GET /days/{date}: the editor for one day.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	date, err := ops.ParseDate(r.PathValue("date"), h.store.Location())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	d, err := h.store.Fetch(r.Context(), date)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		if d == nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, d)
		return
	}

	data := DayPageData{
		PageData: PageData{
			Version: h.renderer.version,
			Nav:     "calendar",
		},
		Date:       date.Format(daily.DayLayout),
		Heading:    h.heading(date),
		MassUnit:   h.formatter.MassUnit,
		EnergyUnit: h.formatter.EnergyUnit,
		Moods:      daily.MoodNames(),
		Saved:      r.URL.Query().Get("saved") == "1",
	}
	data.Title = data.Heading
	if d != nil {
		data.Exists = true
		if d.Mass != nil {
			data.Mass = formValue(csvexport.ConvertMass(*d.Mass, h.formatter.MassUnit))
		}
		if d.Energy != nil {
			data.Energy = formValue(csvexport.ConvertEnergy(*d.Energy, h.formatter.EnergyUnit))
		}
		if d.Mood != nil {
			data.Mood = d.Mood.String()
		}
	}

	h.renderer.renderPage(w, r, "day", data)
}

// heading uses the calendar index section title when the date is indexed.
func (h *Handlers) heading(date time.Time) string {
	if pos, ok := h.cal.PositionFor(date); ok {
		if title := h.cal.TitleForSection(pos.Section); title != "" {
			return title
		}
	}
	return date.Format(index.SectionTitleLayout)
}

// HandleSaveDay handles POST /days/{date}. Form values are in display units;
// empty fields keep their stored values.
func (h *Handlers) HandleSaveDay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return
	}

	mass, err := parseFormFloat(r.PostForm.Get("mass"), "mass")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	energy, err := parseFormFloat(r.PostForm.Get("energy"), "energy")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if mass != nil {
		*mass = csvexport.MassToKilograms(*mass, h.formatter.MassUnit)
	}
	if energy != nil {
		*energy = csvexport.EnergyToKilocalories(*energy, h.formatter.EnergyUnit)
	}

	input := ops.UpdateInput{
		Date:   r.PathValue("date"),
		Mass:   mass,
		Energy: energy,
	}
	if mood := strings.TrimSpace(r.PostForm.Get("mood")); mood != "" {
		input.Mood = &mood
	}

	d, err := ops.Update(r.Context(), h.store, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.logger.Debug("day saved", "date", d.Day())

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, d)
		return
	}
	http.Redirect(w, r, "/days/"+url.PathEscape(d.Day())+"?saved=1", http.StatusSeeOther)
}

// HandleExport handles GET /export.csv, optionally limited by start and end.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, count, err := ops.RenderCSV(r.Context(), h.store, h.cfg, ops.ExportInput{
		Start: q.Get("start"),
		End:   q.Get("end"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := fmt.Sprintf("burner-%s.csv", h.now().Format(daily.DayLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Record-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleReport handles GET /report: the monthly summary rendered from markdown.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Report(r.Context(), h.store, h.cfg, ops.ReportInput{Month: r.URL.Query().Get("month")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	month := out.Summary.Month
	h.renderer.renderPage(w, r, "report", ReportPageData{
		PageData: PageData{
			Title:   "Report " + out.Month,
			Version: h.renderer.version,
			Nav:     "report",
		},
		Month:        out.Month,
		Prev:         month.AddDate(0, -1, 0).Format(monthParamLayout),
		Next:         month.AddDate(0, 1, 0).Format(monthParamLayout),
		RenderedHTML: h.renderer.renderMarkdown(out.Markdown),
	})
}

// mondayOffset returns how many days t is past the preceding Monday.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func parseFormFloat(s, field string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s must be a number", field))
	}
	return &v, nil
}

// formValue prints v with at most two decimals and no trailing zeros.
func formValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
