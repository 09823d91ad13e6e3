package widget

import (
	"time"

	"github.com/D0mbrowski/Site-Camping/internal/reservations"
)

// Locale carries the calendar's day and month names.
type Locale struct {
	FirstDayOfWeek    int      `json:"firstDayOfWeek"`
	WeekdaysShorthand []string `json:"weekdaysShorthand"`
	WeekdaysLonghand  []string `json:"weekdaysLonghand"`
	MonthsShorthand   []string `json:"monthsShorthand"`
	MonthsLonghand    []string `json:"monthsLonghand"`
}

// PortugueseBR is the calendar locale, weeks starting on Sunday.
var PortugueseBR = Locale{
	FirstDayOfWeek:    0,
	WeekdaysShorthand: []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"},
	WeekdaysLonghand:  []string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"},
	MonthsShorthand:   []string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"},
	MonthsLonghand:    []string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho", "Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"},
}

// PickerConfig is what a client-side range calendar needs to render.
type PickerConfig struct {
	Cabin      string                         `json:"cabin"`
	Mode       string                         `json:"mode"`
	MinDate    string                         `json:"minDate"`
	DateFormat string                         `json:"dateFormat"`
	Disable    []reservations.BlockedInterval `json:"disable"`
	Locale     Locale                         `json:"locale"`
}

// Picker is one range-mode date picker bound to a cabin. A widget replaces
// its picker on every cabin change.
type Picker struct {
	cabin     string
	minDate   time.Time
	disabled  []span
	raw       []reservations.BlockedInterval
	loc       *time.Location
	selected  []time.Time
	destroyed bool
}

type span struct{ from, to time.Time }

// Date layouts accepted in the reservations sheet.
var sheetLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

func newPicker(cabin string, today time.Time, blocked []reservations.BlockedInterval, loc *time.Location) *Picker {
	p := &Picker{
		cabin:   cabin,
		minDate: startOfDay(today, loc),
		raw:     blocked,
		loc:     loc,
	}
	for _, b := range blocked {
		from, ok1 := parseSheetDate(b.From, loc)
		to, ok2 := parseSheetDate(b.To, loc)
		if !ok1 || !ok2 {
			continue
		}
		if to.Before(from) {
			from, to = to, from
		}
		p.disabled = append(p.disabled, span{from: from, to: to})
	}
	return p
}

func parseSheetDate(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range sheetLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Config returns the client-side configuration for this picker.
func (p *Picker) Config() PickerConfig {
	disable := p.raw
	if disable == nil {
		disable = []reservations.BlockedInterval{}
	}
	return PickerConfig{
		Cabin:      p.cabin,
		Mode:       "range",
		MinDate:    p.minDate.Format("2006-01-02"),
		DateFormat: "d/m/Y",
		Disable:    disable,
		Locale:     PortugueseBR,
	}
}

// Cabin is the cabin this picker was built for.
func (p *Picker) Cabin() string { return p.cabin }

// Selected returns a copy of the selected dates, sorted.
func (p *Picker) Selected() []time.Time {
	return append([]time.Time(nil), p.selected...)
}

// IsDisabled reports whether day falls before the minimum date or inside a
// booked interval (both ends inclusive).
func (p *Picker) IsDisabled(day time.Time) bool {
	d := startOfDay(day, p.loc)
	if d.Before(p.minDate) {
		return true
	}
	for _, s := range p.disabled {
		if !d.Before(s.from) && !d.After(s.to) {
			return true
		}
	}
	return false
}

// selectRange validates and stores a 0-2 date selection. A range is refused
// when any day it covers is disabled.
func (p *Picker) selectRange(dates []time.Time) error {
	if p.destroyed {
		return ErrNoPicker
	}
	if len(dates) > 2 {
		return ErrTooManyDates
	}
	sel := make([]time.Time, len(dates))
	for i, d := range dates {
		sel[i] = startOfDay(d, p.loc)
	}
	if len(sel) == 2 && sel[1].Before(sel[0]) {
		sel[0], sel[1] = sel[1], sel[0]
	}
	switch len(sel) {
	case 1:
		if p.IsDisabled(sel[0]) {
			return ErrDateUnavailable
		}
	case 2:
		for d := sel[0]; !d.After(sel[1]); d = d.AddDate(0, 0, 1) {
			if p.IsDisabled(d) {
				return ErrDateUnavailable
			}
		}
	}
	p.selected = sel
	return nil
}

func (p *Picker) clear() { p.selected = nil }

func (p *Picker) destroy() {
	p.destroyed = true
	p.selected = nil
}
