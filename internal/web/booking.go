package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

// Layouts accepted for dates coming from forms and the API.
var dayLayouts = []string{"2006-01-02", "02/01/2006"}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dayLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// alertText maps a widget failure to the text shown to the guest.
func alertText(err error) string {
	if alert, ok := widget.AlertFor(err); ok {
		return alert
	}
	if errors.Is(err, widget.ErrNoPicker) {
		return widget.PlaceholderChooseCabin
	}
	return widget.AlertInvalidForm
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	wd := s.Sessions.Lookup(r)
	s.render(w, http.StatusOK, "templates/booking.html", s.bookingData(wd.Snapshot()))
}

// handleBookingForm replays the form's events on the session widget in the
// order the page raises them: contact, cabin, guests, dates. action=submit
// then submits; anything else only refreshes the quote.
func (s *Server) handleBookingForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wd := s.Sessions.Widget(w, r)

	flash := s.applyForm(r.Context(), wd, r)

	var sub *widget.Submission
	if flash == "" && r.FormValue("action") == "submit" {
		res, err := wd.Submit(r.Context(), r.FormValue("client-name"), r.FormValue("client-phone"))
		if err != nil {
			flash = alertText(err)
		} else {
			sub = &res
		}
	}

	data := s.bookingData(wd.Snapshot())
	data.Flash = flash
	data.Submission = sub
	s.render(w, http.StatusOK, "templates/booking.html", data)
}

func (s *Server) applyForm(ctx context.Context, wd *widget.Widget, r *http.Request) string {
	wd.SetContact(r.FormValue("client-name"), r.FormValue("client-phone"))

	cabin := strings.TrimSpace(r.FormValue("cabin"))
	snap := wd.Snapshot()
	if cabin != snap.Draft.Cabin || snap.Picker == nil || snap.Picker.Cabin != cabin {
		if _, err := wd.SelectCabin(ctx, cabin); err != nil && !errors.Is(err, widget.ErrSuperseded) {
			return alertText(err)
		}
	}

	wd.SetGuests(r.FormValue("guests"))

	var dates []time.Time
	for _, field := range []string{"checkin", "checkout"} {
		v := strings.TrimSpace(r.FormValue(field))
		if v == "" {
			continue
		}
		d, err := parseDay(v, s.Location)
		if err != nil {
			return widget.AlertInvalidForm
		}
		dates = append(dates, d)
	}
	if cabin == "" {
		return ""
	}
	if _, err := wd.SelectDates(dates); err != nil {
		return alertText(err)
	}
	return ""
}

func (s *Server) bookingData(snap widget.Snapshot) tmplData {
	data := tmplData{
		Title:   "Reservas",
		Cabins:  s.Cabins,
		Booking: snap,
	}
	if s.BaseURL != "" {
		data.Canonical = strings.TrimRight(s.BaseURL, "/") + "/"
	}
	if len(snap.Dates) > 0 {
		data.CheckIn = snap.Dates[0].Format("2006-01-02")
	}
	if len(snap.Dates) > 1 {
		data.CheckOut = snap.Dates[1].Format("2006-01-02")
	}
	return data
}
