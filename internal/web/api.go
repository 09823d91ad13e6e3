package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/D0mbrowski/Site-Camping/internal/pricing"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

const maxBodyBytes = 64 << 10

type bookingView struct {
	Name        string               `json:"name"`
	Phone       string               `json:"phone"`
	Cabin       string               `json:"cabin"`
	Guests      string               `json:"guests"`
	Dates       []string             `json:"dates"`
	Total       string               `json:"total"`
	Placeholder string               `json:"placeholder"`
	Picker      *widget.PickerConfig `json:"picker,omitempty"`
}

func viewOf(snap widget.Snapshot) bookingView {
	v := bookingView{
		Name:        snap.Draft.Name,
		Phone:       snap.Draft.Phone,
		Cabin:       snap.Draft.Cabin,
		Guests:      snap.Draft.Guests,
		Dates:       make([]string, 0, len(snap.Dates)),
		Total:       snap.Total,
		Placeholder: snap.Placeholder,
		Picker:      snap.Picker,
	}
	for _, d := range snap.Dates {
		v.Dates = append(v.Dates, d.Format("2006-01-02"))
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleBookingState(w http.ResponseWriter, r *http.Request) {
	wd := s.Sessions.Lookup(r)
	writeJSON(w, http.StatusOK, viewOf(wd.Snapshot()))
}

func (s *Server) handleBookingCabin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cabin string `json:"cabin"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	wd := s.Sessions.Widget(w, r)
	if _, err := wd.SelectCabin(r.Context(), body.Cabin); err != nil {
		if errors.Is(err, widget.ErrSuperseded) {
			writeError(w, http.StatusConflict, "superseded")
			return
		}
		writeError(w, http.StatusBadGateway, alertText(err))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(wd.Snapshot()))
}

func (s *Server) handleBookingGuests(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guests string `json:"guests"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	wd := s.Sessions.Widget(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"total": wd.SetGuests(body.Guests)})
}

func (s *Server) handleBookingDates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Dates []string `json:"dates"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	dates := make([]time.Time, 0, len(body.Dates))
	for _, raw := range body.Dates {
		d, err := parseDay(raw, s.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, widget.AlertInvalidForm)
			return
		}
		dates = append(dates, d)
	}

	wd := s.Sessions.Widget(w, r)
	total, err := wd.SelectDates(dates)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"total": total})
	case errors.Is(err, widget.ErrTooManyDates):
		writeError(w, http.StatusBadRequest, alertText(err))
	default:
		writeError(w, http.StatusConflict, alertText(err))
	}
}

func (s *Server) handleBookingSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	wd := s.Sessions.Widget(w, r)
	wd.SetContact(body.Name, body.Phone)
	sub, err := wd.Submit(r.Context(), body.Name, body.Phone)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, alertText(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"link":         sub.Link,
		"message":      sub.Message,
		"confirmation": sub.Confirmation,
	})
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	cabin := chi.URLParam(r, "cabin")
	blocked, err := s.Availability.Blocked(r.Context(), cabin)
	if err != nil {
		if errors.Is(err, reservations.ErrEmptyCabin) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, widget.AlertCalendarFailed)
		return
	}
	if blocked == nil {
		blocked = []reservations.BlockedInterval{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cabin":   cabin,
		"disable": blocked,
	})
}

// handleQuote prices guests and an optional check-in/check-out pair without
// touching any session.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var dates []time.Time
	for _, key := range []string{"checkin", "checkout"} {
		if d, err := parseDay(q.Get(key), s.Location); err == nil {
			dates = append(dates, d)
		}
	}
	nights := 0
	if len(dates) == 2 {
		nights = pricing.Nights(dates[0], dates[1])
	}
	amount := pricing.Quote(s.Rates, q.Get("guests"), dates)
	writeJSON(w, http.StatusOK, map[string]any{
		"nights": nights,
		"amount": amount.StringFixed(2),
		"total":  pricing.FormatBRL(amount),
	})
}
