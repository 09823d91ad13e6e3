// Package widget holds the booking widget: cabin choice, guest count, date
// range, live quote and submission into a chat hand-off link.
package widget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/D0mbrowski/Site-Camping/internal/chatlink"
	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
	"github.com/D0mbrowski/Site-Camping/internal/pricing"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
)

// Date-field placeholders.
const (
	PlaceholderChooseCabin = "Escolha a cabana primeiro"
	PlaceholderChooseRange = "Selecione o período"
)

// Availability reports the booked intervals of a cabin.
type Availability interface {
	Blocked(ctx context.Context, cabin string) ([]reservations.BlockedInterval, error)
}

// Request is a submitted booking request.
type Request struct {
	Name     string
	Phone    string
	Cabin    string
	Guests   string
	CheckIn  time.Time
	CheckOut time.Time
	Total    string
	Link     string
}

// Recorder keeps submitted requests. Recording is best effort.
type Recorder interface {
	Record(ctx context.Context, r Request) error
}

// Options configure a Widget.
type Options struct {
	Availability   Availability
	Rates          pricing.Rates
	WhatsAppNumber string
	Location       *time.Location
	Recorder       Recorder
	Logger         *logging.Logger
	Metrics        *metrics.BookingMetrics
	Now            func() time.Time
}

// Draft is the unsaved input of one booking attempt.
type Draft struct {
	Name   string
	Phone  string
	Cabin  string
	Guests string
}

// Snapshot is a read-only view of the widget for rendering.
type Snapshot struct {
	Draft       Draft
	Dates       []time.Time
	Total       string
	Placeholder string
	Picker      *PickerConfig
}

// Submission is the outcome of a successful submit.
type Submission struct {
	Link         string
	Message      string
	Confirmation string
	Request      Request
}

// Widget is one booking form. It is safe for concurrent use; a cabin
// selection whose fetch finishes after a newer selection is dropped.
type Widget struct {
	opts Options

	mu          sync.Mutex
	draft       Draft
	picker      *Picker
	total       string
	placeholder string
	gen         uint64
}

func New(opts Options) *Widget {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rates == (pricing.Rates{}) {
		opts.Rates = pricing.DefaultRates()
	}
	if opts.WhatsAppNumber == "" {
		opts.WhatsAppNumber = "5554996387239"
	}
	return &Widget{
		opts:        opts,
		total:       pricing.ZeroBRL,
		placeholder: PlaceholderChooseCabin,
	}
}

// SelectCabin handles a cabin change: it loads the cabin's booked dates and
// replaces the picker. An empty cabin is ignored.
func (w *Widget) SelectCabin(ctx context.Context, cabin string) (PickerConfig, error) {
	cabin = strings.TrimSpace(cabin)

	w.mu.Lock()
	w.draft.Cabin = cabin
	if cabin == "" {
		w.mu.Unlock()
		return PickerConfig{}, nil
	}
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	blocked, err := w.opts.Availability.Blocked(ctx, cabin)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return PickerConfig{}, ErrSuperseded
	}
	if err != nil {
		w.opts.Logger.Error("calendar setup failed", "error", err, "cabin", cabin)
		if w.picker != nil {
			w.picker.destroy()
			w.picker = nil
		}
		w.recalculate()
		return PickerConfig{}, &AlertError{Alert: AlertCalendarFailed, Err: err}
	}
	if w.picker != nil {
		w.picker.destroy()
	}
	w.picker = newPicker(cabin, w.opts.Now(), blocked, w.opts.Location)
	w.placeholder = PlaceholderChooseRange
	w.recalculate()

	w.opts.Logger.Debug("calendar ready", "cabin", cabin, "blocked", len(blocked))
	return w.picker.Config(), nil
}

// SetGuests handles guest-count input. The total is recomputed only when a
// full range is already selected.
func (w *Widget) SetGuests(guests string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Guests = strings.TrimSpace(guests)
	if w.picker != nil && len(w.picker.selected) == 2 {
		w.recalculate()
	}
	return w.total
}

// SelectDates handles a range change on the current picker.
func (w *Widget) SelectDates(dates []time.Time) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.picker == nil {
		return w.total, ErrNoPicker
	}
	if err := w.picker.selectRange(dates); err != nil {
		if err == ErrDateUnavailable {
			return w.total, &AlertError{Alert: AlertDateBooked, Err: err}
		}
		return w.total, err
	}
	w.recalculate()
	return w.total, nil
}

// SetContact stores the guest's name and phone.
func (w *Widget) SetContact(name, phone string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Name = strings.TrimSpace(name)
	w.draft.Phone = strings.TrimSpace(phone)
}

// Total is the currently displayed total.
func (w *Widget) Total() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Draft:       w.draft,
		Total:       w.total,
		Placeholder: w.placeholder,
	}
	if w.picker != nil {
		cfg := w.picker.Config()
		s.Picker = &cfg
		s.Dates = w.picker.Selected()
	}
	return s
}

// Submit validates the draft and turns it into a chat hand-off link. An
// invalid draft yields an *AlertError and leaves the widget untouched. On
// success the form is reset.
func (w *Widget) Submit(ctx context.Context, name, phone string) (Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	var dates []time.Time
	if w.picker != nil {
		dates = w.picker.selected
	}
	if name == "" || phone == "" || w.draft.Cabin == "" || w.draft.Guests == "" || len(dates) < 2 {
		w.opts.Metrics.ObserveSubmit("invalid")
		return Submission{}, &AlertError{Alert: AlertInvalidForm}
	}

	msg := chatlink.Message{
		Name:     name,
		Phone:    phone,
		Cabin:    w.draft.Cabin,
		Guests:   w.draft.Guests,
		CheckIn:  dates[0],
		CheckOut: dates[1],
		Total:    w.total,
	}
	text := msg.Text()
	link := chatlink.Link(w.opts.WhatsAppNumber, text)
	req := Request{
		Name:     name,
		Phone:    phone,
		Cabin:    msg.Cabin,
		Guests:   msg.Guests,
		CheckIn:  msg.CheckIn,
		CheckOut: msg.CheckOut,
		Total:    msg.Total,
		Link:     link,
	}

	if w.opts.Recorder != nil {
		if err := w.opts.Recorder.Record(ctx, req); err != nil {
			w.opts.Logger.Error("failed to record booking request", "error", err, "cabin", req.Cabin)
		}
	}
	w.opts.Metrics.ObserveSubmit("ok")
	w.opts.Logger.Info("booking request submitted",
		"cabin", req.Cabin,
		"guests", req.Guests,
		"check_in", chatlink.FormatDate(req.CheckIn),
		"check_out", chatlink.FormatDate(req.CheckOut),
		"total", req.Total,
	)

	w.reset()
	return Submission{
		Link:         link,
		Message:      text,
		Confirmation: chatlink.Confirmation,
		Request:      req,
	}, nil
}

// reset clears the form after a submission. The picker survives with an
// empty selection, as a reset form keeps its calendar.
func (w *Widget) reset() {
	w.draft = Draft{}
	w.total = pricing.ZeroBRL
	if w.picker != nil {
		w.picker.clear()
	}
	w.placeholder = PlaceholderChooseCabin
}

func (w *Widget) recalculate() {
	var dates []time.Time
	if w.picker != nil {
		dates = w.picker.selected
	}
	total := pricing.Quote(w.opts.Rates, w.draft.Guests, dates)
	w.opts.Metrics.ObserveQuote(!total.IsZero())
	w.total = pricing.FormatBRL(total)
}
