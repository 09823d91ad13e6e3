package widget

import "errors"

var (
	ErrNoPicker        = errors.New("widget: no cabin selected")
	ErrTooManyDates    = errors.New("widget: a range has at most two dates")
	ErrDateUnavailable = errors.New("widget: selected dates are not available")
	ErrSuperseded      = errors.New("widget: cabin selection superseded by a newer one")
)

// Alert texts shown to the guest.
const (
	AlertCalendarFailed = "Erro ao carregar datas. Tente novamente."
	AlertInvalidForm    = "Por favor, preencha todos os campos corretamente."
	AlertDateBooked     = "As datas escolhidas não estão disponíveis para esta cabana."
)

// AlertError is a failure the guest must be told about.
type AlertError struct {
	Alert string
	Err   error
}

func (e *AlertError) Error() string {
	if e.Err == nil {
		return e.Alert
	}
	return e.Alert + ": " + e.Err.Error()
}

func (e *AlertError) Unwrap() error { return e.Err }

// AlertFor returns the guest-facing text carried by err, if any.
func AlertFor(err error) (string, bool) {
	var ae *AlertError
	if errors.As(err, &ae) {
		return ae.Alert, true
	}
	return "", false
}
