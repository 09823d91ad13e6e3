package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

type fakeBlocker struct {
	blocked map[string][]reservations.BlockedInterval
	err     error
}

func (f fakeBlocker) Blocked(ctx context.Context, cabin string) ([]reservations.BlockedInterval, error) {
	if cabin == "" {
		return nil, reservations.ErrEmptyCabin
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.blocked[cabin], nil
}

var testNow = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, av fakeBlocker) *httptest.Server {
	t.Helper()
	newWidget := func() *widget.Widget {
		return widget.New(widget.Options{
			Availability: av,
			Location:     time.UTC,
			Logger:       logging.Discard(),
			Now:          func() time.Time { return testNow },
		})
	}
	s := &Server{
		Sessions:     NewSessions(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), time.Hour, newWidget),
		Availability: av,
		Cabins:       []string{"Cabana 1", "Cabana 2"},
		Location:     time.UTC,
		Logger:       logging.Discard(),
	}
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) (int, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := c.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer res.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func getJSON(t *testing.T, c *http.Client, url string) (int, map[string]any) {
	t.Helper()
	res, err := c.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHomeRendersForm(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `<option value="Cabana 2"`)
	assert.Contains(t, string(body), "R$ 0,00")
	assert.Contains(t, string(body), widget.PlaceholderChooseCabin)
	assert.NotContains(t, string(body), `rel="canonical"`)
	assert.Empty(t, res.Cookies())
}

func TestHomeCanonicalLink(t *testing.T) {
	s := &Server{
		Sessions:     newSessions(time.Hour),
		Availability: fakeBlocker{},
		BaseURL:      "https://camping.example/",
		Logger:       logging.Discard(),
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<link rel="canonical" href="https://camping.example/">`)
}

func TestAPIBookingFlow(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{blocked: map[string][]reservations.BlockedInterval{
		"Cabana 1": {{From: "2024-06-10", To: "2024-06-12"}},
	}})
	c := newClient(t)

	status, view := postJSON(t, c, srv.URL+"/api/booking/cabin", map[string]string{"cabin": "Cabana 1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, widget.PlaceholderChooseRange, view["placeholder"])
	picker := view["picker"].(map[string]any)
	assert.Equal(t, "2024-05-20", picker["minDate"])
	assert.Equal(t, "range", picker["mode"])
	assert.Len(t, picker["disable"], 1)

	status, out := postJSON(t, c, srv.URL+"/api/booking/guests", map[string]string{"guests": "2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "R$ 0,00", out["total"])

	status, out = postJSON(t, c, srv.URL+"/api/booking/dates", map[string][]string{"dates": {"2024-06-01", "2024-06-04"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "R$ 720,00", out["total"])

	status, out = postJSON(t, c, srv.URL+"/api/booking/submit", map[string]string{"name": "Ana", "phone": "54 99999-0000"})
	require.Equal(t, http.StatusOK, status)
	link := out["link"].(string)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5554996387239?text="))
	assert.Contains(t, out["message"], "*Valor Total:* R$ 720,00")
	assert.Equal(t, "✅ Pedido de reserva criado!\n\nAgora basta:\n1. ENVIAR a mensagem no WhatsApp que abriu\n2. Nós confirmaremos sua reserva em até 2 horas!\n\nObrigado pela preferência! 🏕️", out["confirmation"])

	status, view = getJSON(t, c, srv.URL+"/api/booking")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", view["guests"])
	assert.Equal(t, "", view["cabin"])
	assert.Empty(t, view["dates"])
	assert.Equal(t, "R$ 0,00", view["total"])
	assert.Equal(t, widget.PlaceholderChooseCabin, view["placeholder"])
}

func TestAPISessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	a, b := newClient(t), newClient(t)

	status, _ := postJSON(t, a, srv.URL+"/api/booking/guests", map[string]string{"guests": "3"})
	require.Equal(t, http.StatusOK, status)

	_, viewA := getJSON(t, a, srv.URL+"/api/booking")
	_, viewB := getJSON(t, b, srv.URL+"/api/booking")
	assert.Equal(t, "3", viewA["guests"])
	assert.Equal(t, "", viewB["guests"])
}

func TestAPISubmitInvalidKeepsState(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	c := newClient(t)

	postJSON(t, c, srv.URL+"/api/booking/cabin", map[string]string{"cabin": "Cabana 2"})
	postJSON(t, c, srv.URL+"/api/booking/guests", map[string]string{"guests": "2"})

	status, out := postJSON(t, c, srv.URL+"/api/booking/submit", map[string]string{"name": "Ana", "phone": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, widget.AlertInvalidForm, out["error"])

	_, view := getJSON(t, c, srv.URL+"/api/booking")
	assert.Equal(t, "Cabana 2", view["cabin"])
	assert.Equal(t, "2", view["guests"])
}

func TestAPIDatesRequirePicker(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	c := newClient(t)

	status, out := postJSON(t, c, srv.URL+"/api/booking/dates", map[string][]string{"dates": {"2024-06-01"}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, widget.PlaceholderChooseCabin, out["error"])
}

func TestAPIDatesRejectBookedRange(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{blocked: map[string][]reservations.BlockedInterval{
		"Cabana 1": {{From: "2024-06-02", To: "2024-06-03"}},
	}})
	c := newClient(t)
	postJSON(t, c, srv.URL+"/api/booking/cabin", map[string]string{"cabin": "Cabana 1"})

	status, out := postJSON(t, c, srv.URL+"/api/booking/dates", map[string][]string{"dates": {"2024-06-01", "2024-06-05"}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, widget.AlertDateBooked, out["error"])

	status, _ = postJSON(t, c, srv.URL+"/api/booking/dates", map[string][]string{"dates": {"not-a-date"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPICabinFailure(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{err: errors.New("export down")})
	c := newClient(t)

	status, out := postJSON(t, c, srv.URL+"/api/booking/cabin", map[string]string{"cabin": "Cabana 1"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, widget.AlertCalendarFailed, out["error"])
}

func TestAPIBlocked(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{blocked: map[string][]reservations.BlockedInterval{
		"Cabana 1": {{From: "2024-06-10", To: "2024-06-12"}},
	}})

	status, out := getJSON(t, http.DefaultClient, srv.URL+"/api/cabins/"+url.PathEscape("Cabana 1")+"/blocked")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cabana 1", out["cabin"])
	assert.Equal(t, []any{map[string]any{"from": "2024-06-10", "to": "2024-06-12"}}, out["disable"])

	status, out = getJSON(t, http.DefaultClient, srv.URL+"/api/cabins/Cabana%203/blocked")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, out["disable"])
}

func TestAPIBlockedKeepsPercentInCabin(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{blocked: map[string][]reservations.BlockedInterval{
		"Cabana 100%": {{From: "2024-06-10", To: "2024-06-12"}},
	}})

	status, out := getJSON(t, http.DefaultClient, srv.URL+"/api/cabins/"+url.PathEscape("Cabana 100%")+"/blocked")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cabana 100%", out["cabin"])
	assert.Len(t, out["disable"], 1)
}

func TestAPIBlockedFailure(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{err: errors.New("boom")})
	status, out := getJSON(t, http.DefaultClient, srv.URL+"/api/cabins/x/blocked")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, widget.AlertCalendarFailed, out["error"])
}

func TestAPIQuote(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})

	tests := []struct {
		query  string
		nights float64
		total  string
	}{
		{"guests=2&checkin=2024-06-01&checkout=2024-06-02", 1, "R$ 360,00"},
		{"guests=1&checkin=2024-06-01&checkout=2024-06-04", 3, "R$ 560,00"},
		{"guests=2&checkin=01/06/2024&checkout=04/06/2024", 3, "R$ 720,00"},
		{"guests=abc&checkin=2024-06-01&checkout=2024-06-04", 3, "R$ 0,00"},
		{"guests=2&checkin=2024-06-01", 0, "R$ 0,00"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, out := getJSON(t, http.DefaultClient, srv.URL+"/api/quote?"+tt.query)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.nights, out["nights"])
			assert.Equal(t, tt.total, out["total"])
		})
	}
}

func TestBookingFormSubmit(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	c := newClient(t)

	form := url.Values{
		"client-name":  {"Ana"},
		"client-phone": {"54 99999-0000"},
		"cabin":        {"Cabana 1"},
		"guests":       {"2"},
		"checkin":      {"2024-06-01"},
		"checkout":     {"2024-06-02"},
		"action":       {"submit"},
	}
	res, err := c.PostForm(srv.URL+"/booking", form)
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `href="https://wa.me/5554996387239?text=`)
	assert.Contains(t, string(body), `target="_blank"`)
	assert.Contains(t, string(body), "Pedido de reserva criado!")
	assert.NotContains(t, string(body), `role="alert"`)
}

func TestBookingFormQuoteAndInvalidSubmit(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	c := newClient(t)

	form := url.Values{
		"cabin":    {"Cabana 1"},
		"guests":   {"1"},
		"checkin":  {"2024-06-01"},
		"checkout": {"2024-06-04"},
		"action":   {"quote"},
	}
	res, err := c.PostForm(srv.URL+"/booking", form)
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(body), "R$ 560,00")

	form.Set("action", "submit")
	res, err = c.PostForm(srv.URL+"/booking", form)
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(body), widget.AlertInvalidForm)
	assert.NotContains(t, string(body), "wa.me")
	assert.Contains(t, string(body), "R$ 560,00")
}

func TestAdminNotMountedWithoutDatabase(t *testing.T) {
	srv := newTestServer(t, fakeBlocker{})
	res, err := http.Get(srv.URL + "/admin/login")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
