// Package chatlink builds the pre-filled WhatsApp message that hands a
// booking request over to the camping staff.
package chatlink

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Confirmation is shown to the guest once the link has been produced.
const Confirmation = "✅ Pedido de reserva criado!\n\n" +
	"Agora basta:\n" +
	"1. ENVIAR a mensagem no WhatsApp que abriu\n" +
	"2. Nós confirmaremos sua reserva em até 2 horas!\n\n" +
	"Obrigado pela preferência! 🏕️"

// Message is the booking request handed to the staff.
type Message struct {
	Name     string
	Phone    string
	Cabin    string
	Guests   string
	CheckIn  time.Time
	CheckOut time.Time
	Total    string
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// Text renders the fixed message template.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString("🏕️ *NOVA RESERVA - CAMPING VALE VERDE* 🏕️\n\n")
	fmt.Fprintf(&b, "*Nome:* %s\n", m.Name)
	fmt.Fprintf(&b, "*Telefone:* %s\n", m.Phone)
	fmt.Fprintf(&b, "*Cabana:* %s\n", m.Cabin)
	fmt.Fprintf(&b, "*Pessoas:* %s\n", m.Guests)
	fmt.Fprintf(&b, "*Check-in:* %s\n", FormatDate(m.CheckIn))
	fmt.Fprintf(&b, "*Check-out:* %s\n", FormatDate(m.CheckOut))
	fmt.Fprintf(&b, "*Valor Total:* %s\n\n", m.Total)
	b.WriteString("_Reserva solicitada via site_")
	return b.String()
}

// Link returns the wa.me deep link that opens a chat with number pre-filled with text.
func Link(number, text string) string {
	return "https://wa.me/" + digits(number) + "?text=" + Encode(text)
}

// Encode percent-encodes text the way browsers encode a URI component:
// spaces become %20, never '+'.
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
