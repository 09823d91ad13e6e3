// Package pricing computes the stay quote shown in the booking form.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ZeroBRL is the total displayed whenever a quote cannot be computed.
const ZeroBRL = "R$ 0,00"

// Rates holds the per-stay and per-extra-night prices, in reais.
type Rates struct {
	BaseCabin        decimal.Decimal
	BasePerson       decimal.Decimal
	ExtraNightCabin  decimal.Decimal
	ExtraNightPerson decimal.Decimal
}

// DefaultRates are the published camping prices.
func DefaultRates() Rates {
	return Rates{
		BaseCabin:        decimal.NewFromInt(200),
		BasePerson:       decimal.NewFromInt(80),
		ExtraNightCabin:  decimal.NewFromInt(100),
		ExtraNightPerson: decimal.NewFromInt(40),
	}
}

// Nights is the day difference between check-in and check-out, rounded up.
func Nights(checkin, checkout time.Time) int {
	days := checkout.Sub(checkin).Hours() / 24
	return int(math.Ceil(days))
}

// Total prices a stay. The first night carries the base prices, every
// further night the extra-night prices. Non-positive nights cost nothing.
func (r Rates) Total(guests, nights int) decimal.Decimal {
	if nights <= 0 {
		return decimal.Zero
	}
	g := decimal.NewFromInt(int64(guests))
	total := r.BaseCabin.Add(g.Mul(r.BasePerson))
	if nights > 1 {
		extra := r.ExtraNightCabin.Add(g.Mul(r.ExtraNightPerson))
		total = total.Add(decimal.NewFromInt(int64(nights - 1)).Mul(extra))
	}
	return total
}

// ParseGuests parses the guest-count field. Blank, non-numeric and negative
// values are not valid counts.
func ParseGuests(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Quote returns the total for the current selection, or zero unless exactly
// two dates are selected and the guest count is valid.
func Quote(r Rates, guests string, dates []time.Time) decimal.Decimal {
	g, ok := ParseGuests(guests)
	if len(dates) != 2 || !ok {
		return decimal.Zero
	}
	return r.Total(g, Nights(dates[0], dates[1]))
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian-real text, e.g. "R$ 1.240,00".
// Only the whole part goes through the locale printer; centavos stay decimal.
func FormatBRL(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%sR$ %s,%02d", sign, brl.Sprintf("%d", whole.IntPart()), cents)
}
