package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DefaultReservationsURL = "https://docs.google.com/spreadsheets/d/120tGBDlo2TBFCLQjYqmBDoSkhA8xznB1eXsps_R0DJY/gviz/tq?tqx=out:csv&gid=934324739"
	DefaultWhatsAppNumber  = "5554996387239"
)

// Fail modes for the reservations source.
const (
	FailOpen   = "open"
	FailClosed = "closed"
)

type Config struct {
	ListenAddr string
	BaseURL    string
	LogLevel   string
	// export spans as JSON to stderr
	TraceStdout bool

	// optional; empty disables the request log and the admin pages
	DatabaseURL    string
	CookieHashKey  []byte
	CookieBlockKey []byte

	// reservations source
	ReservationsCSVURL    string
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string
	FetchTimeout          time.Duration
	FailMode              string

	// cache
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	RefreshInterval time.Duration

	// booking
	WhatsAppNumber string
	Cabins         []string
	Timezone       *time.Location
	Prices         Prices
}

// Prices are the four pricing constants, in reais.
type Prices struct {
	BaseCabin        decimal.Decimal
	BasePerson       decimal.Decimal
	ExtraNightCabin  decimal.Decimal
	ExtraNightPerson decimal.Decimal
}

// FromEnv loads .env when present and reads the configuration from the environment.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:            getenv("LISTEN_ADDR", ":8080"),
		BaseURL:               getenv("BASE_URL", "http://localhost:8080"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		ReservationsCSVURL:    getenv("RESERVATIONS_CSV_URL", DefaultReservationsURL),
		SheetsCredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsRange:           getenv("SHEETS_RANGE", "Reservas!A1:G"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		WhatsAppNumber:        getenv("WHATSAPP_NUMBER", DefaultWhatsAppNumber),
		Cabins:                splitCSV(getenv("CABINS", "Cabana 1,Cabana 2,Cabana 3")),
	}

	var err error
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = getDuration("REFRESH_INTERVAL", 0); err != nil {
		return Config{}, err
	}

	if v := getenv("TRACE_STDOUT", ""); v != "" {
		if cfg.TraceStdout, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid TRACE_STDOUT")
		}
	}

	cfg.FailMode = strings.ToLower(getenv("AVAILABILITY_FAIL_MODE", FailOpen))
	if cfg.FailMode != FailOpen && cfg.FailMode != FailClosed {
		return Config{}, fmt.Errorf("invalid AVAILABILITY_FAIL_MODE %q (want open or closed)", cfg.FailMode)
	}

	tz := getenv("TIMEZONE", "America/Sao_Paulo")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.Prices, err = pricesFromEnv(); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("COOKIE_HASH_KEY"); v != "" {
		if cfg.CookieHashKey, err = decodeB64(v); err != nil {
			return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
	}
	if v := os.Getenv("COOKIE_BLOCK_KEY"); v != "" {
		if cfg.CookieBlockKey, err = decodeB64(v); err != nil {
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
		switch len(cfg.CookieBlockKey) {
		case 16, 24, 32:
		default:
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes, got %d", len(cfg.CookieBlockKey))
		}
	}

	return cfg, nil
}

// RequireCookieKeys reports whether the cookie keys needed by the web server
// and the staff sessions are set.
func (c Config) RequireCookieKeys() error {
	if len(c.CookieHashKey) == 0 || len(c.CookieBlockKey) == 0 {
		return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (32 and 16/24/32 bytes base64)")
	}
	return nil
}

// UsesSheetsAPI reports whether the Sheets API source is configured instead of the CSV export.
func (c Config) UsesSheetsAPI() bool {
	return c.SheetsCredentialsFile != "" && c.SheetsSpreadsheetID != ""
}

func pricesFromEnv() (Prices, error) {
	var p Prices
	fields := []struct {
		key string
		def string
		dst *decimal.Decimal
	}{
		{"PRICE_BASE_CABIN", "200", &p.BaseCabin},
		{"PRICE_BASE_PERSON", "80", &p.BasePerson},
		{"PRICE_EXTRA_NIGHT_CABIN", "100", &p.ExtraNightCabin},
		{"PRICE_EXTRA_NIGHT_PERSON", "40", &p.ExtraNightPerson},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(getenv(f.key, f.def))
		if err != nil || d.IsNegative() {
			return Prices{}, fmt.Errorf("invalid %s", f.key)
		}
		*f.dst = d
	}
	return p, nil
}

func decodeB64(s string) ([]byte, error) {
	b, err := os.ReadFile(s)
	if err == nil {
		// allow pointing to file path for k8s secret mounts
		s = string(b)
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := getenv(k, "")
	if v == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec < 0 {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return time.Duration(sec) * time.Second, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
