package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/D0mbrowski/Site-Camping/internal/db"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

// Request is a booking request handed over to the staff through the chat link.
type Request struct {
	ID          uuid.UUID
	ClientName  string
	ClientPhone string
	Cabin       string
	Guests      string
	CheckIn     time.Time
	CheckOut    time.Time
	Total       string
	ChatLink    string
	CreatedAt   time.Time
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return fmt.Errorf("client_name required")
	}
	if strings.TrimSpace(r.ClientPhone) == "" {
		return fmt.Errorf("client_phone required")
	}
	if r.Cabin == "" {
		return fmt.Errorf("cabin required")
	}
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("check_in and check_out required")
	}
	if r.CheckOut.Before(r.CheckIn) {
		return fmt.Errorf("check_out must not be before check_in")
	}
	return nil
}

type Repo struct{ q db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{q: q} }

const selectColumns = `id,client_name,client_phone,cabin,guests,check_in,check_out,total,chat_link,created_at`

func (r *Repo) Create(ctx context.Context, req Request) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	_, err := r.q.Exec(ctx, `
INSERT INTO booking_requests(id,client_name,client_phone,cabin,guests,check_in,check_out,total,chat_link)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		req.ID, req.ClientName, req.ClientPhone, req.Cabin, req.Guests, req.CheckIn, req.CheckOut, req.Total, req.ChatLink,
	)
	if err != nil {
		return uuid.Nil, db.WrapNotFound(err)
	}
	return req.ID, nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]Request, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, `
SELECT `+selectColumns+`
FROM booking_requests
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(
			&req.ID, &req.ClientName, &req.ClientPhone, &req.Cabin, &req.Guests,
			&req.CheckIn, &req.CheckOut, &req.Total, &req.ChatLink, &req.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Request, error) {
	var req Request
	err := r.q.QueryRow(ctx, `
SELECT `+selectColumns+`
FROM booking_requests
WHERE id=$1`, id).
		Scan(&req.ID, &req.ClientName, &req.ClientPhone, &req.Cabin, &req.Guests,
			&req.CheckIn, &req.CheckOut, &req.Total, &req.ChatLink, &req.CreatedAt)
	if err != nil {
		return Request{}, db.WrapNotFound(err)
	}
	return req, nil
}

// Record implements widget.Recorder.
func (r *Repo) Record(ctx context.Context, w widget.Request) error {
	_, err := r.Create(ctx, Request{
		ClientName:  w.Name,
		ClientPhone: w.Phone,
		Cabin:       w.Cabin,
		Guests:      w.Guests,
		CheckIn:     w.CheckIn,
		CheckOut:    w.CheckOut,
		Total:       w.Total,
		ChatLink:    w.Link,
	})
	return err
}

var _ widget.Recorder = (*Repo)(nil)
