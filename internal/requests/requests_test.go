package requests

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D0mbrowski/Site-Camping/internal/db"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

var (
	checkIn  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRecordInsertsRequest(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_requests")).
		WithArgs(pgxmock.AnyArg(), "Ana", "5499", "Cabana 1", "2", checkIn, checkOut, "R$ 720,00", "https://wa.me/1?text=x").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Record(context.Background(), widget.Request{
		Name: "Ana", Phone: "5499", Cabin: "Cabana 1", Guests: "2",
		CheckIn: checkIn, CheckOut: checkOut, Total: "R$ 720,00", Link: "https://wa.me/1?text=x",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidates(t *testing.T) {
	repo := NewRepo(newMock(t))

	_, err := repo.Create(context.Background(), Request{ClientName: "Ana", ClientPhone: "5499", Cabin: "Cabana 1", CheckIn: checkOut, CheckOut: checkIn})
	require.Error(t, err)

	_, err = repo.Create(context.Background(), Request{ClientPhone: "5499", Cabin: "Cabana 1", CheckIn: checkIn, CheckOut: checkOut})
	require.Error(t, err)
}

func TestCreateWrapsDBError(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	boom := errors.New("connection refused")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_requests")).WillReturnError(boom)

	_, err := repo.Create(context.Background(), Request{ClientName: "Ana", ClientPhone: "5499", Cabin: "Cabana 1", CheckIn: checkIn, CheckOut: checkOut})
	assert.ErrorIs(t, err, boom)
}

func TestList(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	id := uuid.New()
	created := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_requests")).WithArgs(100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client_name", "client_phone", "cabin", "guests", "check_in", "check_out", "total", "chat_link", "created_at"}).
			AddRow(id, "Ana", "5499", "Cabana 1", "2", checkIn, checkOut, "R$ 720,00", "https://wa.me/1", created))

	got, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Cabana 1", got[0].Cabin)
	assert.Equal(t, created, got[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id=$1")).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
