package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return gdb, mock
}

func pendingAppointment() *models.Appointment {
	loc, _ := time.LoadLocation("Asia/Karachi")
	start := time.Date(2030, 6, 3, 11, 0, 0, 0, loc)
	return &models.Appointment{
		BarbershopID: 1,
		BarberID:     2,
		ClientID:     3,
		ServiceID:    4,
		ServiceName:  "Haircut",
		DurationMin:  30,
		Price:        800,
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		Status:       "pending",
	}
}

func TestCreateWithConflictCheck_FreeSlotInserts(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentGormRepository(gdb)
	ap := pendingAppointment()

	mock.ExpectBegin()
	// The barber row carries the lock; the overlap check itself is a plain
	// row select, never a locked aggregate.
	mock.ExpectQuery(`SELECT "id" FROM "users" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT "id" FROM "appointments" WHERE barber_id = \$1 AND status IN \(\$2,\$3,\$4\) AND start_time < \$5 AND end_time > \$6 LIMIT \$\d+$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	err := repo.CreateWithConflictCheck(context.Background(), ap)
	require.NoError(t, err)
	require.Equal(t, uint(10), ap.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithConflictCheck_OverlapRejectsWithoutInsert(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "users" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT "id" FROM "appointments" WHERE barber_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectRollback()

	err := repo.CreateWithConflictCheck(context.Background(), pendingAppointment())
	require.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithConflictCheck_ExclusionViolationIsTimeConflict(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "users" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT "id" FROM "appointments" WHERE barber_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// A racing insert committed between the overlap check and this insert;
	// the schema's exclusion constraint fires.
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnError(&pgconn.PgError{Code: "23P01"})
	mock.ExpectRollback()

	err := repo.CreateWithConflictCheck(context.Background(), pendingAppointment())
	require.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}
