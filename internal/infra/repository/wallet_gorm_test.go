package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
)

func walletPaymentInput() domain.PaymentInput {
	return domain.PaymentInput{
		AppointmentID: 5,
		PayerID:       9,
		Source:        domain.SourceWallet,
		Reference:     "11111111-2222-3333-4444-555555555555",
	}
}

func lockedAppointmentRows(paymentStatus string) *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "barber_id", "customer_id", "service_name", "price", "status", "payment_status"}).
		AddRow(5, 2, 9, "Haircut", 800, "completed", paymentStatus)
}

func TestPayAppointment_WalletDebitWritesBothEntries(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewWalletGormRepository(gdb, false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE .* FOR UPDATE`).
		WillReturnRows(lockedAppointmentRows("unpaid"))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "wallet_balance"}).
			AddRow(9, 1000))
	// Debit lands on the payer row: 1000 - 800.
	mock.ExpectExec(`UPDATE "users" SET .*"wallet_balance"=\$\d+ WHERE id = \$\d+`).
		WithArgs(sqlmock.AnyArg(), int64(200), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(
			sqlmock.AnyArg(), // reference
			sqlmock.AnyArg(), // user_id
			sqlmock.AnyArg(), // type
			int64(-800),
			sqlmock.AnyArg(), // appointment_id
			sqlmock.AnyArg(), // description
			sqlmock.AnyArg(), // created_at
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			int64(800),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectCommit()

	res, err := repo.PayAppointment(context.Background(), walletPaymentInput())
	require.NoError(t, err)
	require.Equal(t, int64(200), res.PayerBalance)
	require.Equal(t, "paid", res.Appointment.PaymentStatus)
	require.Equal(t, int64(-800), res.Sent.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAppointment_PaidRowUnderLockStopsEverything(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewWalletGormRepository(gdb, false)

	// Of two concurrent attempts the loser locks an already paid row. No
	// debit, no ledger entries, just a rollback.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE .* FOR UPDATE`).
		WillReturnRows(lockedAppointmentRows("paid"))
	mock.ExpectRollback()

	_, err := repo.PayAppointment(context.Background(), walletPaymentInput())
	require.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyPaid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAppointment_SerializationAbortMapsToPaymentConflict(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewWalletGormRepository(gdb, false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE .* FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()

	_, err := repo.PayAppointment(context.Background(), walletPaymentInput())
	require.True(t, httperr.IsBusiness(err, httperr.CodePaymentConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAppointment_InsufficientBalanceRollsBack(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewWalletGormRepository(gdb, false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE .* FOR UPDATE`).
		WillReturnRows(lockedAppointmentRows("unpaid"))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "wallet_balance"}).
			AddRow(9, 300))
	mock.ExpectRollback()

	_, err := repo.PayAppointment(context.Background(), walletPaymentInput())
	require.True(t, httperr.IsBusiness(err, httperr.CodeInsufficientBalance))
	require.NoError(t, mock.ExpectationsWereMet())
}
