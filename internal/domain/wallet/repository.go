package wallet

import (
	"context"

	"github.com/barberbook/barberbook-api/internal/models"
)

// PaymentInput describes one settlement attempt against an appointment.
// Reference correlates the payer and payee ledger entries.
type PaymentInput struct {
	AppointmentID uint
	PayerID       uint
	Source        PaymentSource
	Method        string // gateway method name; empty for wallet payments
	Reference     string
}

type PaymentResult struct {
	Appointment  *models.Appointment
	PayerBalance int64
	Sent         *models.WalletTransaction
}

type TopUpResult struct {
	WalletBalance int64
	Coins         int64
	Transaction   *models.WalletTransaction
}

// Repository is the ledger's storage port. The mutating methods apply all
// their effects (balance updates, payment status, log entries) in a single
// atomic transaction with the preconditions re-checked at commit time, and
// return a serialization-conflict business error when the store aborts.
type Repository interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)

	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)

	PayAppointment(ctx context.Context, in PaymentInput) (*PaymentResult, error)

	ConvertCoins(
		ctx context.Context,
		userID uint,
		coins int64,
		credited int64,
		reference string,
	) (*TopUpResult, error)

	AwardCoins(ctx context.Context, userID uint, coins int64) error

	ListTransactions(
		ctx context.Context,
		userID uint,
		limit int,
		offset int,
	) ([]models.WalletTransaction, error)
}
