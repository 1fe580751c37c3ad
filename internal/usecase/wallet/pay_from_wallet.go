package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/barberbook/barberbook-api/internal/audit"
	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
)

type PayFromWallet struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewPayFromWallet(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *PayFromWallet {
	return &PayFromWallet{
		repo:  repo,
		audit: audit,
	}
}

// Execute settles the appointment from the payer's wallet balance. The
// payer must be the customer who booked it. Precondition failures
// (missing appointment, already paid, short balance) never mutate
// anything; contention retries up to the bound, then surfaces
// payment_conflict.
func (uc *PayFromWallet) Execute(
	ctx context.Context,
	appointmentID uint,
	payerID uint,
) (*domain.PaymentResult, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.CustomerID == nil || *ap.CustomerID != payerID {
		return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
	}

	in := domain.PaymentInput{
		AppointmentID: appointmentID,
		PayerID:       payerID,
		Source:        domain.SourceWallet,
		Reference:     uuid.NewString(),
	}

	var result *domain.PaymentResult
	err = withRetry(func() error {
		var txErr error
		result, txErr = uc.repo.PayAppointment(ctx, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: result.Appointment.BarbershopID,
		UserID:       &payerID,
		Action:       "wallet_payment",
		Entity:       "appointment",
		EntityID:     &result.Appointment.ID,
		Metadata: map[string]any{
			"amount":    result.Appointment.AmountPaid,
			"reference": in.Reference,
		},
	})

	return result, nil
}
