package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/barberbook/barberbook-api/internal/audit"
	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/gateway"
	"github.com/barberbook/barberbook-api/internal/httperr"
)

type RecordGatewayPayment struct {
	repo      domain.Repository
	confirmer gateway.Confirmer
	audit     *audit.Dispatcher
}

func NewRecordGatewayPayment(
	repo domain.Repository,
	confirmer gateway.Confirmer,
	audit *audit.Dispatcher,
) *RecordGatewayPayment {
	return &RecordGatewayPayment{
		repo:      repo,
		confirmer: confirmer,
		audit:     audit,
	}
}

// Execute records an externally confirmed payment against the
// appointment. The rail is asked to confirm first; the ledger write is
// identical to a wallet payment minus the balance debit. An appointment
// paid between confirmation and commit still resolves to exactly one
// settlement: the transaction re-checks the paid flag under lock.
func (uc *RecordGatewayPayment) Execute(
	ctx context.Context,
	appointmentID uint,
	payerID uint,
	method gateway.Method,
) (*domain.PaymentResult, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.CustomerID == nil || *ap.CustomerID != payerID {
		return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
	}

	reference := uuid.NewString()

	conf, err := uc.confirmer.Confirm(ctx, method, ap.Price, reference)
	if err != nil {
		return nil, err
	}
	if !conf.Approved {
		return nil, httperr.ErrBusiness(httperr.CodeGatewayDeclined)
	}

	in := domain.PaymentInput{
		AppointmentID: appointmentID,
		PayerID:       payerID,
		Source:        domain.SourceGateway,
		Method:        string(method),
		Reference:     conf.Reference,
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
		Action:       "gateway_payment",
		Entity:       "appointment",
		EntityID:     &result.Appointment.ID,
		Metadata: map[string]any{
			"method":    string(method),
			"amount":    result.Appointment.AmountPaid,
			"reference": conf.Reference,
		},
	})

	return result, nil
}
