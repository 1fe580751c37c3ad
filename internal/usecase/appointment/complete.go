package appointment

import (
	"context"

	"github.com/barberbook/barberbook-api/internal/audit"
	domain "github.com/barberbook/barberbook-api/internal/domain/appointment"
	wallet "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
	"github.com/barberbook/barberbook-api/internal/timezone"
)

type CompleteAppointment struct {
	repo   domain.Repository
	wallet wallet.Repository
	audit  *audit.Dispatcher

	// loyaltyCoins awarded to the customer once the visit completes.
	loyaltyCoins int64
}

func NewCompleteAppointment(
	repo domain.Repository,
	walletRepo wallet.Repository,
	audit *audit.Dispatcher,
	loyaltyCoins int64,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:         repo,
		wallet:       walletRepo,
		audit:        audit,
		loyaltyCoins: loyaltyCoins,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, barbershopID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForBarber(ctx, appointmentID, barberID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
	}

	now := timezone.NowIn(shop.Timezone)
	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// Loyalty coins for logged-in customers. Best effort: a failed award
	// must not undo the completion.
	if ap.CustomerID != nil && uc.loyaltyCoins > 0 {
		if err := uc.wallet.AwardCoins(ctx, *ap.CustomerID, uc.loyaltyCoins); err == nil {
			uc.audit.Dispatch(audit.Event{
				BarbershopID: barbershopID,
				UserID:       ap.CustomerID,
				Action:       "loyalty_coins_awarded",
				Entity:       "appointment",
				EntityID:     &ap.ID,
				Metadata:     map[string]any{"coins": uc.loyaltyCoins},
			})
		}
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &barberID,
		Action:       "appointment_completed",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return ap, nil
}
