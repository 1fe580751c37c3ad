package appointment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/barberbook/barberbook-api/internal/domain/appointment"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository

	granularity time.Duration

	// now is injectable so tests pin the clock.
	now func(tz string) time.Time
}

func NewGetAvailability(repo domain.Repository, granularityMin int) *GetAvailability {
	if granularityMin <= 0 {
		granularityMin = 15
	}
	return &GetAvailability{
		repo:        repo,
		granularity: time.Duration(granularityMin) * time.Minute,
		now:         timezone.NowIn,
	}
}

// WithNow replaces the clock. Test hook.
func (uc *GetAvailability) WithNow(now func(tz string) time.Time) *GetAvailability {
	uc.now = now
	return uc
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	service, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	weekday := int(in.Date.Weekday())

	wh, err := uc.repo.GetWorkingHours(ctx, in.BarberID, weekday)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no row for that weekday: barber off, not an error
		return []domain.TimeSlot{}, nil
	}
	if err != nil {
		return nil, err
	}

	window, ok := domain.ResolveWindow(wh, in.Date)
	if !ok {
		return []domain.TimeSlot{}, nil
	}

	busy, err := uc.repo.ListBookedIntervals(
		ctx,
		in.BarberID,
		window.Start,
		window.End,
	)
	if err != nil {
		return nil, err
	}

	if window.Lunch != nil {
		busy = append(busy, *window.Lunch)
	}

	duration := time.Duration(service.DurationMin) * time.Minute
	now := uc.now(shop.Timezone)

	starts := domain.AvailableSlots(
		window.Start,
		window.End,
		duration,
		uc.granularity,
		busy,
		now,
	)

	slots := make([]domain.TimeSlot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, domain.TimeSlot{
			Start: s.Format("15:04"),
			End:   s.Add(duration).Format("15:04"),
		})
	}

	return slots, nil
}
