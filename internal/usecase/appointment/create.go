package appointment

import (
	"context"
	"time"

	"github.com/barberbook/barberbook-api/internal/audit"
	domain "github.com/barberbook/barberbook-api/internal/domain/appointment"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
	"github.com/barberbook/barberbook-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BarbershopID uint
	BarberID     uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	// Set when a logged-in customer made the booking.
	CustomerID *uint

	ServiceID uint

	Date  string // YYYY-MM-DD
	Time  string // HH:mm
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	barber, err := uc.repo.GetBarber(ctx, in.BarbershopID, in.BarberID)
	if err != nil {
		return nil, httperr.ErrBusiness("barber_not_found")
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := timezone.NowIn(shop.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness(httperr.CodeTooSoon)
	}

	service, err := uc.repo.GetService(
		ctx,
		in.BarbershopID,
		in.ServiceID,
	)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	end := start.Add(time.Duration(service.DurationMin) * time.Minute)

	wh, err := uc.repo.GetWorkingHours(ctx, barber.ID, int(start.Weekday()))
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeOutsideWorkingHours)
	}
	if !withinWindow(wh, start, end) {
		return nil, httperr.ErrBusiness(httperr.CodeOutsideWorkingHours)
	}

	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.BarbershopID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		BarbershopID: in.BarbershopID,
		BarberID:     barber.ID,
		ClientID:     client.ID,
		CustomerID:   in.CustomerID,
		ServiceID:    service.ID,
		ServiceName:  service.Name,
		DurationMin:  service.DurationMin,
		Price:        service.Price,
		StartTime:    start,
		EndTime:      end,
		Status:       string(domain.InitialStatus()),
		Notes:        in.Notes,
	}

	if err := uc.repo.CreateWithConflictCheck(ctx, ap); err != nil {
		if httperr.IsBusiness(err, httperr.CodeTimeConflict) || httperr.IsExclusionConflict(err) {
			uc.audit.Dispatch(audit.Event{
				BarbershopID: in.BarbershopID,
				UserID:       &barber.ID,
				Action:       "appointment_conflict",
				Entity:       "appointment",
				Metadata: map[string]any{
					"start": start,
					"end":   end,
				},
			})
			return nil, httperr.ErrBusiness(httperr.CodeTimeConflict)
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: in.BarbershopID,
		UserID:       &barber.ID,
		Action:       "appointment_created",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return ap, nil
}

// withinWindow checks the booked interval against the barber's window for
// that day, lunch included.
func withinWindow(wh *models.WorkingHours, start, end time.Time) bool {
	window, ok := domain.ResolveWindow(wh, start)
	if !ok {
		return false
	}

	if start.Before(window.Start) || end.After(window.End) {
		return false
	}

	if window.Lunch != nil &&
		start.Before(window.Lunch.End) && end.After(window.Lunch.Start) {
		return false
	}

	return true
}
