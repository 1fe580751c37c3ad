package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	domain "github.com/barberbook/barberbook-api/internal/domain/appointment"
	walletdomain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

// Mock repository
type MockRepo struct{ mock.Mock }

func (m *MockRepo) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Barbershop), args.Error(1)
}

func (m *MockRepo) GetBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Barbershop), args.Error(1)
}

func (m *MockRepo) GetBarber(ctx context.Context, barbershopID, barberID uint) (*models.User, error) {
	args := m.Called(ctx, barbershopID, barberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepo) GetShopOwner(ctx context.Context, barbershopID uint) (*models.User, error) {
	args := m.Called(ctx, barbershopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepo) GetService(ctx context.Context, barbershopID, serviceID uint) (*models.Service, error) {
	args := m.Called(ctx, barbershopID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockRepo) GetOrCreateClient(ctx context.Context, barbershopID uint, name, phone, email string) (*models.Client, error) {
	args := m.Called(ctx, barbershopID, name, phone, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockRepo) CreateWithConflictCheck(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *MockRepo) GetAppointmentForBarber(ctx context.Context, appointmentID, barberID uint) (*models.Appointment, error) {
	args := m.Called(ctx, appointmentID, barberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepo) GetAppointmentForCustomer(ctx context.Context, appointmentID, customerID uint) (*models.Appointment, error) {
	args := m.Called(ctx, appointmentID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepo) GetAppointmentForClientPhone(ctx context.Context, barbershopID, appointmentID uint, phone string) (*models.Appointment, error) {
	args := m.Called(ctx, barbershopID, appointmentID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *MockRepo) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	args := m.Called(ctx, barberID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHours), args.Error(1)
}

func (m *MockRepo) ListBookedIntervals(ctx context.Context, barberID uint, start, end time.Time) ([]domain.Interval, error) {
	args := m.Called(ctx, barberID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interval), args.Error(1)
}

func (m *MockRepo) ListAppointmentsForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, barberID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockRepo) ListAppointmentsForCustomer(ctx context.Context, customerID uint) ([]models.Appointment, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

var _ domain.Repository = (*MockRepo)(nil)

// ------------------------------------------------------
// GetAvailability
// ------------------------------------------------------

func karachiShop() *models.Barbershop {
	return &models.Barbershop{ID: 1, Slug: "fade-factory", Timezone: "Asia/Karachi"}
}

func TestGetAvailability_BookedMiddayExcluded(t *testing.T) {
	repo := new(MockRepo)

	loc, _ := time.LoadLocation("Asia/Karachi")
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, loc) // a Tuesday

	uc := NewGetAvailability(repo, 15).WithNow(func(string) time.Time {
		return time.Date(2026, 9, 1, 8, 0, 0, 0, loc)
	})

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, BarbershopID: 1, DurationMin: 30, Price: 500}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), 2).
		Return(&models.WorkingHours{BarberID: 2, Weekday: 2, Active: true, StartTime: "09:00", EndTime: "11:00"}, nil)
	repo.On("ListBookedIntervals", mock.Anything, uint(2), mock.Anything, mock.Anything).
		Return([]domain.Interval{{
			Start: time.Date(2026, 9, 1, 10, 0, 0, 0, loc),
			End:   time.Date(2026, 9, 1, 10, 30, 0, 0, loc),
		}}, nil)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BarbershopID: 1, BarberID: 2, ServiceID: 3, Date: date,
	})
	assert.NoError(t, err)

	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	// 09:45 would overlap the 10:00 booking; 10:00 and 10:15 sit inside it.
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "10:30"}, starts)
}

func TestGetAvailability_LunchBlocked(t *testing.T) {
	repo := new(MockRepo)

	loc, _ := time.LoadLocation("Asia/Karachi")
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	uc := NewGetAvailability(repo, 30).WithNow(func(string) time.Time {
		return time.Date(2026, 9, 1, 8, 0, 0, 0, loc)
	})

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, BarbershopID: 1, DurationMin: 60}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), 2).
		Return(&models.WorkingHours{
			BarberID: 2, Weekday: 2, Active: true,
			StartTime: "12:00", EndTime: "16:00",
			LunchStart: "13:00", LunchEnd: "14:00",
		}, nil)
	repo.On("ListBookedIntervals", mock.Anything, uint(2), mock.Anything, mock.Anything).
		Return([]domain.Interval{}, nil)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BarbershopID: 1, BarberID: 2, ServiceID: 3, Date: date,
	})
	assert.NoError(t, err)

	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	// A 60-minute cut fits only before or after lunch.
	assert.Equal(t, []string{"12:00", "14:00", "14:30", "15:00"}, starts)
}

func TestGetAvailability_DayOffIsEmptyNotError(t *testing.T) {
	repo := new(MockRepo)

	loc, _ := time.LoadLocation("Asia/Karachi")
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	uc := NewGetAvailability(repo, 15)

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, DurationMin: 30}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), 2).
		Return(nil, gorm.ErrRecordNotFound)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BarbershopID: 1, BarberID: 2, ServiceID: 3, Date: date,
	})
	assert.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_WorkingHoursLookupFailurePropagates(t *testing.T) {
	repo := new(MockRepo)

	loc, _ := time.LoadLocation("Asia/Karachi")
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	uc := NewGetAvailability(repo, 15)

	dbDown := errors.New("connection refused")

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, DurationMin: 30}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), 2).
		Return(nil, dbDown)

	_, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BarbershopID: 1, BarberID: 2, ServiceID: 3, Date: date,
	})
	assert.ErrorIs(t, err, dbDown)
}

func TestGetAvailability_UnknownService(t *testing.T) {
	repo := new(MockRepo)
	uc := NewGetAvailability(repo, 15)

	loc, _ := time.LoadLocation("Asia/Karachi")
	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(99)).
		Return(nil, httperr.ErrBusiness("service_not_found"))

	_, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BarbershopID: 1, BarberID: 2, ServiceID: 99,
		Date: time.Date(2026, 9, 1, 0, 0, 0, 0, loc),
	})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

// ------------------------------------------------------
// CreateAppointment
// ------------------------------------------------------

func TestCreateAppointment_Success(t *testing.T) {
	repo := new(MockRepo)
	uc := NewCreateAppointment(repo, nil)

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetBarber", mock.Anything, uint(1), uint(2)).
		Return(&models.User{ID: 2, Role: models.RoleBarber}, nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, Name: "Haircut", DurationMin: 30, Price: 500}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), mock.Anything).
		Return(&models.WorkingHours{Active: true, StartTime: "09:00", EndTime: "18:00"}, nil)
	repo.On("GetOrCreateClient", mock.Anything, uint(1), "Ali", "03001234567", "").
		Return(&models.Client{ID: 4, Name: "Ali", Phone: "03001234567"}, nil)
	repo.On("CreateWithConflictCheck", mock.Anything, mock.MatchedBy(func(ap *models.Appointment) bool {
		return ap.Status == "pending" &&
			ap.ServiceName == "Haircut" &&
			ap.Price == 500 &&
			ap.DurationMin == 30 &&
			ap.EndTime.Sub(ap.StartTime) == 30*time.Minute
	})).Return(nil)

	// Far enough in the future that min-advance never trips.
	ap, err := uc.Execute(context.Background(), CreateAppointmentInput{
		BarbershopID: 1,
		BarberID:     2,
		ClientName:   "Ali",
		ClientPhone:  "03001234567",
		ServiceID:    3,
		Date:         "2030-06-03",
		Time:         "10:00",
	})
	assert.NoError(t, err)
	assert.Equal(t, "pending", ap.Status)
	repo.AssertExpectations(t)
}

func TestCreateAppointment_TooSoon(t *testing.T) {
	repo := new(MockRepo)
	uc := NewCreateAppointment(repo, nil)

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetBarber", mock.Anything, uint(1), uint(2)).
		Return(&models.User{ID: 2}, nil)

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		BarbershopID: 1, BarberID: 2,
		ClientName: "Ali", ClientPhone: "0300",
		ServiceID: 3,
		Date:      "2020-01-01", Time: "10:00",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTooSoon))
}

func TestCreateAppointment_OutsideWorkingHours(t *testing.T) {
	repo := new(MockRepo)
	uc := NewCreateAppointment(repo, nil)

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetBarber", mock.Anything, uint(1), uint(2)).
		Return(&models.User{ID: 2}, nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, DurationMin: 30}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), mock.Anything).
		Return(&models.WorkingHours{Active: true, StartTime: "09:00", EndTime: "18:00"}, nil)

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		BarbershopID: 1, BarberID: 2,
		ClientName: "Ali", ClientPhone: "0300",
		ServiceID: 3,
		Date:      "2030-06-03", Time: "20:00",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeOutsideWorkingHours))
}

func TestCreateAppointment_Conflict(t *testing.T) {
	repo := new(MockRepo)
	uc := NewCreateAppointment(repo, nil)

	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetBarber", mock.Anything, uint(1), uint(2)).
		Return(&models.User{ID: 2}, nil)
	repo.On("GetService", mock.Anything, uint(1), uint(3)).
		Return(&models.Service{ID: 3, DurationMin: 30}, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(2), mock.Anything).
		Return(&models.WorkingHours{Active: true, StartTime: "09:00", EndTime: "18:00"}, nil)
	repo.On("GetOrCreateClient", mock.Anything, uint(1), mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Client{ID: 4}, nil)
	repo.On("CreateWithConflictCheck", mock.Anything, mock.Anything).
		Return(httperr.ErrBusiness(httperr.CodeTimeConflict))

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		BarbershopID: 1, BarberID: 2,
		ClientName: "Ali", ClientPhone: "0300",
		ServiceID: 3,
		Date:      "2030-06-03", Time: "10:00",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))
}

// ------------------------------------------------------
// State transitions
// ------------------------------------------------------

func TestConfirmAppointment(t *testing.T) {
	repo := new(MockRepo)
	uc := NewConfirmAppointment(repo, nil)

	ap := &models.Appointment{ID: 7, BarberID: 2, Status: "pending"}
	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetAppointmentForBarber", mock.Anything, uint(7), uint(2)).Return(ap, nil)
	repo.On("UpdateAppointment", mock.Anything, ap).Return(nil)

	out, err := uc.Execute(context.Background(), 1, 2, 7)
	assert.NoError(t, err)
	assert.Equal(t, "confirmed", out.Status)
	assert.NotNil(t, out.ConfirmedAt)
}

func TestConfirmAppointment_InvalidState(t *testing.T) {
	repo := new(MockRepo)
	uc := NewConfirmAppointment(repo, nil)

	ap := &models.Appointment{ID: 7, BarberID: 2, Status: "completed"}
	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetAppointmentForBarber", mock.Anything, uint(7), uint(2)).Return(ap, nil)

	_, err := uc.Execute(context.Background(), 1, 2, 7)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
	repo.AssertNotCalled(t, "UpdateAppointment", mock.Anything, mock.Anything)
}

// ------------------------------------------------------
// Complete awards loyalty coins
// ------------------------------------------------------

type stubWalletRepo struct {
	awarded map[uint]int64
}

func (s *stubWalletRepo) GetUser(context.Context, uint) (*models.User, error) { return nil, nil }
func (s *stubWalletRepo) GetAppointment(context.Context, uint) (*models.Appointment, error) {
	return nil, nil
}
func (s *stubWalletRepo) PayAppointment(context.Context, walletdomain.PaymentInput) (*walletdomain.PaymentResult, error) {
	return nil, nil
}
func (s *stubWalletRepo) ConvertCoins(context.Context, uint, int64, int64, string) (*walletdomain.TopUpResult, error) {
	return nil, nil
}
func (s *stubWalletRepo) AwardCoins(_ context.Context, userID uint, coins int64) error {
	if s.awarded == nil {
		s.awarded = map[uint]int64{}
	}
	s.awarded[userID] += coins
	return nil
}
func (s *stubWalletRepo) ListTransactions(context.Context, uint, int, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func TestCompleteAppointment_AwardsCoins(t *testing.T) {
	repo := new(MockRepo)
	walletRepo := &stubWalletRepo{}
	uc := NewCompleteAppointment(repo, walletRepo, nil, 50)

	customerID := uint(10)
	ap := &models.Appointment{ID: 7, BarberID: 2, CustomerID: &customerID, Status: "in_progress"}
	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetAppointmentForBarber", mock.Anything, uint(7), uint(2)).Return(ap, nil)
	repo.On("UpdateAppointment", mock.Anything, ap).Return(nil)

	out, err := uc.Execute(context.Background(), 1, 2, 7)
	assert.NoError(t, err)
	assert.Equal(t, "completed", out.Status)
	assert.Equal(t, int64(50), walletRepo.awarded[customerID])
}

func TestCompleteAppointment_WalkInGetsNoCoins(t *testing.T) {
	repo := new(MockRepo)
	walletRepo := &stubWalletRepo{}
	uc := NewCompleteAppointment(repo, walletRepo, nil, 50)

	ap := &models.Appointment{ID: 7, BarberID: 2, Status: "in_progress"}
	repo.On("GetBarbershopByID", mock.Anything, uint(1)).Return(karachiShop(), nil)
	repo.On("GetAppointmentForBarber", mock.Anything, uint(7), uint(2)).Return(ap, nil)
	repo.On("UpdateAppointment", mock.Anything, ap).Return(nil)

	_, err := uc.Execute(context.Background(), 1, 2, 7)
	assert.NoError(t, err)
	assert.Empty(t, walletRepo.awarded)
}
