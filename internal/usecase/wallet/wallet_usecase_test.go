package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/gateway"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

// Mock repository
type MockWalletRepo struct{ mock.Mock }

func (m *MockWalletRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockWalletRepo) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockWalletRepo) PayAppointment(ctx context.Context, in domain.PaymentInput) (*domain.PaymentResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockWalletRepo) ConvertCoins(ctx context.Context, userID uint, coins, credited int64, reference string) (*domain.TopUpResult, error) {
	args := m.Called(ctx, userID, coins, credited, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopUpResult), args.Error(1)
}

func (m *MockWalletRepo) AwardCoins(ctx context.Context, userID uint, coins int64) error {
	return m.Called(ctx, userID, coins).Error(0)
}

func (m *MockWalletRepo) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

func bookedAppointment(customerID uint) *models.Appointment {
	return &models.Appointment{
		ID:            7,
		BarbershopID:  1,
		BarberID:      2,
		CustomerID:    &customerID,
		Price:         500,
		Status:        "confirmed",
		PaymentStatus: "unpaid",
	}
}

// ------------------------------------------------------
// PayFromWallet
// ------------------------------------------------------

func TestPayFromWallet_Success(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewPayFromWallet(repo, nil)

	ap := bookedAppointment(10)
	repo.On("GetAppointment", mock.Anything, uint(7)).Return(ap, nil)

	paid := *ap
	paid.PaymentStatus = "paid"
	paid.AmountPaid = 500
	repo.On("PayAppointment", mock.Anything, mock.MatchedBy(func(in domain.PaymentInput) bool {
		return in.AppointmentID == 7 &&
			in.PayerID == 10 &&
			in.Source == domain.SourceWallet &&
			in.Reference != ""
	})).Return(&domain.PaymentResult{
		Appointment:  &paid,
		PayerBalance: 1500,
	}, nil)

	res, err := uc.Execute(context.Background(), 7, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), res.PayerBalance)
	assert.Equal(t, "paid", res.Appointment.PaymentStatus)
	repo.AssertExpectations(t)
}

func TestPayFromWallet_WrongCustomer(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewPayFromWallet(repo, nil)

	repo.On("GetAppointment", mock.Anything, uint(7)).Return(bookedAppointment(10), nil)

	_, err := uc.Execute(context.Background(), 7, 99)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAppointmentNotFound))
	repo.AssertNotCalled(t, "PayAppointment", mock.Anything, mock.Anything)
}

func TestPayFromWallet_WalkInHasNoCustomer(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewPayFromWallet(repo, nil)

	ap := bookedAppointment(10)
	ap.CustomerID = nil
	repo.On("GetAppointment", mock.Anything, uint(7)).Return(ap, nil)

	_, err := uc.Execute(context.Background(), 7, 10)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAppointmentNotFound))
}

func TestPayFromWallet_PreconditionErrorsPassThrough(t *testing.T) {
	for _, code := range []string{httperr.CodeAlreadyPaid, httperr.CodeInsufficientBalance} {
		repo := new(MockWalletRepo)
		uc := NewPayFromWallet(repo, nil)

		repo.On("GetAppointment", mock.Anything, uint(7)).Return(bookedAppointment(10), nil)
		repo.On("PayAppointment", mock.Anything, mock.Anything).
			Return(nil, httperr.ErrBusiness(code)).Once()

		_, err := uc.Execute(context.Background(), 7, 10)
		assert.True(t, httperr.IsBusiness(err, code), "code=%s got %v", code, err)
		// no retry for precondition failures
		repo.AssertNumberOfCalls(t, "PayAppointment", 1)
	}
}

func TestPayFromWallet_RetriesOnConflictThenSucceeds(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewPayFromWallet(repo, nil)

	ap := bookedAppointment(10)
	repo.On("GetAppointment", mock.Anything, uint(7)).Return(ap, nil)

	paid := *ap
	paid.PaymentStatus = "paid"
	repo.On("PayAppointment", mock.Anything, mock.Anything).
		Return(nil, httperr.ErrBusiness(httperr.CodePaymentConflict)).Twice()
	repo.On("PayAppointment", mock.Anything, mock.Anything).
		Return(&domain.PaymentResult{Appointment: &paid, PayerBalance: 0}, nil).Once()

	_, err := uc.Execute(context.Background(), 7, 10)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "PayAppointment", 3)
}

func TestPayFromWallet_ConflictExhaustsRetries(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewPayFromWallet(repo, nil)

	repo.On("GetAppointment", mock.Anything, uint(7)).Return(bookedAppointment(10), nil)
	repo.On("PayAppointment", mock.Anything, mock.Anything).
		Return(nil, httperr.ErrBusiness(httperr.CodePaymentConflict))

	_, err := uc.Execute(context.Background(), 7, 10)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentConflict))
	repo.AssertNumberOfCalls(t, "PayAppointment", maxAttempts)
}

// ------------------------------------------------------
// RecordGatewayPayment
// ------------------------------------------------------

func TestRecordGatewayPayment_Success(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewRecordGatewayPayment(repo, &gateway.SimulatedConfirmer{}, nil)

	ap := bookedAppointment(10)
	repo.On("GetAppointment", mock.Anything, uint(7)).Return(ap, nil)

	paid := *ap
	paid.PaymentStatus = "paid"
	paid.PaymentMethod = "jazzcash"
	repo.On("PayAppointment", mock.Anything, mock.MatchedBy(func(in domain.PaymentInput) bool {
		return in.Source == domain.SourceGateway && in.Method == "jazzcash"
	})).Return(&domain.PaymentResult{Appointment: &paid}, nil)

	res, err := uc.Execute(context.Background(), 7, 10, gateway.MethodJazzCash)
	assert.NoError(t, err)
	assert.Equal(t, "jazzcash", res.Appointment.PaymentMethod)
	repo.AssertExpectations(t)
}

func TestRecordGatewayPayment_Declined(t *testing.T) {
	repo := new(MockWalletRepo)
	confirmer := &gateway.SimulatedConfirmer{
		Decline: func(gateway.Method, int64) bool { return true },
	}
	uc := NewRecordGatewayPayment(repo, confirmer, nil)

	repo.On("GetAppointment", mock.Anything, uint(7)).Return(bookedAppointment(10), nil)

	_, err := uc.Execute(context.Background(), 7, 10, gateway.MethodEasyPaisa)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeGatewayDeclined))
	repo.AssertNotCalled(t, "PayAppointment", mock.Anything, mock.Anything)
}

// ------------------------------------------------------
// TopUpFromCoins
// ------------------------------------------------------

func TestTopUpFromCoins_Success(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewTopUpFromCoins(repo, nil)

	repo.On("GetUser", mock.Anything, uint(10)).Return(&models.User{ID: 10, Coins: 2500}, nil)
	repo.On("ConvertCoins", mock.Anything, uint(10), int64(2000), int64(10), mock.Anything).
		Return(&domain.TopUpResult{WalletBalance: 10, Coins: 500}, nil)

	res, err := uc.Execute(context.Background(), 10, 2000)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), res.WalletBalance)
	assert.Equal(t, int64(500), res.Coins)
	repo.AssertExpectations(t)
}

func TestTopUpFromCoins_InvalidAmount(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewTopUpFromCoins(repo, nil)

	for _, coins := range []int64{0, -5, 150} {
		_, err := uc.Execute(context.Background(), 10, coins)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidAmount), "coins=%d", coins)
	}
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestTopUpFromCoins_InsufficientCoins(t *testing.T) {
	repo := new(MockWalletRepo)
	uc := NewTopUpFromCoins(repo, nil)

	repo.On("GetUser", mock.Anything, uint(10)).Return(&models.User{ID: 10, Coins: 900}, nil)

	_, err := uc.Execute(context.Background(), 10, 1000)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInsufficientCoins))
	repo.AssertNotCalled(t, "ConvertCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWithRetry_NonConflictErrorNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("db down")
	err := withRetry(func() error {
		calls++
		return boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}
