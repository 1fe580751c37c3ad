package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appt "github.com/barberbook/barberbook-api/internal/domain/appointment"
	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

type WalletGormRepository struct {
	db *gorm.DB

	// instantPayout credits the payee wallet inside the payment
	// transaction instead of leaving settlement to a later payout run.
	instantPayout bool
}

func NewWalletGormRepository(db *gorm.DB, instantPayout bool) *WalletGormRepository {
	return &WalletGormRepository{
		db:            db,
		instantPayout: instantPayout,
	}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *WalletGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *WalletGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
		}
		return nil, err
	}
	return &ap, nil
}

func (r *WalletGormRepository) ListTransactions(
	ctx context.Context,
	userID uint,
	limit int,
	offset int,
) ([]models.WalletTransaction, error) {

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var txs []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error; err != nil {
		return nil, err
	}

	return txs, nil
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

// PayAppointment settles one appointment: payment status flip, balance
// debit (wallet source only) and both ledger entries commit together or
// not at all. The paid check happens after the row lock, so of two
// concurrent attempts exactly one commits and the other sees already_paid.
func (r *WalletGormRepository) PayAppointment(
	ctx context.Context,
	in domain.PaymentInput,
) (*domain.PaymentResult, error) {

	var result domain.PaymentResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var ap models.Appointment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ap, in.AppointmentID).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
			}
			return err
		}

		if appt.PaymentStatus(ap.PaymentStatus) == appt.PaymentPaid {
			return httperr.ErrBusiness(httperr.CodeAlreadyPaid)
		}

		var payer models.User
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payer, in.PayerID).Error; err != nil {
			return err
		}

		price := ap.Price

		if in.Source == domain.SourceWallet {
			if payer.WalletBalance < price {
				return httperr.ErrBusiness(httperr.CodeInsufficientBalance)
			}

			payer.WalletBalance -= price
			if err := tx.Model(&models.User{}).
				Where("id = ?", payer.ID).
				Update("wallet_balance", payer.WalletBalance).Error; err != nil {
				return err
			}
		}

		ap.PaymentStatus = string(appt.PaymentPaid)
		ap.AmountPaid = price
		ap.PaymentMethod = paymentMethod(in)
		if err := tx.Save(&ap).Error; err != nil {
			return err
		}

		sent := models.WalletTransaction{
			Reference:     in.Reference,
			UserID:        payer.ID,
			Type:          string(domain.TxPaymentSent),
			Amount:        -price,
			AppointmentID: &ap.ID,
			Description:   paymentDescription(in, &ap),
		}
		if err := tx.Create(&sent).Error; err != nil {
			return err
		}

		received := models.WalletTransaction{
			Reference:     in.Reference,
			UserID:        ap.BarberID,
			Type:          string(domain.TxPaymentReceived),
			Amount:        price,
			AppointmentID: &ap.ID,
			Description:   paymentDescription(in, &ap),
		}
		if err := tx.Create(&received).Error; err != nil {
			return err
		}

		if r.instantPayout {
			if err := tx.Model(&models.User{}).
				Where("id = ?", ap.BarberID).
				Update("wallet_balance", gorm.Expr("wallet_balance + ?", price)).Error; err != nil {
				return err
			}
		}

		result = domain.PaymentResult{
			Appointment:  &ap,
			PayerBalance: payer.WalletBalance,
			Sent:         &sent,
		}
		return nil
	})

	if err != nil {
		return nil, classifyTxError(err)
	}

	return &result, nil
}

// --------------------------------------------------
// Coin conversion
// --------------------------------------------------

func (r *WalletGormRepository) ConvertCoins(
	ctx context.Context,
	userID uint,
	coins int64,
	credited int64,
	reference string,
) (*domain.TopUpResult, error) {

	var result domain.TopUpResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var user models.User
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}

		if user.Coins < coins {
			return httperr.ErrBusiness(httperr.CodeInsufficientCoins)
		}

		user.Coins -= coins
		user.WalletBalance += credited

		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"coins":          user.Coins,
				"wallet_balance": user.WalletBalance,
			}).Error; err != nil {
			return err
		}

		entry := models.WalletTransaction{
			Reference:   reference,
			UserID:      user.ID,
			Type:        string(domain.TxTopUp),
			Amount:      credited,
			Description: fmt.Sprintf("converted %d coins", coins),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		result = domain.TopUpResult{
			WalletBalance: user.WalletBalance,
			Coins:         user.Coins,
			Transaction:   &entry,
		}
		return nil
	})

	if err != nil {
		return nil, classifyTxError(err)
	}

	return &result, nil
}

// --------------------------------------------------
// Loyalty coins
// --------------------------------------------------

func (r *WalletGormRepository) AwardCoins(
	ctx context.Context,
	userID uint,
	coins int64,
) error {

	if coins <= 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("coins", gorm.Expr("coins + ?", coins)).Error
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func paymentMethod(in domain.PaymentInput) string {
	if in.Source == domain.SourceGateway {
		return in.Method
	}
	return string(domain.SourceWallet)
}

func paymentDescription(in domain.PaymentInput, ap *models.Appointment) string {
	return fmt.Sprintf("%s via %s", ap.ServiceName, paymentMethod(in))
}

// classifyTxError keeps business errors as-is and maps Postgres
// serialization aborts to the retryable conflict code.
func classifyTxError(err error) error {
	if _, ok := httperr.BusinessCode(err); ok {
		return err
	}
	if httperr.IsSerializationFailure(err) {
		return httperr.ErrBusiness(httperr.CodePaymentConflict)
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*WalletGormRepository)(nil)
