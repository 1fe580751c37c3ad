package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/barberbook/barberbook-api/internal/audit"
	domain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/httperr"
)

type TopUpFromCoins struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewTopUpFromCoins(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *TopUpFromCoins {
	return &TopUpFromCoins{
		repo:  repo,
		audit: audit,
	}
}

// Execute converts coins into wallet balance at the fixed rate. The coin
// precondition is checked up front for a fast rejection and re-checked
// inside the repository transaction under lock.
func (uc *TopUpFromCoins) Execute(
	ctx context.Context,
	userID uint,
	coins int64,
) (*domain.TopUpResult, error) {

	credited, err := domain.ConvertCoins(coins)
	if err != nil {
		return nil, err
	}

	user, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Coins < coins {
		return nil, httperr.ErrBusiness(httperr.CodeInsufficientCoins)
	}

	reference := uuid.NewString()

	var result *domain.TopUpResult
	err = withRetry(func() error {
		var txErr error
		result, txErr = uc.repo.ConvertCoins(ctx, userID, coins, credited, reference)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID: &userID,
		Action: "wallet_topup",
		Entity: "wallet_transaction",
		EntityID: func() *uint {
			if result.Transaction != nil {
				return &result.Transaction.ID
			}
			return nil
		}(),
		Metadata: map[string]any{
			"coins":     coins,
			"credited":  credited,
			"reference": reference,
		},
	})

	return result, nil
}
