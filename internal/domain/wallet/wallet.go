package wallet

import "github.com/barberbook/barberbook-api/internal/httperr"

// ===============================
// Ledger vocabulary
// ===============================

type TransactionType string

const (
	TxTopUp           TransactionType = "topup"
	TxPaymentSent     TransactionType = "payment_sent"
	TxPaymentReceived TransactionType = "payment_received"
)

type PaymentSource string

const (
	// SourceWallet debits the payer's wallet balance.
	SourceWallet PaymentSource = "wallet"
	// SourceGateway records an externally confirmed payment; no wallet debit.
	SourceGateway PaymentSource = "gateway"
)

// ===============================
// Coin conversion
// ===============================

// Fixed exchange rate: 1000 coins convert to 5 PKR.
const (
	CoinBatch      int64 = 1000
	RupeesPerBatch int64 = 5
)

// ConvertCoins returns the wallet credit for a coin amount under the floor
// policy: the requested coins are debited in full and the floored rupee
// value credited. Amounts that floor to zero are rejected so a debit can
// never happen without a credit.
func ConvertCoins(coins int64) (int64, error) {
	if coins <= 0 {
		return 0, httperr.ErrBusiness(httperr.CodeInvalidAmount)
	}

	credited := coins * RupeesPerBatch / CoinBatch
	if credited == 0 {
		return 0, httperr.ErrBusiness(httperr.CodeInvalidAmount)
	}

	return credited, nil
}
