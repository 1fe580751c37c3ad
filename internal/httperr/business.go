package httperr

import "errors"

// Error codes shared across the ledger and booking flows. Handlers map
// them to HTTP statuses; use cases and repositories only ever return codes.
const (
	CodeAppointmentNotFound  = "appointment_not_found"
	CodeAlreadyPaid          = "already_paid"
	CodeInsufficientBalance  = "insufficient_balance"
	CodeInsufficientCoins    = "insufficient_coins"
	CodeInvalidAmount        = "invalid_amount"
	CodePaymentConflict      = "payment_conflict"
	CodeGatewayDeclined      = "gateway_declined"
	CodeInvalidPaymentMethod = "invalid_payment_method"
	CodeTimeConflict         = "time_conflict"
	CodeInvalidState         = "invalid_state"
	CodeOutsideWorkingHours  = "outside_working_hours"
	CodeTooSoon              = "too_soon"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func BusinessCode(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}
