package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barberbook/barberbook-api/internal/httperr"
)

// Messages shown to API consumers per business code. Codes without an
// entry fall back to the code itself.
var businessMessages = map[string]string{
	httperr.CodeAppointmentNotFound:  "Appointment not found.",
	httperr.CodeAlreadyPaid:          "This appointment is already paid.",
	httperr.CodeInsufficientBalance:  "Wallet balance is not enough for this payment.",
	httperr.CodeInsufficientCoins:    "Not enough coins to convert.",
	httperr.CodeInvalidAmount:        "Amount must be positive and large enough to convert.",
	httperr.CodePaymentConflict:      "Another payment is in flight for this appointment. Try again.",
	httperr.CodeGatewayDeclined:      "The payment gateway declined the charge.",
	httperr.CodeInvalidPaymentMethod: "Unknown payment method.",
	httperr.CodeTimeConflict:         "That time slot is already taken.",
	httperr.CodeInvalidState:         "The appointment is not in a state that allows this action.",
	httperr.CodeOutsideWorkingHours:  "Requested time is outside working hours.",
	httperr.CodeTooSoon:              "Requested time is in the past or too close to now.",
	"barber_not_found":               "Barber not found.",
	"service_not_found":              "Service not found.",
	"invalid_date_or_time":           "Invalid date or time.",
	"invalid_rating":                 "Rating must be between 1 and 5.",
}

// writeError turns a use-case error into an HTTP response. Business codes
// map to 4xx; anything else is a 500.
func writeError(c *gin.Context, err error) {
	code, ok := httperr.BusinessCode(err)
	if !ok {
		httperr.Internal(c, "internal_error", "Something went wrong.")
		return
	}

	msg := businessMessages[code]
	if msg == "" {
		msg = code
	}

	switch code {
	case httperr.CodeAppointmentNotFound, "barber_not_found", "service_not_found", "barbershop_not_found":
		httperr.NotFound(c, code, msg)
	case httperr.CodeAlreadyPaid, httperr.CodePaymentConflict, httperr.CodeTimeConflict:
		httperr.Conflict(c, code, msg)
	case httperr.CodeGatewayDeclined:
		httperr.Write(c, http.StatusPaymentRequired, code, msg)
	default:
		httperr.BadRequest(c, code, msg)
	}
}
