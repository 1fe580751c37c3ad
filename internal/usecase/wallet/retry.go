package wallet

import "github.com/barberbook/barberbook-api/internal/httperr"

// maxAttempts bounds the retries on transaction contention before the
// conflict is surfaced to the caller.
const maxAttempts = 3

// withRetry re-runs fn while it fails with payment_conflict. All other
// errors, business or otherwise, pass through on the first occurrence.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !httperr.IsBusiness(err, httperr.CodePaymentConflict) {
			return err
		}
	}
	return err
}
