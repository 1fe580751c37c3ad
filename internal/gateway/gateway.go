package gateway

import (
	"context"
	"strings"

	"github.com/barberbook/barberbook-api/internal/httperr"
)

// External payment rails. The API only records confirmations; it never
// drives the gateway itself.
type Method string

const (
	MethodJazzCash  Method = "jazzcash"
	MethodEasyPaisa Method = "easypaisa"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodJazzCash:
		return MethodJazzCash, nil
	case MethodEasyPaisa:
		return MethodEasyPaisa, nil
	default:
		return "", httperr.ErrBusiness(httperr.CodeInvalidPaymentMethod)
	}
}

type Confirmation struct {
	Reference string
	Approved  bool
}

// Confirmer reports whether the external rail confirmed a charge.
type Confirmer interface {
	Confirm(ctx context.Context, method Method, amount int64, reference string) (Confirmation, error)
}

// SimulatedConfirmer approves everything unless a Decline hook says
// otherwise. Used until a real rail callback is wired in.
type SimulatedConfirmer struct {
	Decline func(method Method, amount int64) bool
}

func (s *SimulatedConfirmer) Confirm(
	_ context.Context,
	method Method,
	amount int64,
	reference string,
) (Confirmation, error) {

	if s.Decline != nil && s.Decline(method, amount) {
		return Confirmation{Reference: reference, Approved: false}, nil
	}
	return Confirmation{Reference: reference, Approved: true}, nil
}
