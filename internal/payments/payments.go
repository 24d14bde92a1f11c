// Package payments exposes the read-only view of externally settled payments.
//
// Payment initiation and provider webhooks live in the payments service; the
// lot engine only consumes the outcome: whether a payment succeeded and who
// paid it.
package payments

import (
	"context"

	"github.com/shopspring/decimal"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// Payment statuses as written by the provider webhook handler.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is the settled-state projection of a payment request.
type Payment struct {
	ID       id.PaymentID
	Payer    id.ActorID
	Payee    id.ActorID
	Amount   decimal.Decimal
	Currency string
	Status   string
}

// Succeeded reports whether the provider confirmed settlement.
func (p *Payment) Succeeded() bool { return p.Status == StatusSuccess }

// Verifier looks up payment results. sentinel.ErrNotFound when the payment
// does not exist.
type Verifier interface {
	Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
}
