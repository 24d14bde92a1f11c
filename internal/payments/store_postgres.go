package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// PostgresStore reads payment results from the payments service's table.
// This side never writes it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error) {
	var (
		p            Payment
		pID          uuid.UUID
		payer, payee uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payer_actor_id, payee_actor_id, amount, currency, status
		FROM payment_requests WHERE id = $1`, uuid.UUID(paymentID)).
		Scan(&pID, &payer, &payee, &p.Amount, &p.Currency, &p.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.ID = id.PaymentID(pID)
	p.Payer = id.ActorID(payer)
	p.Payee = id.ActorID(payee)
	return &p, nil
}
