package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// GetLot loads a single lot.
func (s *Service) GetLot(ctx context.Context, lotID id.LotID) (*models.Lot, error) {
	var lot *models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		lot, err = st.GetLot(ctx, lotID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "lot not found")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// ListLots returns lots matching the filter, newest first.
func (s *Service) ListLots(ctx context.Context, filter store.LotFilter) ([]*models.Lot, error) {
	var lots []*models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		lots, err = st.ListLots(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// Ledger returns the movement history matching the filter, newest first.
func (s *Service) Ledger(ctx context.Context, filter store.LedgerFilter) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		entries, err = st.ListLedger(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ActorBalance folds the ledger into the actor's live quantity position,
// optionally scoped to one lot.
func (s *Service) ActorBalance(ctx context.Context, actorID id.ActorID, lotID *id.LotID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		sum, err = st.SumDeltas(ctx, &actorID, lotID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Balances aggregates per (actor, lot) positions straight from the ledger.
func (s *Service) Balances(ctx context.Context, actorID *id.ActorID) ([]models.Balance, error) {
	var balances []models.Balance
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		balances, err = st.ListBalances(ctx, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}
