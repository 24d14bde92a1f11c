//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
	"github.com/Soozey/MADAVOLA/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	tx       *store.SQLTx
	reads    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.tx = store.NewSQLTx(s.postgres.DB)
	s.reads = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "inventory_ledger", "lots")
	s.Require().NoError(err)
}

func newTestLot(owner id.ActorID, quantity string) *models.Lot {
	lot, _ := models.NewLot(
		id.NewLotID(),
		models.CommoditySpec{Filiere: models.FiliereOr, ProductType: "or_brut", Unit: "g"},
		decimal.RequireFromString(quantity),
		owner,
		id.NewGeoPointID(),
		time.Now().UTC().Truncate(time.Microsecond),
	)
	return lot
}

func (s *PostgresStoreSuite) insertLot(lot *models.Lot) {
	s.Require().NoError(s.tx.RunInTx(context.Background(), func(st store.Store) error {
		return st.InsertLot(context.Background(), lot)
	}))
}

// TestLotRoundTrip verifies column mapping survives a full write/read cycle.
func (s *PostgresStoreSuite) TestLotRoundTrip() {
	ctx := context.Background()
	owner := id.NewActorID()
	lot := newTestLot(owner, "123.4567")
	lot.ReceiptNumber = "LOT-20260830-ABCDEF12"
	lot.QRValue = "MADAVOLA:lot:" + lot.ID.String()
	s.insertLot(lot)

	found, err := s.reads.GetLot(ctx, lot.ID)
	s.Require().NoError(err)
	s.Equal(lot.ID, found.ID)
	s.Equal(models.FiliereOr, found.Filiere)
	s.True(found.Quantity.Equal(lot.Quantity))
	s.Equal(lot.ReceiptNumber, found.ReceiptNumber)
	s.Equal(lot.QRValue, found.QRValue)
	s.Nil(found.ParentLotID)

	_, err = s.reads.GetLot(ctx, id.NewLotID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestParentLineage verifies nullable parent round trip.
func (s *PostgresStoreSuite) TestParentLineage() {
	ctx := context.Background()
	owner := id.NewActorID()
	parent := newTestLot(owner, "100")
	child := newTestLot(owner, "40")
	s.insertLot(parent)
	s.insertLot(child)

	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		return st.SetParentLot(ctx, child.ID, parent.ID)
	})
	s.Require().NoError(err)

	found, err := s.reads.GetLot(ctx, child.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.ParentLotID)
	s.Equal(parent.ID, *found.ParentLotID)
}

// TestDuplicateInsert verifies the unique violation maps to ErrConflict.
func (s *PostgresStoreSuite) TestDuplicateInsert() {
	ctx := context.Background()
	lot := newTestLot(id.NewActorID(), "10")
	s.insertLot(lot)

	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		return st.InsertLot(ctx, lot)
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestRollback verifies a failed unit of work leaves no partial writes.
func (s *PostgresStoreSuite) TestRollback() {
	ctx := context.Background()
	owner := id.NewActorID()
	lot := newTestLot(owner, "10")
	s.insertLot(lot)

	boom := sentinel.ErrInvalidState
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, models.StatusSeized, id.NewActorID()); err != nil {
			return err
		}
		if err := st.InsertLedgerEntries(ctx, []models.LedgerEntry{{
			ID:            id.NewLedgerEntryID(),
			ActorID:       owner,
			LotID:         lot.ID,
			MovementType:  models.MovementSeizureOut,
			QuantityDelta: decimal.RequireFromString("-10"),
			RefEventType:  models.RefEventPenalty,
			RefEventID:    id.NewPenaltyID().String(),
			CreatedAt:     time.Now().UTC(),
		}}); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	found, err := s.reads.GetLot(ctx, lot.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, found.Status)
	s.Equal(owner, found.Owner)

	entries, err := s.reads.ListLedger(ctx, store.LedgerFilter{LotID: &lot.ID})
	s.Require().NoError(err)
	s.Empty(entries)
}

// TestRowLockSerializesStatusFlips verifies FOR UPDATE makes the
// check-then-update race safe: with many goroutines trying to seize the same
// available lot, exactly one observes it available.
func (s *PostgresStoreSuite) TestRowLockSerializesStatusFlips() {
	ctx := context.Background()
	owner := id.NewActorID()
	lot := newTestLot(owner, "10")
	s.insertLot(lot)

	const goroutines = 20
	var wg sync.WaitGroup
	var seized atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.tx.RunInTx(ctx, func(st store.Store) error {
				locked, err := st.GetLotForUpdate(ctx, lot.ID)
				if err != nil {
					return err
				}
				if !locked.IsAvailable() {
					return sentinel.ErrInvalidState
				}
				if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, models.StatusSeized, id.NewActorID()); err != nil {
					return err
				}
				seized.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	s.Equal(int32(1), seized.Load(), "exactly one seizure should win the lock")
}

// TestBalanceAggregation verifies SUM aggregation matches inserted deltas.
func (s *PostgresStoreSuite) TestBalanceAggregation() {
	ctx := context.Background()
	owner := id.NewActorID()
	other := id.NewActorID()
	lot := newTestLot(owner, "100")
	s.insertLot(lot)

	now := time.Now().UTC()
	entry := func(actor id.ActorID, movement models.MovementType, delta string) models.LedgerEntry {
		return models.LedgerEntry{
			ID:            id.NewLedgerEntryID(),
			ActorID:       actor,
			LotID:         lot.ID,
			MovementType:  movement,
			QuantityDelta: decimal.RequireFromString(delta),
			RefEventType:  models.RefEventTransfer,
			RefEventID:    id.NewPaymentID().String(),
			CreatedAt:     now,
		}
	}
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		return st.InsertLedgerEntries(ctx, []models.LedgerEntry{
			entry(owner, models.MovementCreate, "100"),
			entry(owner, models.MovementTransferOut, "-100"),
			entry(other, models.MovementTransferIn, "100"),
		})
	})
	s.Require().NoError(err)

	sum, err := s.reads.SumDeltas(ctx, &owner, nil)
	s.Require().NoError(err)
	s.True(sum.IsZero())

	sum, err = s.reads.SumDeltas(ctx, &other, nil)
	s.Require().NoError(err)
	s.True(sum.Equal(decimal.RequireFromString("100")))

	// Whole-ledger sum equals what was declared.
	sum, err = s.reads.SumDeltas(ctx, nil, nil)
	s.Require().NoError(err)
	s.True(sum.Equal(decimal.RequireFromString("100")))

	balances, err := s.reads.ListBalances(ctx, &other)
	s.Require().NoError(err)
	s.Require().Len(balances, 1)
	s.Equal(lot.ID, balances[0].LotID)
}
