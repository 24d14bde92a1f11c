package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/Soozey/MADAVOLA/internal/audit"
	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	"github.com/Soozey/MADAVOLA/internal/payments"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

// =============================================================================
// Lifecycle Engine Test Suite
// =============================================================================
// Justification for unit tests: the engine owns every business rule (ownership,
// availability, payment gating, quantity conservation) and the in-memory store
// gives real rollback semantics, so atomicity failures surface here without a
// database.

type staticGeo struct {
	known map[id.GeoPointID]bool
}

func (g *staticGeo) Exists(_ context.Context, geoID id.GeoPointID) (bool, error) {
	return g.known[geoID], nil
}

type captureAudit struct {
	events []audit.Event
}

func (c *captureAudit) Record(_ context.Context, event audit.Event) {
	c.events = append(c.events, event)
}

type LifecycleSuite struct {
	suite.Suite
	store    *store.Memory
	payments *payments.MemoryStore
	geo      *staticGeo
	audit    *captureAudit
	service  *Service

	miner  id.ActorID
	buyer  id.ActorID
	origin id.GeoPointID
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.store = store.NewMemory()
	s.payments = payments.NewMemoryStore()
	s.miner = id.NewActorID()
	s.buyer = id.NewActorID()
	s.origin = id.NewGeoPointID()
	s.geo = &staticGeo{known: map[id.GeoPointID]bool{s.origin: true}}
	s.audit = &captureAudit{}
	s.service = New(s.store, s.payments, s.geo, slog.New(slog.DiscardHandler),
		WithAuditRecorder(s.audit))
}

func (s *LifecycleSuite) spec() models.CommoditySpec {
	return models.CommoditySpec{Filiere: models.FiliereOr, ProductType: "or_brut", Unit: "g"}
}

func (s *LifecycleSuite) mustCreate(quantity string) *models.Lot {
	lot, err := s.service.CreateLot(context.Background(), CreateLotRequest{
		Declarer: s.miner,
		Spec:     s.spec(),
		Quantity: decimal.RequireFromString(quantity),
		Origin:   s.origin,
	})
	s.Require().NoError(err)
	return lot
}

func (s *LifecycleSuite) mustPay(payer id.ActorID) id.PaymentID {
	paymentID := id.NewPaymentID()
	s.payments.Put(context.Background(), payments.Payment{
		ID:       paymentID,
		Payer:    payer,
		Payee:    s.miner,
		Amount:   decimal.RequireFromString("150000.00"),
		Currency: "MGA",
		Status:   payments.StatusSuccess,
	})
	return paymentID
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *LifecycleSuite) TestCreateLot() {
	ctx := context.Background()

	s.Run("declarer becomes owner and ledger opens with one create movement", func() {
		lot := s.mustCreate("100.0000")
		s.Equal(s.miner, lot.Owner)
		s.Equal(models.StatusAvailable, lot.Status)
		s.NotEmpty(lot.ReceiptNumber)
		s.NotEmpty(lot.QRValue)

		entries, err := s.service.Ledger(ctx, store.LedgerFilter{LotID: &lot.ID})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(models.MovementCreate, entries[0].MovementType)
		s.True(entries[0].QuantityDelta.Equal(lot.Quantity))

		balance, err := s.service.ActorBalance(ctx, s.miner, nil)
		s.Require().NoError(err)
		s.True(balance.Equal(decimal.RequireFromString("100")))
	})

	s.Run("non-positive quantity is rejected", func() {
		_, err := s.service.CreateLot(ctx, CreateLotRequest{
			Declarer: s.miner,
			Spec:     s.spec(),
			Quantity: decimal.Zero,
			Origin:   s.origin,
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})

	s.Run("quantity finer than four decimal places is rejected", func() {
		_, err := s.service.CreateLot(ctx, CreateLotRequest{
			Declarer: s.miner,
			Spec:     s.spec(),
			Quantity: decimal.RequireFromString("0.00004"),
			Origin:   s.origin,
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})

	s.Run("unknown origin location is rejected", func() {
		_, err := s.service.CreateLot(ctx, CreateLotRequest{
			Declarer: s.miner,
			Spec:     s.spec(),
			Quantity: decimal.RequireFromString("10"),
			Origin:   id.NewGeoPointID(),
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Transfer Tests
// =============================================================================

func (s *LifecycleSuite) TestTransferLot() {
	ctx := context.Background()

	s.Run("successful transfer moves ownership and conserves quantity", func() {
		lot := s.mustCreate("100.0000")
		paymentID := s.mustPay(s.buyer)

		got, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: paymentID,
		})
		s.Require().NoError(err)
		s.Equal(s.buyer, got.Owner)
		s.Equal(models.StatusAvailable, got.Status)

		minerBal, err := s.service.ActorBalance(ctx, s.miner, nil)
		s.Require().NoError(err)
		s.True(minerBal.IsZero())

		buyerBal, err := s.service.ActorBalance(ctx, s.buyer, nil)
		s.Require().NoError(err)
		s.True(buyerBal.Equal(decimal.RequireFromString("100")))
	})

	s.Run("unknown lot yields not found", func() {
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     id.NewLotID(),
			NewOwner:  s.buyer,
			PaymentID: s.mustPay(s.buyer),
		})
		s.True(dErrors.Has(err, dErrors.CodeNotFound))
	})

	s.Run("non-owner requester is forbidden", func() {
		lot := s.mustCreate("10")
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.buyer,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: s.mustPay(s.buyer),
		})
		s.True(dErrors.Has(err, dErrors.CodeForbidden))
	})

	s.Run("missing payment yields not found", func() {
		lot := s.mustCreate("10")
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: id.NewPaymentID(),
		})
		s.True(dErrors.Has(err, dErrors.CodeNotFound))
	})

	s.Run("pending payment yields conflict", func() {
		lot := s.mustCreate("10")
		paymentID := id.NewPaymentID()
		s.payments.Put(ctx, payments.Payment{
			ID: paymentID, Payer: s.buyer, Payee: s.miner,
			Amount: decimal.RequireFromString("1"), Currency: "MGA",
			Status: payments.StatusPending,
		})
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: paymentID,
		})
		s.True(dErrors.Has(err, dErrors.CodeConflict))
	})

	s.Run("payment from a different payer yields conflict", func() {
		lot := s.mustCreate("10")
		paymentID := s.mustPay(id.NewActorID())
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: paymentID,
		})
		s.True(dErrors.Has(err, dErrors.CodeConflict))
	})

	s.Run("non-available lot yields conflict", func() {
		lot := s.mustCreate("10")
		_, err := s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer:  id.NewActorID(),
			LotID:     lot.ID,
			Action:    PenaltyBlock,
			PenaltyID: id.NewPenaltyID(),
		})
		s.Require().NoError(err)

		_, err = s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			NewOwner:  s.buyer,
			PaymentID: s.mustPay(s.buyer),
		})
		s.True(dErrors.Has(err, dErrors.CodeConflict))
	})
}

// =============================================================================
// Split Tests
// =============================================================================

func (s *LifecycleSuite) TestSplitLot() {
	ctx := context.Background()

	s.Run("exact split produces children and closes the source", func() {
		lot := s.mustCreate("100.0000")
		children, err := s.service.SplitLot(ctx, SplitRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			Quantities: []decimal.Decimal{
				decimal.RequireFromString("40"),
				decimal.RequireFromString("60"),
			},
		})
		s.Require().NoError(err)
		s.Require().Len(children, 2)
		for _, child := range children {
			s.Equal(models.StatusAvailable, child.Status)
			s.Equal(s.miner, child.Owner)
			s.Require().NotNil(child.ParentLotID)
			s.Equal(lot.ID, *child.ParentLotID)
		}

		source, err := s.service.GetLot(ctx, lot.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSplit, source.Status)

		// Conservation: the miner's global position is unchanged.
		balance, err := s.service.ActorBalance(ctx, s.miner, nil)
		s.Require().NoError(err)
		s.True(balance.Equal(decimal.RequireFromString("100")))
	})

	s.Run("quantities that do not sum to the lot are rejected atomically", func() {
		lot := s.mustCreate("100.0000")
		before, err := s.service.ListLots(ctx, store.LotFilter{Owner: &s.miner})
		s.Require().NoError(err)

		_, err = s.service.SplitLot(ctx, SplitRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			Quantities: []decimal.Decimal{
				decimal.RequireFromString("40"),
				decimal.RequireFromString("70"),
			},
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))

		// Nothing leaked: the source is untouched and no child exists.
		source, err := s.service.GetLot(ctx, lot.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, source.Status)

		lots, err := s.service.ListLots(ctx, store.LotFilter{Owner: &s.miner})
		s.Require().NoError(err)
		s.Len(lots, len(before))
	})

	s.Run("child quantity finer than the ledger resolution is rejected", func() {
		lot := s.mustCreate("10.0000")
		_, err := s.service.SplitLot(ctx, SplitRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			Quantities: []decimal.Decimal{
				decimal.RequireFromString("0.00004"),
				decimal.RequireFromString("9.99996"),
			},
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))

		// The sum matched exactly, so only the per-child resolution check
		// can have fired, and it must roll the whole split back.
		source, err := s.service.GetLot(ctx, lot.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, source.Status)
	})

	s.Run("empty and non-positive quantities are rejected", func() {
		lot := s.mustCreate("10")
		_, err := s.service.SplitLot(ctx, SplitRequest{Requester: s.miner, LotID: lot.ID})
		s.True(dErrors.Has(err, dErrors.CodeValidation))

		_, err = s.service.SplitLot(ctx, SplitRequest{
			Requester: s.miner,
			LotID:     lot.ID,
			Quantities: []decimal.Decimal{
				decimal.RequireFromString("10"),
				decimal.Zero,
			},
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})

	s.Run("split of an already split lot yields conflict", func() {
		lot := s.mustCreate("10")
		_, err := s.service.SplitLot(ctx, SplitRequest{
			Requester:  s.miner,
			LotID:      lot.ID,
			Quantities: []decimal.Decimal{decimal.RequireFromString("5"), decimal.RequireFromString("5")},
		})
		s.Require().NoError(err)

		_, err = s.service.SplitLot(ctx, SplitRequest{
			Requester:  s.miner,
			LotID:      lot.ID,
			Quantities: []decimal.Decimal{decimal.RequireFromString("5"), decimal.RequireFromString("5")},
		})
		s.True(dErrors.Has(err, dErrors.CodeConflict))
	})
}

// =============================================================================
// Consolidate Tests
// =============================================================================

func (s *LifecycleSuite) TestConsolidateLots() {
	ctx := context.Background()

	s.Run("parent carries the exact sum and children close", func() {
		a := s.mustCreate("12.3456")
		b := s.mustCreate("7.6544")

		parent, err := s.service.ConsolidateLots(ctx, ConsolidateRequest{
			Requester: s.miner,
			LotIDs:    []id.LotID{a.ID, b.ID},
			Spec:      s.spec(),
			Origin:    s.origin,
		})
		s.Require().NoError(err)
		s.True(parent.Quantity.Equal(decimal.RequireFromString("20")))
		s.Equal(models.StatusAvailable, parent.Status)

		for _, childID := range []id.LotID{a.ID, b.ID} {
			child, err := s.service.GetLot(ctx, childID)
			s.Require().NoError(err)
			s.Equal(models.StatusConsolidated, child.Status)
			s.Require().NotNil(child.ParentLotID)
			s.Equal(parent.ID, *child.ParentLotID)
		}

		balance, err := s.service.ActorBalance(ctx, s.miner, nil)
		s.Require().NoError(err)
		s.True(balance.Equal(decimal.RequireFromString("20")))
	})

	s.Run("fewer than two distinct lots is rejected", func() {
		a := s.mustCreate("10")
		_, err := s.service.ConsolidateLots(ctx, ConsolidateRequest{
			Requester: s.miner,
			LotIDs:    []id.LotID{a.ID, a.ID},
			Spec:      s.spec(),
			Origin:    s.origin,
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})

	s.Run("mixed ownership is forbidden", func() {
		a := s.mustCreate("10")
		b := s.mustCreate("5")
		paymentID := s.mustPay(s.buyer)
		_, err := s.service.TransferLot(ctx, TransferRequest{
			Requester: s.miner, LotID: b.ID, NewOwner: s.buyer, PaymentID: paymentID,
		})
		s.Require().NoError(err)

		_, err = s.service.ConsolidateLots(ctx, ConsolidateRequest{
			Requester: s.miner,
			LotIDs:    []id.LotID{a.ID, b.ID},
			Spec:      s.spec(),
			Origin:    s.origin,
		})
		s.True(dErrors.Has(err, dErrors.CodeForbidden))
	})

	s.Run("missing lot yields not found", func() {
		a := s.mustCreate("10")
		_, err := s.service.ConsolidateLots(ctx, ConsolidateRequest{
			Requester: s.miner,
			LotIDs:    []id.LotID{a.ID, id.NewLotID()},
			Spec:      s.spec(),
			Origin:    s.origin,
		})
		s.True(dErrors.Has(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Penalty Tests
// =============================================================================

func (s *LifecycleSuite) TestPenaltyAction() {
	ctx := context.Background()
	enforcer := id.NewActorID()

	s.Run("block freezes the lot without moving quantity", func() {
		lot := s.mustCreate("25")
		got, err := s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer:  enforcer,
			LotID:     lot.ID,
			Action:    PenaltyBlock,
			PenaltyID: id.NewPenaltyID(),
		})
		s.Require().NoError(err)
		s.Equal(models.StatusBlocked, got.Status)
		s.Equal(s.miner, got.Owner)

		entries, err := s.service.Ledger(ctx, store.LedgerFilter{LotID: &lot.ID})
		s.Require().NoError(err)
		s.Len(entries, 1) // only the create movement
	})

	s.Run("seizure moves custody to the enforcer by default", func() {
		lot := s.mustCreate("25")
		got, err := s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer:  enforcer,
			LotID:     lot.ID,
			Action:    PenaltySeize,
			PenaltyID: id.NewPenaltyID(),
		})
		s.Require().NoError(err)
		s.Equal(models.StatusSeized, got.Status)
		s.Equal(enforcer, got.Owner)

		minerBal, err := s.service.ActorBalance(ctx, s.miner, &lot.ID)
		s.Require().NoError(err)
		s.True(minerBal.IsZero())

		enforcerBal, err := s.service.ActorBalance(ctx, enforcer, &lot.ID)
		s.Require().NoError(err)
		s.True(enforcerBal.Equal(decimal.RequireFromString("25")))
	})

	s.Run("penalty on a non-available lot yields conflict", func() {
		lot := s.mustCreate("25")
		_, err := s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer: enforcer, LotID: lot.ID, Action: PenaltyBlock, PenaltyID: id.NewPenaltyID(),
		})
		s.Require().NoError(err)

		_, err = s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer: enforcer, LotID: lot.ID, Action: PenaltySeize, PenaltyID: id.NewPenaltyID(),
		})
		s.True(dErrors.Has(err, dErrors.CodeConflict))
	})

	s.Run("unknown action is rejected", func() {
		lot := s.mustCreate("25")
		_, err := s.service.PenaltyAction(ctx, PenaltyRequest{
			Enforcer: enforcer, LotID: lot.ID, Action: "destroy", PenaltyID: id.NewPenaltyID(),
		})
		s.True(dErrors.Has(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// End-to-End Scenario
// =============================================================================

func (s *LifecycleSuite) TestDeclareTransferSplitScenario() {
	ctx := context.Background()

	lot := s.mustCreate("100.0000")

	paymentID := s.mustPay(s.buyer)
	transferred, err := s.service.TransferLot(ctx, TransferRequest{
		Requester: s.miner,
		LotID:     lot.ID,
		NewOwner:  s.buyer,
		PaymentID: paymentID,
	})
	s.Require().NoError(err)
	s.Equal(s.buyer, transferred.Owner)

	children, err := s.service.SplitLot(ctx, SplitRequest{
		Requester: s.buyer,
		LotID:     lot.ID,
		Quantities: []decimal.Decimal{
			decimal.RequireFromString("40"),
			decimal.RequireFromString("60"),
		},
	})
	s.Require().NoError(err)
	s.Require().Len(children, 2)

	buyerBal, err := s.service.ActorBalance(ctx, s.buyer, nil)
	s.Require().NoError(err)
	s.True(buyerBal.Equal(decimal.RequireFromString("100")))

	minerBal, err := s.service.ActorBalance(ctx, s.miner, nil)
	s.Require().NoError(err)
	s.True(minerBal.IsZero())

	// Every operation landed on the audit side channel.
	s.Len(s.audit.events, 3)

	// The full ledger across all lots still nets to the created quantity.
	entries, err := s.service.Ledger(ctx, store.LedgerFilter{})
	s.Require().NoError(err)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.QuantityDelta)
	}
	s.True(total.Equal(decimal.RequireFromString("100")))
}
