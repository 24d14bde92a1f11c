// Package service implements the lot lifecycle engine.
//
// Every operation runs inside one atomic unit of work obtained from the
// store's Tx runner: the lot rows it touches are read under a pessimistic
// lock, preconditions are re-checked on the locked rows, and the lot state
// transition plus its matched ledger entries commit together or not at all.
//
// Quantity conservation is the load-bearing invariant: apart from the create
// movement, the entries written by one operation always sum to exactly zero.
// The engine asserts this before handing the batch to the store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Soozey/MADAVOLA/internal/audit"
	lotmetrics "github.com/Soozey/MADAVOLA/internal/lots/metrics"
	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	"github.com/Soozey/MADAVOLA/internal/payments"
	"github.com/Soozey/MADAVOLA/internal/receipts"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

// GeoResolver answers whether a declared origin location exists. Territory
// reference data is imported and owned elsewhere.
type GeoResolver interface {
	Exists(ctx context.Context, geoID id.GeoPointID) (bool, error)
}

// AuditRecorder receives the side-channel trail. Implementations must not
// block; the engine does not wait for acknowledgement.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service orchestrates lot lifecycle operations over the narrow store contract.
type Service struct {
	tx       store.Tx
	payments payments.Verifier
	geo      GeoResolver
	audit    AuditRecorder
	receipts *receipts.Cache
	logger   *slog.Logger
	metrics  *lotmetrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) { s.audit = recorder }
}

func WithMetrics(m *lotmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithReceiptCache(cache *receipts.Cache) Option {
	return func(s *Service) { s.receipts = cache }
}

// New constructs the engine. tx, verifier and geo are required; audit and
// metrics default to no-ops.
func New(tx store.Tx, verifier payments.Verifier, geo GeoResolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		tx:       tx,
		payments: verifier,
		geo:      geo,
		logger:   logger,
		tracer:   otel.Tracer("madavola/lots"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLot declares a new lot. The declarer becomes the owner and a single
// create movement of +quantity opens the lot's ledger.
func (s *Service) CreateLot(ctx context.Context, req CreateLotRequest) (*models.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "lots.CreateLot")
	defer span.End()

	if !req.Quantity.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	known, err := s.geo.Exists(ctx, req.Origin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve origin location")
	}
	if !known {
		return nil, dErrors.New(dErrors.CodeValidation, "origin location is unknown")
	}

	now := requestcontext.Now(ctx)
	lot, err := models.NewLot(id.NewLotID(), req.Spec, req.Quantity, req.Declarer, req.Origin, now)
	if err != nil {
		if dErrors.Has(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	lot.ReceiptNumber = receipts.Number(receipts.PrefixLot, lot.ID.String(), now)
	lot.QRValue = receipts.QRValue("lot", lot.ID.String())

	err = s.tx.RunInTx(ctx, func(st store.Store) error {
		if err := st.InsertLot(ctx, lot); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert lot")
		}
		return st.InsertLedgerEntries(ctx, []models.LedgerEntry{{
			ID:            id.NewLedgerEntryID(),
			ActorID:       req.Declarer,
			LotID:         lot.ID,
			MovementType:  models.MovementCreate,
			QuantityDelta: lot.Quantity,
			RefEventType:  models.RefEventLot,
			RefEventID:    lot.ID.String(),
			CreatedAt:     now,
		}})
	})
	if err != nil {
		return nil, err
	}

	if cacheErr := s.receipts.Register(ctx, lot.QRValue, lot.ReceiptNumber); cacheErr != nil {
		s.logger.WarnContext(ctx, "receipt cache registration failed",
			"error", cacheErr, "lot_id", lot.ID)
	}
	s.recordAudit(ctx, req.Declarer, audit.ActionLotCreated, lot.ID, map[string]string{
		"quantity": lot.Quantity.StringFixed(models.QuantityPlaces),
		"unit":     lot.Unit,
	})
	if s.metrics != nil {
		s.metrics.LotsCreated.Inc()
	}
	span.SetAttributes(attribute.String("lot_id", lot.ID.String()))
	return lot, nil
}

// TransferLot changes a lot's owner after verifying the settling payment.
// The lot stays available; the ledger records the movement between owners.
func (s *Service) TransferLot(ctx context.Context, req TransferRequest) (*models.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "lots.TransferLot",
		trace.WithAttributes(attribute.String("lot_id", req.LotID.String())))
	defer span.End()

	if req.NewOwner.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "new owner is required")
	}

	var lot *models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		lot, err = lockLot(ctx, st, req.LotID)
		if err != nil {
			return err
		}
		if !lot.OwnedBy(req.Requester) {
			return dErrors.New(dErrors.CodeForbidden, "requester is not the lot owner")
		}
		if !lot.IsAvailable() {
			return dErrors.New(dErrors.CodeConflict, "lot is not available")
		}

		payment, err := s.payments.Get(ctx, req.PaymentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "payment not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify payment")
		}
		if !payment.Succeeded() || payment.Payer != req.NewOwner {
			return dErrors.New(dErrors.CodeConflict, "payment required")
		}

		if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, lot.Status, req.NewOwner); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update lot owner")
		}

		now := requestcontext.Now(ctx)
		entries := []models.LedgerEntry{
			{
				ID:            id.NewLedgerEntryID(),
				ActorID:       req.Requester,
				LotID:         lot.ID,
				MovementType:  models.MovementTransferOut,
				QuantityDelta: lot.Quantity.Neg(),
				RefEventType:  models.RefEventTransfer,
				RefEventID:    req.PaymentID.String(),
				CreatedAt:     now,
			},
			{
				ID:            id.NewLedgerEntryID(),
				ActorID:       req.NewOwner,
				LotID:         lot.ID,
				MovementType:  models.MovementTransferIn,
				QuantityDelta: lot.Quantity,
				RefEventType:  models.RefEventTransfer,
				RefEventID:    req.PaymentID.String(),
				CreatedAt:     now,
			},
		}
		if err := requireConserved(entries); err != nil {
			return err
		}
		if err := st.InsertLedgerEntries(ctx, entries); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write ledger entries")
		}
		lot.Owner = req.NewOwner
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, req.Requester, audit.ActionLotTransferred, lot.ID, map[string]string{
		"new_owner":  req.NewOwner.String(),
		"payment_id": req.PaymentID.String(),
	})
	if s.metrics != nil {
		s.metrics.LotsTransferred.Inc()
	}
	return lot, nil
}

// ConsolidateLots merges at least two available lots owned by the requester
// into one parent lot carrying the exact sum of their quantities.
func (s *Service) ConsolidateLots(ctx context.Context, req ConsolidateRequest) (*models.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "lots.ConsolidateLots")
	defer span.End()

	lotIDs := dedupeLotIDs(req.LotIDs)
	if len(lotIDs) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least two distinct lots are required")
	}

	var parent *models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		children, err := st.GetLotsForUpdate(ctx, lotIDs)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "lot not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock lots")
		}
		total := decimal.Zero
		for _, child := range children {
			if !child.OwnedBy(req.Requester) {
				return dErrors.New(dErrors.CodeForbidden, "requester does not own every lot")
			}
			if !child.IsAvailable() {
				return dErrors.New(dErrors.CodeConflict, "lot is not available")
			}
			total = total.Add(child.Quantity)
		}

		now := requestcontext.Now(ctx)
		spec := req.Spec
		if spec.Filiere == "" {
			spec.Filiere = children[0].Filiere
		}
		parent, err = models.NewLot(id.NewLotID(), spec, total, req.Requester, req.Origin, now)
		if err != nil {
			if dErrors.Has(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}
		parent.ReceiptNumber = receipts.Number(receipts.PrefixLot, parent.ID.String(), now)
		parent.QRValue = receipts.QRValue("lot", parent.ID.String())
		if err := st.InsertLot(ctx, parent); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert parent lot")
		}

		entries := make([]models.LedgerEntry, 0, len(children)+1)
		for _, child := range children {
			if err := st.SetParentLot(ctx, child.ID, parent.ID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link child lot")
			}
			if err := st.UpdateLotStatusAndOwner(ctx, child.ID, models.StatusConsolidated, child.Owner); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close child lot")
			}
			entries = append(entries, models.LedgerEntry{
				ID:            id.NewLedgerEntryID(),
				ActorID:       req.Requester,
				LotID:         child.ID,
				MovementType:  models.MovementConsolidateOut,
				QuantityDelta: child.Quantity.Neg(),
				RefEventType:  models.RefEventConsolidation,
				RefEventID:    parent.ID.String(),
				CreatedAt:     now,
			})
		}
		entries = append(entries, models.LedgerEntry{
			ID:            id.NewLedgerEntryID(),
			ActorID:       req.Requester,
			LotID:         parent.ID,
			MovementType:  models.MovementConsolidateIn,
			QuantityDelta: total,
			RefEventType:  models.RefEventConsolidation,
			RefEventID:    parent.ID.String(),
			CreatedAt:     now,
		})
		if err := requireConserved(entries); err != nil {
			return err
		}
		if err := st.InsertLedgerEntries(ctx, entries); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write ledger entries")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, req.Requester, audit.ActionLotConsolidated, parent.ID, map[string]string{
		"child_count": decimal.NewFromInt(int64(len(lotIDs))).String(),
	})
	if s.metrics != nil {
		s.metrics.LotsConsolidated.Inc()
	}
	span.SetAttributes(attribute.String("parent_lot_id", parent.ID.String()))
	return parent, nil
}

// SplitLot divides an available lot into child lots whose quantities must sum
// exactly to the source quantity. Comparison is exact decimal arithmetic, so
// valid splits never fail on representation error.
func (s *Service) SplitLot(ctx context.Context, req SplitRequest) ([]*models.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "lots.SplitLot",
		trace.WithAttributes(attribute.String("lot_id", req.LotID.String())))
	defer span.End()

	if len(req.Quantities) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "split quantities are required")
	}
	total := decimal.Zero
	for _, q := range req.Quantities {
		if !q.IsPositive() {
			return nil, dErrors.New(dErrors.CodeValidation, "split quantities must be positive")
		}
		total = total.Add(q)
	}

	var children []*models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		lot, err := lockLot(ctx, st, req.LotID)
		if err != nil {
			return err
		}
		if !lot.OwnedBy(req.Requester) {
			return dErrors.New(dErrors.CodeForbidden, "requester is not the lot owner")
		}
		if !lot.IsAvailable() {
			return dErrors.New(dErrors.CodeConflict, "lot is not available")
		}
		if !total.Equal(lot.Quantity) {
			return dErrors.New(dErrors.CodeValidation, "split quantities must sum to the lot quantity")
		}

		now := requestcontext.Now(ctx)
		spec := models.CommoditySpec{Filiere: lot.Filiere, ProductType: lot.ProductType, Unit: lot.Unit}
		entries := make([]models.LedgerEntry, 0, len(req.Quantities)+1)
		children = make([]*models.Lot, 0, len(req.Quantities))
		for _, q := range req.Quantities {
			child, err := models.NewLot(id.NewLotID(), spec, q, req.Requester, lot.OriginGeoID, now)
			if err != nil {
				if dErrors.Has(err, dErrors.CodeInvariantViolation) {
					return dErrors.New(dErrors.CodeValidation, err.Error())
				}
				return err
			}
			parentID := lot.ID
			child.ParentLotID = &parentID
			child.ReceiptNumber = receipts.Number(receipts.PrefixLot, child.ID.String(), now)
			child.QRValue = receipts.QRValue("lot", child.ID.String())
			if err := st.InsertLot(ctx, child); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert child lot")
			}
			children = append(children, child)
			entries = append(entries, models.LedgerEntry{
				ID:            id.NewLedgerEntryID(),
				ActorID:       req.Requester,
				LotID:         child.ID,
				MovementType:  models.MovementSplitIn,
				QuantityDelta: child.Quantity,
				RefEventType:  models.RefEventSplit,
				RefEventID:    lot.ID.String(),
				CreatedAt:     now,
			})
		}
		if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, models.StatusSplit, lot.Owner); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close source lot")
		}
		entries = append(entries, models.LedgerEntry{
			ID:            id.NewLedgerEntryID(),
			ActorID:       req.Requester,
			LotID:         lot.ID,
			MovementType:  models.MovementSplitOut,
			QuantityDelta: lot.Quantity.Neg(),
			RefEventType:  models.RefEventSplit,
			RefEventID:    lot.ID.String(),
			CreatedAt:     now,
		})
		if err := requireConserved(entries); err != nil {
			return err
		}
		if err := st.InsertLedgerEntries(ctx, entries); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write ledger entries")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, req.Requester, audit.ActionLotSplit, req.LotID, map[string]string{
		"child_count": decimal.NewFromInt(int64(len(children))).String(),
	})
	if s.metrics != nil {
		s.metrics.LotsSplit.Inc()
	}
	return children, nil
}

// PenaltyAction blocks or seizes a lot on behalf of an enforcement decision.
// Role authorization happens upstream; the engine trusts the enforcer id.
func (s *Service) PenaltyAction(ctx context.Context, req PenaltyRequest) (*models.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "lots.PenaltyAction",
		trace.WithAttributes(attribute.String("lot_id", req.LotID.String())))
	defer span.End()

	if req.Action != PenaltyBlock && req.Action != PenaltySeize {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown penalty action")
	}
	if req.PenaltyID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "penalty reference is required")
	}

	var lot *models.Lot
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		lot, err = lockLot(ctx, st, req.LotID)
		if err != nil {
			return err
		}
		if !lot.IsAvailable() {
			return dErrors.New(dErrors.CodeConflict, "lot is not available")
		}

		if req.Action == PenaltyBlock {
			// Blocking freezes circulation without moving quantity: no entries.
			if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, models.StatusBlocked, lot.Owner); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to block lot")
			}
			lot.Status = models.StatusBlocked
			return nil
		}

		seizedTo := req.Enforcer
		if req.SeizedTo != nil {
			seizedTo = *req.SeizedTo
		}
		priorOwner := lot.Owner
		if err := st.UpdateLotStatusAndOwner(ctx, lot.ID, models.StatusSeized, seizedTo); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seize lot")
		}

		now := requestcontext.Now(ctx)
		entries := []models.LedgerEntry{
			{
				ID:            id.NewLedgerEntryID(),
				ActorID:       priorOwner,
				LotID:         lot.ID,
				MovementType:  models.MovementSeizureOut,
				QuantityDelta: lot.Quantity.Neg(),
				RefEventType:  models.RefEventPenalty,
				RefEventID:    req.PenaltyID.String(),
				CreatedAt:     now,
			},
			{
				ID:            id.NewLedgerEntryID(),
				ActorID:       seizedTo,
				LotID:         lot.ID,
				MovementType:  models.MovementSeizureIn,
				QuantityDelta: lot.Quantity,
				RefEventType:  models.RefEventPenalty,
				RefEventID:    req.PenaltyID.String(),
				CreatedAt:     now,
			},
		}
		if err := requireConserved(entries); err != nil {
			return err
		}
		if err := st.InsertLedgerEntries(ctx, entries); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write ledger entries")
		}
		lot.Status = models.StatusSeized
		lot.Owner = seizedTo
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.ActionLotBlocked
	if req.Action == PenaltySeize {
		action = audit.ActionLotSeized
	}
	s.recordAudit(ctx, req.Enforcer, action, lot.ID, map[string]string{
		"penalty_id": req.PenaltyID.String(),
	})
	if s.metrics != nil {
		if req.Action == PenaltySeize {
			s.metrics.LotsSeized.Inc()
		} else {
			s.metrics.LotsBlocked.Inc()
		}
	}
	return lot, nil
}

func lockLot(ctx context.Context, st store.Store, lotID id.LotID) (*models.Lot, error) {
	lot, err := st.GetLotForUpdate(ctx, lotID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lot not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lot")
	}
	return lot, nil
}

// requireConserved rejects a movement set whose deltas do not sum to zero.
// This fires only on an engine bug, never on caller input.
func requireConserved(entries []models.LedgerEntry) error {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.QuantityDelta)
	}
	if !sum.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "ledger movement set does not conserve quantity")
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor id.ActorID, action string, lotID id.LotID, meta map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		ActorID:    actor,
		Action:     action,
		EntityType: "lot",
		EntityID:   lotID.String(),
		Meta:       meta,
	})
}

func dedupeLotIDs(ids []id.LotID) []id.LotID {
	seen := make(map[id.LotID]struct{}, len(ids))
	out := make([]id.LotID, 0, len(ids))
	for _, lotID := range ids {
		if _, dup := seen[lotID]; dup {
			continue
		}
		seen[lotID] = struct{}{}
		out = append(out, lotID)
	}
	return out
}
