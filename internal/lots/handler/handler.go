// Package handler exposes the lot lifecycle over HTTP. Handlers stay thin:
// they parse, authorize against the caller's roles where an operation demands
// one, and delegate to the engine.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/service"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	"github.com/Soozey/MADAVOLA/internal/policy"
	"github.com/Soozey/MADAVOLA/internal/transport/http/shared"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the lifecycle operations the handler delegates to.
type Service interface {
	CreateLot(ctx context.Context, req service.CreateLotRequest) (*models.Lot, error)
	TransferLot(ctx context.Context, req service.TransferRequest) (*models.Lot, error)
	ConsolidateLots(ctx context.Context, req service.ConsolidateRequest) (*models.Lot, error)
	SplitLot(ctx context.Context, req service.SplitRequest) ([]*models.Lot, error)
	PenaltyAction(ctx context.Context, req service.PenaltyRequest) (*models.Lot, error)
	GetLot(ctx context.Context, lotID id.LotID) (*models.Lot, error)
	ListLots(ctx context.Context, filter store.LotFilter) ([]*models.Lot, error)
	Ledger(ctx context.Context, filter store.LedgerFilter) ([]models.LedgerEntry, error)
	Balances(ctx context.Context, actorID *id.ActorID) ([]models.Balance, error)
	ActorBalance(ctx context.Context, actorID id.ActorID, lotID *id.LotID) (decimal.Decimal, error)
}

// Handler wires lot endpoints to the lifecycle engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts lot and ledger endpoints. Callers are expected to have run
// the auth middleware already; every route needs an authenticated actor.
func (h *Handler) Register(r chi.Router) {
	r.Post("/lots", h.handleCreate)
	r.Get("/lots", h.handleList)
	r.Get("/lots/{lotID}", h.handleGet)
	r.Post("/lots/consolidate", h.handleConsolidate)
	r.Post("/lots/{lotID}/transfer", h.handleTransfer)
	r.Post("/lots/{lotID}/split", h.handleSplit)
	r.Post("/lots/{lotID}/penalty", h.handlePenalty)
	r.Get("/ledger", h.handleLedger)
	r.Get("/ledger/balance", h.handleBalance)
	r.Get("/ledger/balances", h.handleBalances)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	var req createLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domainReq, err := req.toService(actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	lot, err := h.service.CreateLot(ctx, domainReq)
	if err != nil {
		h.logError(ctx, "lot creation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, fromLot(lot))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	lotID, err := id.ParseLotID(chi.URLParam(r, "lotID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	lot, err := h.service.GetLot(r.Context(), lotID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromLot(lot))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter store.LotFilter
	if raw := r.URL.Query().Get("owner"); raw != "" {
		owner, err := id.ParseActorID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.Owner = &owner
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		filter.Status = &status
	}

	lots, err := h.service.ListLots(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromLots(lots))
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	lotID, err := id.ParseLotID(chi.URLParam(r, "lotID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domainReq, err := req.toService(actor, lotID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	lot, err := h.service.TransferLot(ctx, domainReq)
	if err != nil {
		h.logError(ctx, "lot transfer failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromLot(lot))
}

func (h *Handler) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	var req consolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domainReq, err := req.toService(actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	parent, err := h.service.ConsolidateLots(ctx, domainReq)
	if err != nil {
		h.logError(ctx, "lot consolidation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, fromLot(parent))
}

func (h *Handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	lotID, err := id.ParseLotID(chi.URLParam(r, "lotID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	children, err := h.service.SplitLot(ctx, service.SplitRequest{
		Requester:  actor,
		LotID:      lotID,
		Quantities: req.Quantities,
	})
	if err != nil {
		h.logError(ctx, "lot split failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, fromLots(children))
}

func (h *Handler) handlePenalty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	if !policy.Allowed(requestcontext.Roles(ctx), policy.PermLotEnforcement) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "enforcement role required"))
		return
	}
	lotID, err := id.ParseLotID(chi.URLParam(r, "lotID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req penaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domainReq, err := req.toService(actor, lotID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	lot, err := h.service.PenaltyAction(ctx, domainReq)
	if err != nil {
		h.logError(ctx, "penalty action failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromLot(lot))
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	var filter store.LedgerFilter
	if raw := r.URL.Query().Get("actor"); raw != "" {
		actor, err := id.ParseActorID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.ActorID = &actor
	}
	if raw := r.URL.Query().Get("lot"); raw != "" {
		lotID, err := id.ParseLotID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.LotID = &lotID
	}

	entries, err := h.service.Ledger(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromLedgerEntries(entries))
}

// handleBalance returns the authenticated actor's live position, optionally
// scoped to one lot.
func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	var lotID *id.LotID
	if raw := r.URL.Query().Get("lot"); raw != "" {
		parsed, err := id.ParseLotID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		lotID = &parsed
	}

	sum, err := h.service.ActorBalance(ctx, actor, lotID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"actor_id": actor.String(),
		"quantity": sum.StringFixed(models.QuantityPlaces),
	})
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	var actorID *id.ActorID
	if raw := r.URL.Query().Get("actor"); raw != "" {
		parsed, err := id.ParseActorID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		actorID = &parsed
	}

	balances, err := h.service.Balances(r.Context(), actorID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromBalances(balances))
}

func (h *Handler) requireActor(w http.ResponseWriter, ctx context.Context) (id.ActorID, bool) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsZero() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.ActorID{}, false
	}
	return actor, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
