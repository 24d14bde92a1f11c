// Package handler exposes the DTSPM calculator and recorder over HTTP.
// Recording and status updates require the revenue supervision permission;
// the breakdown preview is available to any authenticated actor.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/policy"
	"github.com/Soozey/MADAVOLA/internal/taxes/calc"
	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	"github.com/Soozey/MADAVOLA/internal/taxes/service"
	"github.com/Soozey/MADAVOLA/internal/taxes/store"
	"github.com/Soozey/MADAVOLA/internal/transport/http/shared"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

// Service defines the tax recording operations the handler delegates to.
type Service interface {
	CreateTaxEvent(ctx context.Context, req service.CreateTaxEventRequest) ([]models.TaxRecord, error)
	Breakdown(baseAmount decimal.Decimal, currency string) (*calc.Breakdown, error)
	UpdateStatus(ctx context.Context, actor id.ActorID, recordID id.TaxRecordID, status models.Status) error
	List(ctx context.Context, filter store.Filter) ([]models.TaxRecord, error)
}

// Handler wires tax endpoints to the recorder.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts tax endpoints. Auth middleware runs upstream.
func (h *Handler) Register(r chi.Router) {
	r.Get("/taxes/dtspm/breakdown", h.handleBreakdown)
	r.Post("/taxes/events", h.handleCreateEvent)
	r.Get("/taxes", h.handleList)
	r.Patch("/taxes/{recordID}/status", h.handleUpdateStatus)
}

// handleBreakdown previews the apportionment without recording anything.
func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	base, err := decimal.NewFromString(r.URL.Query().Get("base_amount"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "base_amount must be a decimal number"))
		return
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "MGA"
	}

	breakdown, err := h.service.Breakdown(base, currency)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromBreakdown(breakdown))
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requirePermission(w, ctx)
	if !ok {
		return
	}

	var req createTaxEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domainReq, err := req.toService(actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.service.CreateTaxEvent(ctx, domainReq)
	if err != nil {
		h.logger.WarnContext(ctx, "tax event recording failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_type", req.EventType,
			"event_id", req.EventID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, fromRecords(records))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if raw := r.URL.Query().Get("event_type"); raw != "" {
		filter.EventType = &raw
	}
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		filter.EventID = &raw
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		if !models.ValidStatus(status) {
			shared.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", raw))
			return
		}
		filter.Status = &status
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fromRecords(records))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requirePermission(w, ctx)
	if !ok {
		return
	}
	recordID, err := id.ParseTaxRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.UpdateStatus(ctx, actor, recordID, models.Status(req.Status)); err != nil {
		h.logger.WarnContext(ctx, "tax status update failed",
			"request_id", requestcontext.RequestID(ctx),
			"tax_record_id", recordID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requirePermission(w http.ResponseWriter, ctx context.Context) (id.ActorID, bool) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsZero() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.ActorID{}, false
	}
	if !policy.Allowed(requestcontext.Roles(ctx), policy.PermTaxRecording) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "revenue supervision role required"))
		return id.ActorID{}, false
	}
	return actor, true
}
