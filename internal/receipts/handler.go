package receipts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Soozey/MADAVOLA/internal/transport/http/shared"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// Handler resolves scanned QR values back to receipt numbers, for field
// control of paper receipts.
type Handler struct {
	cache  *Cache
	logger *slog.Logger
}

func NewHandler(cache *Cache, logger *slog.Logger) *Handler {
	return &Handler{cache: cache, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/receipts/verify", h.handleVerify)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	qr := r.URL.Query().Get("qr")
	kind, entityID, ok := ParseQRValue(qr)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed qr value"))
		return
	}

	receipt, err := h.cache.Verify(r.Context(), qr)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown or expired receipt"))
		case errors.Is(err, sentinel.ErrUnavailable):
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "receipt verification unavailable"))
		default:
			h.logger.ErrorContext(r.Context(), "receipt verification failed", "error", err)
			shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "receipt verification failed"))
		}
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"kind":           kind,
		"entity_id":      entityID,
		"receipt_number": receipt,
	})
}
