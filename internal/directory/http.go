package directory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SevinYeung429/SC2002/internal/httputil"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires the staff-facing account endpoints. The caller
// is expected to gate them with the staff role.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/representatives/pending", h.PendingRepresentatives)
	router.Post("/representatives/{id}/review", h.ReviewRepresentative)
}

func (h *Handler) PendingRepresentatives(w http.ResponseWriter, r *http.Request) {
	pending := h.service.PendingRepresentatives(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, pending)
}

type reviewRepresentativeRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) ReviewRepresentative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req reviewRepresentativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ReviewRepresentative(r.Context(), id, req.Approve); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "representative not found")
			return
		}
		h.logger.Error("failed to review representative", "id", id, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("representative reviewed", "id", id, "approved", req.Approve)
	w.WriteHeader(http.StatusNoContent)
}
