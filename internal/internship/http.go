package internship

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SevinYeung429/SC2002/internal/auth"
	"github.com/SevinYeung429/SC2002/internal/directory"
	"github.com/SevinYeung429/SC2002/internal/httputil"
	"github.com/SevinYeung429/SC2002/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

type Handler struct {
	engine   *Engine
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(engine *Engine, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	staff := auth.RequireRole(directory.RoleStaff)
	rep := auth.RequireRole(directory.RoleRepresentative)
	student := auth.RequireRole(directory.RoleStudent)

	router.Route("/internships", func(r chi.Router) {
		r.With(staff).Get("/", h.ListInternships)
		r.With(student).Get("/open", h.ListOpenInternships)
		r.With(rep).Get("/mine", h.ListMyInternships)
		r.With(rep).Post("/", h.CreateInternship)
		r.With(rep).Put("/{id}", h.UpdateInternship)
		r.With(rep).Delete("/{id}", h.DeleteInternship)
		r.With(rep).Post("/{id}/visibility", h.ToggleVisibility)
		r.With(staff).Post("/{id}/review", h.ReviewPosting)
		r.With(student).Post("/{id}/apply", h.Apply)
		r.With(rep).Post("/{id}/applications/{studentID}/review", h.ReviewApplication)
		r.With(student).Post("/{id}/accept", h.AcceptOffer)
		r.With(student).Post("/{id}/withdrawal", h.RequestWithdrawal)
	})

	router.With(student).Get("/applications", h.ListMyApplications)
	router.With(staff).Get("/withdrawals", h.ListPendingWithdrawals)
	router.With(staff).Post("/withdrawals/{id}/review", h.AdjudicateWithdrawal)
}

type createInternshipRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Level          string `json:"level" validate:"required"`
	PreferredMajor string `json:"preferredMajor" validate:"required"`
	OpeningDate    string `json:"openingDate" validate:"required"`
	ClosingDate    string `json:"closingDate" validate:"required"`
	Slots          int    `json:"slots" validate:"required,min=1,max=10"`
}

func (h *Handler) CreateInternship(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())

	var req createInternshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	level, ok := ParseLevel(req.Level)
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "level must be basic, intermediate, or advanced")
		return
	}
	opening, err := time.Parse(dateLayout, req.OpeningDate)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "openingDate must be YYYY-MM-DD")
		return
	}
	closing, err := time.Parse(dateLayout, req.ClosingDate)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "closingDate must be YYYY-MM-DD")
		return
	}

	h.logger.Info("creating internship", "representative", repID, "title", req.Title)
	created, err := h.engine.CreateInternship(r.Context(), repID, CreateInternshipInput{
		Title:          req.Title,
		Description:    req.Description,
		Level:          level,
		PreferredMajor: req.PreferredMajor,
		OpeningDate:    opening,
		ClosingDate:    closing,
		Slots:          req.Slots,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordPostingCreated(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListInternships(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.engine.Internships(r.Context()))
}

func (h *Handler) ListOpenInternships(w http.ResponseWriter, r *http.Request) {
	studentID, _ := auth.GetUserID(r.Context())
	open, err := h.engine.OpenInternships(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, open)
}

func (h *Handler) ListMyInternships(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, h.engine.ListByRepresentative(r.Context(), repID))
}

type updateInternshipRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Level          *string `json:"level"`
	PreferredMajor *string `json:"preferredMajor"`
	OpeningDate    *string `json:"openingDate"`
	ClosingDate    *string `json:"closingDate"`
	Slots          *int    `json:"slots"`
}

type updateInternshipResponse struct {
	Internship    *Internship `json:"internship"`
	SkippedFields []string    `json:"skippedFields,omitempty"`
}

func (h *Handler) UpdateInternship(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	var req updateInternshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := UpdateInternshipInput{
		Title:          req.Title,
		Description:    req.Description,
		PreferredMajor: req.PreferredMajor,
		Slots:          req.Slots,
	}
	if req.Level != nil {
		level, ok := ParseLevel(*req.Level)
		if !ok {
			httputil.RespondWithError(w, http.StatusBadRequest, "level must be basic, intermediate, or advanced")
			return
		}
		in.Level = &level
	}
	if req.OpeningDate != nil {
		opening, err := time.Parse(dateLayout, *req.OpeningDate)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "openingDate must be YYYY-MM-DD")
			return
		}
		in.OpeningDate = &opening
	}
	if req.ClosingDate != nil {
		closing, err := time.Parse(dateLayout, *req.ClosingDate)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "closingDate must be YYYY-MM-DD")
			return
		}
		in.ClosingDate = &closing
	}

	updated, skipped, err := h.engine.UpdateInternship(r.Context(), repID, id, in)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, updateInternshipResponse{Internship: updated, SkippedFields: skipped})
}

func (h *Handler) DeleteInternship(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	if err := h.engine.DeleteInternship(r.Context(), repID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	updated, err := h.engine.ToggleVisibility(r.Context(), repID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) ReviewPosting(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.engine.ReviewPosting(r.Context(), id, req.Approve)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if req.Approve {
		h.metrics.RecordPostingApproved(r.Context())
	}
	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	studentID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	if err := h.engine.Apply(r.Context(), studentID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordApplicationSubmitted(r.Context())
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	repID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}
	studentID := chi.URLParam(r, "studentID")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.ReviewApplication(r.Context(), repID, id, studentID, req.Approve); err != nil {
		h.handleServiceError(w, err)
		return
	}
	if req.Approve {
		h.metrics.RecordOfferExtended(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	studentID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	if err := h.engine.AcceptOffer(r.Context(), studentID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordOfferAccepted(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	studentID, _ := auth.GetUserID(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid internship ID")
		return
	}

	req, err := h.engine.RequestWithdrawal(r.Context(), studentID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordWithdrawalRequested(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	studentID, _ := auth.GetUserID(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, h.engine.ApplicationsByStudent(r.Context(), studentID))
}

func (h *Handler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.engine.PendingWithdrawals(r.Context()))
}

func (h *Handler) AdjudicateWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.AdjudicateWithdrawal(r.Context(), id, req.Approve); err != nil {
		h.handleServiceError(w, err)
		return
	}
	if req.Approve {
		h.metrics.RecordWithdrawalApproved(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvariantViolation):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
