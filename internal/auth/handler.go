package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SevinYeung429/SC2002/internal/directory"
	"github.com/SevinYeung429/SC2002/internal/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	users    *directory.Service
	tokens   *TokenManager
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(users *directory.Service, tokens *TokenManager, logger *slog.Logger) *Handler {
	return &Handler{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/register", h.Register)
	router.Post("/auth/logout", h.Logout)
}

type LoginRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string             `json:"accessToken"`
	User        *directory.Account `json:"user"`
}

// Login authenticates any user kind. Representatives whose account is
// still pending staff approval are refused.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.users.Authenticate(r.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrNotApproved) {
			httputil.RespondWithError(w, http.StatusForbidden, "account pending approval")
			return
		}
		httputil.RespondWithError(w, http.StatusUnauthorized, "invalid id or password")
		return
	}

	token, err := h.tokens.Generate(account)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged in", "id", account.ID, "role", account.Role)
	SetAuthCookie(w, token)
	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{AccessToken: token, User: account})
}

type RegisterRequest struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	CompanyName string `json:"companyName" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Position    string `json:"position" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// Register files a company representative account request. The account
// stays locked until a staff member approves it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.users.RegisterRepresentative(r.Context(), directory.RegisterRepresentativeInput{
		ID:          req.ID,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Department:  req.Department,
		Position:    req.Position,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, directory.ErrAlreadyExists) {
			httputil.RespondWithError(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("registration failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("representative registered, pending approval", "id", rep.ID)
	httputil.RespondWithJSON(w, http.StatusCreated, rep)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
