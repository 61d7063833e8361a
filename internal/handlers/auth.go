package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vaughan-dsouza/staffdir/internal/middleware"
	"github.com/vaughan-dsouza/staffdir/internal/models"
	"github.com/vaughan-dsouza/staffdir/internal/services"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

type AuthHandler struct {
	svc *services.AuthService
	log *slog.Logger
}

func NewAuthHandler(svc *services.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// ----------- Request/Response DTOs -------------

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// -------------- REGISTER ----------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	utils.JSON(w, http.StatusCreated, authResp{Token: token, User: user})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, authResp{Token: token, User: user})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Please authenticate")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
