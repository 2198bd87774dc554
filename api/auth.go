package api

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/internal/tracker"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

type AuthHandler struct {
	svc           *tracker.Service
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(svc *tracker.Service, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type authResponse struct {
	Token string        `json:"token"`
	Owner *models.Owner `json:"owner"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req tracker.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	owner, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, owner, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req tracker.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	owner, err := h.svc.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, owner, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	writeJSON(w, map[string]string{"message": "signed out"}, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, owner *models.Owner, status int) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		string(CtxOwnerID): owner.ID,
		"sub":              owner.Handle,
		"exp":              time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, apperror.Store(err))
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, Owner: owner}, status)
}
