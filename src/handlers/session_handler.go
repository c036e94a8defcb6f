package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/security"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/utils"
)

type SessionHandler struct {
	vault    services.VaultService
	sessions *security.SessionService
}

func NewSessionHandler(vault services.VaultService, sessions *security.SessionService) *SessionHandler {
	return &SessionHandler{vault: vault, sessions: sessions}
}

type unlockRequest struct {
	UserID     string `json:"userId"`
	Passphrase string `json:"passphrase"`
}

type unlockResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	Incognito bool   `json:"incognito"`
}

// HandleUnlock derives the key from the passphrase and issues a session token.
// Only application/json is accepted so a cross-origin form post cannot reach it.
func (h *SessionHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		utils.SendJSONError(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}
	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Passphrase == "" {
		utils.SendJSONError(w, "userId and passphrase are required", http.StatusBadRequest)
		return
	}

	if err := h.vault.Unlock(r.Context(), req.Passphrase); err != nil {
		logger.L.Warn("Unlock failed", "userID", req.UserID, "error", err)
		sendServiceError(w, r, err)
		return
	}

	token, err := h.sessions.IssueToken(req.UserID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	logger.L.Info("Session opened", "userID", req.UserID)
	utils.WriteJSON(w, http.StatusOK, unlockResponse{Token: token, UserID: req.UserID, Incognito: h.vault.Incognito()})
}

// HandleLock wipes the key. Every session becomes unusable until the next unlock.
func (h *SessionHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.vault.Lock()
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware requires a valid bearer token and an unlocked vault.
func (h *SessionHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		userID, err := h.sessions.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		if !h.vault.IsUnlocked() {
			utils.SendJSONError(w, "Vault is locked", http.StatusLocked)
			return
		}

		ctx := withUserID(r.Context(), userID)
		ctx = logger.WithContext(ctx, logger.L.With("userID", userID))
		next(w, r.WithContext(ctx))
	}
}

// requireUser extracts the user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
	}
	return userID, ok
}
