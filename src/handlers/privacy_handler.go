package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/utils"
)

type PrivacyHandler struct {
	vault services.VaultService
}

func NewPrivacyHandler(vault services.VaultService) *PrivacyHandler {
	return &PrivacyHandler{vault: vault}
}

type incognitoRequest struct {
	Enabled *bool `json:"enabled"`
}

type incognitoResponse struct {
	Incognito bool `json:"incognito"`
}

func (h *PrivacyHandler) HandleGetIncognito(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, incognitoResponse{Incognito: h.vault.Incognito()})
}

func (h *PrivacyHandler) HandleSetIncognito(w http.ResponseWriter, r *http.Request) {
	var req incognitoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		utils.SendJSONError(w, "Body must be {\"enabled\": true|false}", http.StatusBadRequest)
		return
	}
	h.vault.SetIncognito(*req.Enabled)
	utils.WriteJSON(w, http.StatusOK, incognitoResponse{Incognito: h.vault.Incognito()})
}

// HandleDeleteData erases the caller's records. scope=all wipes the whole
// installation, salt and key check included.
func (h *PrivacyHandler) HandleDeleteData(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var err error
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "user":
		err = h.vault.EraseUser(r.Context(), userID)
	case "all":
		logger.L.Warn("Installation reset requested", "userID", userID)
		err = h.vault.ResetInstallation(r.Context())
	default:
		utils.SendJSONError(w, "scope must be 'user' or 'all'", http.StatusBadRequest)
		return
	}
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
