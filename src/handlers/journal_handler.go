package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/utils"
)

type JournalHandler struct {
	journal services.JournalService
}

func NewJournalHandler(service services.JournalService) *JournalHandler {
	return &JournalHandler{journal: service}
}

func (h *JournalHandler) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snaps, err := h.journal.ListSnapshots(r.Context(), userID, filter)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []models.FinancialSnapshot{}
	}
	utils.WriteJSON(w, http.StatusOK, snaps)
}

func (h *JournalHandler) HandleAddSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var snap models.FinancialSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		utils.SendJSONError(w, "Invalid snapshot body", http.StatusBadRequest)
		return
	}
	saved, err := h.journal.AddSnapshot(r.Context(), userID, snap)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, saved)
}

func (h *JournalHandler) HandleListEmotions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries, err := h.journal.ListEmotions(r.Context(), userID, filter)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.EmotionalEntry{}
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) HandleAddEmotion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var entry models.EmotionalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.SendJSONError(w, "Invalid emotion body", http.StatusBadRequest)
		return
	}
	saved, err := h.journal.AddEmotion(r.Context(), userID, entry)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, saved)
}
