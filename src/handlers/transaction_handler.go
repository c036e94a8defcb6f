package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/storage"
	"github.com/username/moneymirror/src/utils"
)

type TransactionHandler struct {
	transactions services.TransactionService
}

func NewTransactionHandler(service services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: service}
}

// parseFilter reads category, kind, from, to, min, max and limit from the query.
func parseFilter(q url.Values) (storage.Filter, error) {
	filter := storage.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Kind:     strings.TrimSpace(q.Get("kind")),
	}
	if v := q.Get("from"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid 'from' date: %w", err)
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid 'to' date: %w", err)
		}
		// A bare day includes the whole day.
		if len(v) <= len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		filter.To = t
	}
	for _, bound := range []struct {
		name string
		dst  **float64
	}{{"min", &filter.MinAmount}, {"max", &filter.MaxAmount}} {
		v := q.Get(bound.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid '%s' amount: %q", bound.name, v)
		}
		*bound.dst = &f
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid 'limit': %q", v)
		}
		filter.Limit = n
	}
	return filter, nil
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	txs, err := h.transactions.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	utils.WriteJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "Invalid transaction body", http.StatusBadRequest)
		return
	}
	saved, err := h.transactions.AddTransaction(r.Context(), userID, tx)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	logger.L.Debug("Transaction added", "userID", userID, "transactionID", saved.ID)
	utils.WriteJSON(w, http.StatusCreated, saved)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "Invalid transaction body", http.StatusBadRequest)
		return
	}
	saved, err := h.transactions.UpdateTransaction(r.Context(), userID, id, tx)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.transactions.DeleteTransaction(r.Context(), userID, r.PathValue("id")); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
