package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/psychology"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/utils"
)

type InsightHandler struct {
	insights services.InsightService
}

func NewInsightHandler(service services.InsightService) *InsightHandler {
	return &InsightHandler{insights: service}
}

// writeWithETag answers 304 when the client already holds the same payload.
func writeWithETag(w http.ResponseWriter, r *http.Request, userID string, data interface{}) {
	currentETag, etagErr := utils.GenerateETag(data)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag", "userID", userID, "path", r.URL.Path, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Debug("ETag match", "userID", userID, "path", r.URL.Path, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, data)
}

// HandleGetInsights returns ranked insights. stored=true serves the last persisted set.
func (h *InsightHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stored, _ := strconv.ParseBool(r.URL.Query().Get("stored"))

	var (
		insights []models.PersonalizedInsight
		err      error
	)
	if stored {
		insights, err = h.insights.StoredInsights(r.Context(), userID)
	} else {
		insights, err = h.insights.GenerateInsights(r.Context(), userID)
	}
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if insights == nil {
		insights = []models.PersonalizedInsight{}
	}
	writeWithETag(w, r, userID, insights)
}

func (h *InsightHandler) HandleGetBiases(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	biases, err := h.insights.DetectBiases(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if biases == nil {
		biases = []models.BiasDetectionResult{}
	}
	writeWithETag(w, r, userID, biases)
}

// HandleGetBiasCatalog serves the static catalog. It needs no key.
func (h *InsightHandler) HandleGetBiasCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, psychology.Biases())
}

func (h *InsightHandler) HandleGetMicroInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("context")
	if raw == "" {
		raw = string(models.ContextDashboard)
	}
	displayContext, valid := models.ParseDisplayContext(raw)
	if !valid {
		utils.SendJSONError(w, fmt.Sprintf("unknown display context %q", raw), http.StatusBadRequest)
		return
	}
	micro, err := h.insights.MicroInsights(r.Context(), userID, displayContext)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if micro == nil {
		micro = []models.MicroInsight{}
	}
	utils.WriteJSON(w, http.StatusOK, micro)
}
