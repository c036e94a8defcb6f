package handlers

import (
	"errors"
	"net/http"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/security"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/storage"
	"github.com/username/moneymirror/src/utils"
)

// StatusForError maps the error taxonomy onto HTTP statuses. Locked and
// unavailable storage block the feature; per-record problems do not.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrWrongPassphrase):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrLocked), errors.Is(err, security.ErrKeyNotInitialized):
		return http.StatusLocked
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDataIntegrity), errors.Is(err, security.ErrDecryption):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// sendServiceError logs and writes err. Internal failures get a generic message.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", status)
		return
	}
	utils.SendJSONError(w, err.Error(), status)
}
