package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/utils"
)

var allowedImportTypes = []string{"text/csv", "text/plain", "application/vnd.ms-excel"}

type UploadHandler struct {
	transactions services.TransactionService
	maxBytes     int64
}

func NewUploadHandler(service services.TransactionService, maxBytes int64) *UploadHandler {
	return &UploadHandler{transactions: service, maxBytes: maxBytes}
}

// readImportBody returns the CSV bytes from a multipart "file" field or the raw body.
func (h *UploadHandler) readImportBody(r *http.Request) ([]byte, string, error) {
	var src io.Reader = r.Body
	name := "body"
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return nil, "", fmt.Errorf("failed to parse form or request too large (max %s)", humanize.IBytes(uint64(h.maxBytes)))
		}
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("failed to retrieve file from request, ensure 'file' field is used")
		}
		defer file.Close()
		if fileHeader.Size > h.maxBytes {
			return nil, "", fmt.Errorf("file too large (%s), max %s", humanize.IBytes(uint64(fileHeader.Size)), humanize.IBytes(uint64(h.maxBytes)))
		}
		src = file
		name = fileHeader.Filename
	}

	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %v", err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, "", fmt.Errorf("upload too large, max %s", humanize.IBytes(uint64(h.maxBytes)))
	}
	return data, name, nil
}

// validateImportContent sniffs the payload so binaries never reach the CSV parser.
func validateImportContent(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	detected := mimetype.Detect(data)
	for _, allowed := range allowedImportTypes {
		if detected.Is(allowed) {
			return detected.String(), nil
		}
	}
	return detected.String(), fmt.Errorf("invalid file content type %q, expected a CSV file", detected.String())
}

// HandleImport imports a bank CSV. Row errors come back in the result, not as a failure.
func (h *UploadHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	data, name, err := h.readImportBody(r)
	if err != nil {
		logger.L.Warn("Failed to read import", "userID", userID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	detectedType, err := validateImportContent(data)
	if err != nil {
		logger.L.Warn("Import content validation failed", "userID", userID, "filename", name, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Processing import request", "userID", userID, "filename", name, "detectedType", detectedType, "size", humanize.IBytes(uint64(len(data))))

	result, err := h.transactions.ImportCSV(r.Context(), userID, bytes.NewReader(data), r.URL.Query().Get("format"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
