package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mbecker/postal/internal/batch"
	"github.com/mbecker/postal/internal/middleware"
	"github.com/mbecker/postal/internal/validation"
)

// ValidateHandler dispatches inbound validation requests to either the
// single-address path or the batch driver, based on the type field.
type ValidateHandler struct {
	validator validation.Validator
	recorder  validation.Recorder
	batch     *batch.Driver
	logger    *slog.Logger
}

// NewValidateHandler creates a new validation handler.
func NewValidateHandler(v validation.Validator, r validation.Recorder, b *batch.Driver, logger *slog.Logger) *ValidateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateHandler{
		validator: v,
		recorder:  r,
		batch:     b,
		logger:    logger,
	}
}

// validateRequest is the inbound request body. Either a csv batch
// reference (type, bucket_name, file_key) or a single inline address.
type validateRequest struct {
	Type       string              `json:"type"`
	BucketName string              `json:"bucket_name"`
	FileKey    string              `json:"file_key"`
	Address    *validation.Address `json:"address"`
}

// Validate handles POST /validate.
//
// Response codes:
// - 200 OK: the ValidationOutcome (standardized address or {"error": ...}),
//   or a JSON array of outcomes for a batch request
// - 400 Bad Request: malformed body or missing required fields
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Type == "csv" {
		h.processBatch(w, r, req)
		return
	}

	if req.Address == nil {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if err := req.Address.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := h.validator.Validate(r.Context(), *req.Address)

	// The response is already decided; a store fault must not mask it.
	if err := h.recorder.Record(r.Context(), *req.Address, outcome); err != nil {
		logger.Error("failed to record validation result",
			"street", req.Address.StreetAddress,
			"error", err,
		)
	}

	if !outcome.Valid {
		logger.Info("validation failed", "street", req.Address.StreetAddress, "reason", outcome.Reason)
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *ValidateHandler) processBatch(w http.ResponseWriter, r *http.Request, req validateRequest) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	if req.BucketName == "" || req.FileKey == "" {
		writeError(w, http.StatusBadRequest, "bucket_name and file_key are required for csv requests")
		return
	}

	outcomes, err := h.batch.Process(r.Context(), req.BucketName, req.FileKey)
	if err != nil {
		logger.Error("batch processing failed", "bucket", req.BucketName, "key", req.FileKey, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if outcomes == nil {
		outcomes = []validation.Outcome{}
	}
	writeJSON(w, http.StatusOK, outcomes)
}

// Health handles GET /healthz.
func (h *ValidateHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
