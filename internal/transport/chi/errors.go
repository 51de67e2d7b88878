package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain"
	logpkg "github.com/kailas-cloud/recall/internal/logger"
)

// Error kinds carried in the "error" field of error responses.
const (
	KindCollectionNotFound = "CollectionNotFoundError"
	KindCollectionExists   = "CollectionExistsError"
	KindUnsupportedModel   = "UnsupportedModelError"
	KindSchemaValidation   = "SchemaValidationError"
	KindEmbedding          = "EmbeddingError"
	KindInvalidFilter      = "InvalidFilterOperation"
	KindInvalidRequest     = "InvalidRequest"
	KindVectorDB           = "VectorDBError"
	KindUnauthorized       = "Unauthorized"
	KindInternal           = "InternalError"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is checked in order; the first match writes the response.
var defaultErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrCollectionNotFound, http.StatusNotFound, KindCollectionNotFound),
	sentinelHandler(domain.ErrCollectionExists, http.StatusConflict, KindCollectionExists),
	unsupportedModelHandler,
	schemaValidationHandler,
	embeddingHandler,
	sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, KindInvalidFilter),
	sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, KindInvalidRequest),
	vectorDBHandler,
}

func sentinelHandler(sentinel error, status int, kind string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, kind, err.Error(), nil)
		return true
	}
}

func unsupportedModelHandler(w http.ResponseWriter, err error) bool {
	var ume *domain.UnsupportedModelError
	if errors.As(err, &ume) {
		writeError(w, http.StatusBadRequest, KindUnsupportedModel, ume.Error(), map[string]any{
			"model_name":       ume.Model,
			"supported_models": ume.Supported,
		})
		return true
	}
	if errors.Is(err, domain.ErrUnsupportedModel) {
		writeError(w, http.StatusBadRequest, KindUnsupportedModel, err.Error(), nil)
		return true
	}
	return false
}

func schemaValidationHandler(w http.ResponseWriter, err error) bool {
	var sve *domain.SchemaValidationError
	if !errors.As(err, &sve) {
		return false
	}
	violations := make([]map[string]string, len(sve.Violations))
	for i, v := range sve.Violations {
		violations[i] = map[string]string{"field": v.Field, "reason": v.Reason}
	}
	writeError(w, http.StatusUnprocessableEntity, KindSchemaValidation, sve.Error(), map[string]any{
		"doc_id":     sve.DocID,
		"violations": violations,
	})
	return true
}

func embeddingHandler(w http.ResponseWriter, err error) bool {
	var ee *domain.EmbeddingError
	if errors.As(err, &ee) {
		writeError(w, http.StatusUnprocessableEntity, KindEmbedding, ee.Error(), map[string]any{
			"model_name": ee.Model,
		})
		return true
	}
	if errors.Is(err, domain.ErrEmbedding) {
		writeError(w, http.StatusUnprocessableEntity, KindEmbedding, err.Error(), nil)
		return true
	}
	return false
}

func vectorDBHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrVectorDB) {
		return false
	}
	details := map[string]any{}
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		details["operation"] = dbErr.Op
	}
	writeError(w, http.StatusBadRequest, KindVectorDB, "vector database request failed", details)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logpkg.FromContext(r.Context(), s.logger).Error("Unhandled error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, KindInternal, "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	writeJSON(w, status, ErrorResponse{Error: kind, Message: message, Details: details})
}
