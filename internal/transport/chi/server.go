// Package chi serves the HTTP API over a go-chi router.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/search/filter"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/recall/internal/logger"
	healthuc "github.com/kailas-cloud/recall/internal/usecase/health"
)

// Server holds the HTTP handlers.
type Server struct {
	collections   Collections
	ingest        Ingester
	documents     Browser
	search        Searcher
	tasks         Tasks
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections Collections,
	ingest Ingester,
	documents Browser,
	search Searcher,
	tasks Tasks,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		collections:   collections,
		ingest:        ingest,
		documents:     documents,
		search:        search,
		tasks:         tasks,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers,
	}
}

// CreateCollection handles POST /collections.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields, err := field.FromMap(req.IndexSchema)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error(), nil)
		return
	}

	col, err := s.collections.Create(r.Context(), req.Name,
		req.EmbeddingConfig.Model, req.EmbeddingConfig.Modality, fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CollectionResponse{
		Status:  "created",
		Name:    col.Name(),
		Message: fmt.Sprintf("Collection created with %d-dim vectors", col.VectorDim()),
	})
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	writeJSON(w, http.StatusOK, names)
}

// collectionParam reads {name} and tags the request log with it.
func collectionParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	logpkg.AddFields(r.Context(), zap.String("collection", name))
	return name
}

// taskParam reads {task_id} and tags the request log with it.
func taskParam(r *http.Request) string {
	id := chi.URLParam(r, "task_id")
	logpkg.AddFields(r.Context(), zap.String("task_id", id))
	return id
}

// GetCollection handles GET /collections/{name}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	col, err := s.collections.Get(r.Context(), collectionParam(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionToWire(col))
}

// DeleteCollection handles DELETE /collections/{name}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := collectionParam(r)
	if err := s.collections.Delete(r.Context(), name); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CollectionResponse{
		Status:  "deleted",
		Name:    name,
		Message: "Collection and all data deleted",
	})
}

// SupportedModels handles GET /collections/models/supported.
func (s *Server) SupportedModels(w http.ResponseWriter, _ *http.Request) {
	m := s.collections.Models()
	names := make([]string, 0, len(m.Text)+len(m.Image))
	names = append(names, m.Text...)
	names = append(names, m.Image...)
	writeJSON(w, http.StatusOK, names)
}

// IngestDocuments handles POST /collections/{name}/documents.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	docs, err := documentsFromWire(req.Documents)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.AddFields(r.Context(), zap.Int("documents", len(docs)))
	handle, err := s.ingest.Ingest(r.Context(), collectionParam(r), docs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, IngestResponse{
		TaskID:          handle.TaskID,
		DocumentsQueued: handle.DocumentsQueued,
		Status:          string(handle.Status),
	})
}

// ListDocuments handles GET /collections/{name}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var (
		limit  int
		offset string
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid limit: "+err.Error(), nil)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid offset: "+err.Error(), nil)
		return
	}

	page, err := s.documents.Browse(r.Context(), collectionParam(r), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToWire(page))
}

// Search handles POST /collections/{name}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	cond, err := filter.Parse(body.Filter)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	limit := 0
	if body.Limit != nil {
		limit = *body.Limit
		if limit == 0 {
			writeError(w, http.StatusBadRequest, KindInvalidRequest,
				fmt.Sprintf("limit must be between 1 and %d", request.MaxLimit), nil)
			return
		}
	}
	withPayload := body.WithPayload == nil || *body.WithPayload
	withVectors := body.WithVectors != nil && *body.WithVectors

	req, err := request.New(body.Query, cond, limit, withPayload, withVectors)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}

	page, err := s.search.Search(r.Context(), collectionParam(r), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchPageToWire(page))
}

// TaskStatus handles GET /tasks/{task_id}.
func (s *Server) TaskStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.tasks.Status(r.Context(), taskParam(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToWire(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "Invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}
