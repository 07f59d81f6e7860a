package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/domain"
	dombatch "github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	logpkg "github.com/kailas-cloud/esdata/internal/logger"
	"github.com/kailas-cloud/esdata/internal/transport/api"
	documentuc "github.com/kailas-cloud/esdata/internal/usecase/document"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/esdata/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esdata/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements api.ServerInterface.
type Server struct {
	entities      *entityuc.Service
	documents     *documentuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	entities *entityuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		entities:  entities,
		documents: documents,
		search:    search,
		health:    health,
		logger:    logger,
	}
	// Order matters: search errors wrap ErrPropertyNotFound inside ErrInvalidQuery.
	s.errorHandlers = []errorHandler{
		versionConflictHandler,
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, api.ErrorResponseCodeInvalidQuery),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownEntity, http.StatusNotFound, api.ErrorResponseCodeUnknownEntity),
		sentinelHandler(domain.ErrPropertyNotFound, http.StatusNotFound, api.ErrorResponseCodePropertyNotFound),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, api.ErrorResponseCodeIndexNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, api.ErrorResponseCodeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, api.ErrorResponseCodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidMapping,
			http.StatusInternalServerError, api.ErrorResponseCodeInvalidMapping),
	}
	return s
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// Degraded still serves traffic, so load balancers keep the instance.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListEntities handles GET /entities.
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.entities.List()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]api.Entity, len(entities))
	for i, e := range entities {
		items[i] = entityToAPI(e)
	}
	writeJSON(w, http.StatusOK, api.EntityListResponse{Items: items})
}

// GetEntity handles GET /entities/{entity}.
func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	e, err := s.entities.Get(entity)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entityToAPI(e))
}

// GetMapping handles GET /entities/{entity}/mapping.
func (s *Server) GetMapping(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	def, err := s.entities.Mapping(entity)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MappingResponse{
		Index:    def.Name,
		Settings: def.Settings(),
		Mappings: def.Mappings(),
	})
}

// GetProperty handles GET /entities/{entity}/properties?field_name=.
func (s *Server) GetProperty(
	w http.ResponseWriter,
	r *http.Request,
	entity api.EntityType,
	params api.GetPropertyParams,
) {
	p, err := s.entities.PropertyByFieldName(entity, params.FieldName)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyToAPI(p))
}

// EnsureIndex handles PUT /entities/{entity}/index.
func (s *Server) EnsureIndex(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	res, err := s.entities.Ensure(r.Context(), entity)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ensureResultToAPI(res))
}

// EnsureAllIndices handles PUT /indices.
func (s *Server) EnsureAllIndices(w http.ResponseWriter, r *http.Request) {
	results, err := s.entities.EnsureAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]api.EnsureIndexResponse, len(results))
	for i, res := range results {
		items[i] = ensureResultToAPI(res)
	}
	writeJSON(w, http.StatusOK, api.EnsureAllResponse{Items: items})
}

// CountDocuments handles GET /entities/{entity}/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	n, err := s.documents.Count(r.Context(), entity)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CountResponse{Count: n})
}

// SaveDocument handles PUT /entities/{entity}/documents/{id}.
func (s *Server) SaveDocument(
	w http.ResponseWriter,
	r *http.Request,
	entity api.EntityType,
	id api.DocumentID,
	params api.SaveDocumentParams,
) {
	var src api.DocumentSource
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := domdoc.New(id, src, derefInt64(params.Version))
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	saved, created, err := s.documents.Save(r.Context(), entity, &doc)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location",
			fmt.Sprintf("/entities/%s/documents/%s", url.PathEscape(entity), url.PathEscape(id)))
	}
	writeJSON(w, status, documentToAPI(&saved))
}

// GetDocument handles GET /entities/{entity}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, entity api.EntityType, id api.DocumentID) {
	doc, err := s.documents.Get(r.Context(), entity, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToAPI(&doc))
}

// DeleteDocument handles DELETE /entities/{entity}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request, entity api.EntityType, id api.DocumentID) {
	if err := s.documents.Delete(r.Context(), entity, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkSave handles POST /entities/{entity}/documents/_bulk.
func (s *Server) BulkSave(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	var req api.BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed, "items must not be empty")
		return
	}

	docs := make([]domdoc.Document, 0, len(req.Items))
	for i, item := range req.Items {
		doc, err := domdoc.New(item.ID, item.Content, derefInt64(item.Version))
		if err != nil {
			writeError(w, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed,
				fmt.Sprintf("items[%d]: %s", i, err.Error()))
			return
		}
		docs = append(docs, doc)
	}

	results, err := s.documents.SaveAll(r.Context(), entity, docs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]api.BulkResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToAPI(res)
	}
	failed := dombatch.Failed(results)

	writeJSON(w, http.StatusOK, api.BulkResponse{
		Items:     items,
		Succeeded: len(results) - failed,
		Failed:    failed,
	})
}

// SearchDocuments handles POST /entities/{entity}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request, entity api.EntityType) {
	var req api.SearchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	params, err := searchParamsFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeInvalidQuery, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), entity, params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToAPI(&page))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientSentinels carry messages built from request input, so the full chain is safe to return.
var clientSentinels = []error{
	domain.ErrInvalidQuery,
	domain.ErrInvalidDocument,
	domain.ErrUnknownEntity,
	domain.ErrPropertyNotFound,
	domain.ErrVersionConflict,
}

// serverSentinels are reported by name only.
var serverSentinels = []error{
	domain.ErrIndexNotFound,
	domain.ErrDocumentNotFound,
	domain.ErrAlreadyExists,
	domain.ErrInvalidMapping,
	domain.ErrNotFound,
}

// safeDomainMessage returns an error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range serverSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// versionConflictHandler handles ErrVersionConflict, reporting the rejected version.
func versionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrVersionConflict) {
		return false
	}
	var vce *domain.VersionConflictError
	if errors.As(err, &vce) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":              api.ErrorResponseCodeVersionConflict,
			"message":           msg,
			"attempted_version": vce.AttemptedVersion,
		})
		return true
	}
	writeError(w, http.StatusConflict, api.ErrorResponseCodeVersionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

func batchErrorCode(err error) api.ErrorResponseCode {
	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		return api.ErrorResponseCodeVersionConflict
	case errors.Is(err, domain.ErrInvalidDocument):
		return api.ErrorResponseCodeValidationFailed
	case errors.Is(err, domain.ErrIndexNotFound):
		return api.ErrorResponseCodeIndexNotFound
	default:
		return api.ErrorResponseCodeInternalError
	}
}
