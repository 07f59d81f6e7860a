package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Health check
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Prometheus metrics
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
	// List registered entities
	// (GET /entities)
	ListEntities(w http.ResponseWriter, r *http.Request)
	// Describe an entity
	// (GET /entities/{entity})
	GetEntity(w http.ResponseWriter, r *http.Request, entity EntityType)
	// Index definition derived from an entity
	// (GET /entities/{entity}/mapping)
	GetMapping(w http.ResponseWriter, r *http.Request, entity EntityType)
	// Resolve a property by its stored field name
	// (GET /entities/{entity}/properties)
	GetProperty(w http.ResponseWriter, r *http.Request, entity EntityType, params GetPropertyParams)
	// Create the index or update its mapping
	// (PUT /entities/{entity}/index)
	EnsureIndex(w http.ResponseWriter, r *http.Request, entity EntityType)
	// Ensure the indices of every registered entity
	// (PUT /indices)
	EnsureAllIndices(w http.ResponseWriter, r *http.Request)
	// Count documents
	// (GET /entities/{entity}/count)
	CountDocuments(w http.ResponseWriter, r *http.Request, entity EntityType)
	// Save many documents
	// (POST /entities/{entity}/documents/_bulk)
	BulkSave(w http.ResponseWriter, r *http.Request, entity EntityType)
	// Save a document
	// (PUT /entities/{entity}/documents/{id})
	SaveDocument(w http.ResponseWriter, r *http.Request, entity EntityType, id DocumentID, params SaveDocumentParams)
	// Get a document
	// (GET /entities/{entity}/documents/{id})
	GetDocument(w http.ResponseWriter, r *http.Request, entity EntityType, id DocumentID)
	// Delete a document
	// (DELETE /entities/{entity}/documents/{id})
	DeleteDocument(w http.ResponseWriter, r *http.Request, entity EntityType, id DocumentID)
	// Search documents
	// (POST /entities/{entity}/search)
	SearchDocuments(w http.ResponseWriter, r *http.Request, entity EntityType)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError is passed to the error handler when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper converts chi contexts to typed handler arguments.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	return h
}

func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.HealthCheck)).ServeHTTP(w, r)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Metrics)).ServeHTTP(w, r)
}

// ListEntities operation middleware
func (siw *ServerInterfaceWrapper) ListEntities(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.ListEntities)).ServeHTTP(w, r)
}

// EnsureAllIndices operation middleware
func (siw *ServerInterfaceWrapper) EnsureAllIndices(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.EnsureAllIndices)).ServeHTTP(w, r)
}

// entityOperation binds {entity} and dispatches to fn.
func (siw *ServerInterfaceWrapper) entityOperation(
	fn func(w http.ResponseWriter, r *http.Request, entity EntityType),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entity EntityType
		if !siw.bindPath(w, r, "entity", &entity) {
			return
		}
		siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, entity)
		})).ServeHTTP(w, r)
	}
}

// documentOperation binds {entity} and {id} and dispatches to fn.
func (siw *ServerInterfaceWrapper) documentOperation(
	fn func(w http.ResponseWriter, r *http.Request, entity EntityType, id DocumentID),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entity EntityType
		if !siw.bindPath(w, r, "entity", &entity) {
			return
		}
		var id DocumentID
		if !siw.bindPath(w, r, "id", &id) {
			return
		}
		siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, entity, id)
		})).ServeHTTP(w, r)
	}
}

// GetProperty operation middleware
func (siw *ServerInterfaceWrapper) GetProperty(w http.ResponseWriter, r *http.Request) {
	var entity EntityType
	if !siw.bindPath(w, r, "entity", &entity) {
		return
	}

	var params GetPropertyParams
	err := runtime.BindQueryParameter("form", true, true, "field_name", r.URL.Query(), &params.FieldName)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "field_name", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetProperty(w, r, entity, params)
	})).ServeHTTP(w, r)
}

// SaveDocument operation middleware
func (siw *ServerInterfaceWrapper) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var entity EntityType
	if !siw.bindPath(w, r, "entity", &entity) {
		return
	}
	var id DocumentID
	if !siw.bindPath(w, r, "id", &id) {
		return
	}

	var params SaveDocumentParams
	err := runtime.BindQueryParameter("form", true, false, "version", r.URL.Query(), &params.Version)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "version", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SaveDocument(w, r, entity, id, params)
	})).ServeHTTP(w, r)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}
	base := options.BaseURL

	r.Group(func(r chi.Router) {
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
		r.Get(base+"/entities", wrapper.ListEntities)
		r.Put(base+"/indices", wrapper.EnsureAllIndices)
		r.Get(base+"/entities/{entity}", wrapper.entityOperation(si.GetEntity))
		r.Get(base+"/entities/{entity}/mapping", wrapper.entityOperation(si.GetMapping))
		r.Get(base+"/entities/{entity}/properties", wrapper.GetProperty)
		r.Put(base+"/entities/{entity}/index", wrapper.entityOperation(si.EnsureIndex))
		r.Get(base+"/entities/{entity}/count", wrapper.entityOperation(si.CountDocuments))
		r.Post(base+"/entities/{entity}/search", wrapper.entityOperation(si.SearchDocuments))
		r.Post(base+"/entities/{entity}/documents/_bulk", wrapper.entityOperation(si.BulkSave))
		r.Put(base+"/entities/{entity}/documents/{id}", wrapper.SaveDocument)
		r.Get(base+"/entities/{entity}/documents/{id}", wrapper.documentOperation(si.GetDocument))
		r.Delete(base+"/entities/{entity}/documents/{id}", wrapper.documentOperation(si.DeleteDocument))
	})

	return r
}
