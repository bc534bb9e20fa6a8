// Package router exposes the node registry over HTTP.
package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/registrar/internal/gzippedhttp"
	"github.com/patric-chuzhbe/registrar/internal/logger"
	"github.com/patric-chuzhbe/registrar/internal/models"
	"github.com/patric-chuzhbe/registrar/internal/registry"
	"github.com/patric-chuzhbe/registrar/internal/tracing"
)

type nodesKeeper interface {
	List(userKey string) []registry.NodeEntry
	Upsert(userKey, nodeID, url string)
	Delete(userKey, nodeID string)
}

type statsProvider interface {
	Users() []string
	Stats() registry.Stats
}

type storage interface {
	nodesKeeper
	statsProvider
}

type trustedSubnetGuard interface {
	TrustedOnly(h http.Handler) http.Handler
}

// maxRegistrationBodySize bounds the decoded registration payload.
const maxRegistrationBodySize = 64 << 10

var registrationURLSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
}

// Router holds the handlers of the registrar HTTP API.
type Router struct {
	db        storage
	guard     trustedSubnetGuard
	validator *validator.Validate
}

// New builds the chi mux with every route and middleware of the service.
func New(db storage, guard trustedSubnetGuard) *chi.Mux {
	myRouter := &Router{
		db:        db,
		guard:     guard,
		validator: validator.New(),
	}
	// RegisterValidation fails only for an empty tag.
	_ = myRouter.validator.RegisterValidation("nodeurl", validateNodeURL)

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		tracing.Middleware,
		gzippedhttp.Decompress,
		gzippedhttp.Compress,
	)

	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/registrations`, func(r chi.Router) {
		r.Get(`/{userName}`, myRouter.GetRegistrations)
		r.Post(`/{userName}`, myRouter.PostRegistrations)
		r.Delete(`/{userName}/{nodeID}`, myRouter.DeleteRegistrations)
	})

	router.With(guard.TrustedOnly).Route(`/api/internal`, func(r chi.Router) {
		r.Get(`/stats`, myRouter.GetApiinternalstats)
		r.Get(`/users`, myRouter.GetApiinternalusers)
	})

	return router
}

// validateNodeURL accepts absolute http, https and ftp URLs with a host.
func validateNodeURL(fieldLevel validator.FieldLevel) bool {
	parsed, err := url.Parse(fieldLevel.Field().String())
	return err == nil && registrationURLSchemes[parsed.Scheme] && parsed.Host != ""
}

// pathParam returns the decoded value of a route parameter. chi matches on
// the escaped path whenever one is present, so such values arrive escaped.
func pathParam(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if request.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

// GetPing answers 200 while the process is serving.
func (myRouter *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	response.WriteHeader(http.StatusOK)
}

// GetRegistrations lists the nodes of a user. An unknown user is answered
// with 404 and an empty array.
func (myRouter *Router) GetRegistrations(response http.ResponseWriter, request *http.Request) {
	userName, err := pathParam(request, "userName")
	if err != nil {
		http.Error(response, "malformed user name", http.StatusBadRequest)
		return
	}
	tracing.Annotate(request.Context(), userName, "")

	nodes := myRouter.db.List(userName)

	result := make(models.UserRegistrations, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, models.UserRegistration{NodeID: node.NodeID, URL: node.URL})
	}

	status := http.StatusOK
	if len(result) == 0 {
		status = http.StatusNotFound
	}

	writeJSON(response, status, result)
}

// PostRegistrations registers a node for a user or updates its URL.
func (myRouter *Router) PostRegistrations(response http.ResponseWriter, request *http.Request) {
	userName, err := pathParam(request, "userName")
	if err != nil {
		http.Error(response, "malformed user name", http.StatusBadRequest)
		return
	}

	var registration models.UserRegistration
	body := http.MaxBytesReader(response, request.Body, maxRegistrationBodySize)
	if err := json.NewDecoder(body).Decode(&registration); err != nil {
		logger.Log.Debugln("Error calling the `json.NewDecoder().Decode()`:", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(response, "registration payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(response, "malformed registration payload", http.StatusBadRequest)
		return
	}

	if err := myRouter.validator.Struct(registration); err != nil {
		logger.Log.Debugln("Error calling the `myRouter.validator.Struct()`:", zap.Error(err))
		http.Error(response, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	tracing.Annotate(request.Context(), userName, registration.NodeID)
	myRouter.db.Upsert(userName, registration.NodeID, registration.URL)
	logger.Log.Debugw("node registered", "user", userName, "nodeId", registration.NodeID, "url", registration.URL)

	response.WriteHeader(http.StatusOK)
}

// DeleteRegistrations removes a node of a user. Missing users and nodes
// are acknowledged the same way.
func (myRouter *Router) DeleteRegistrations(response http.ResponseWriter, request *http.Request) {
	userName, err := pathParam(request, "userName")
	if err != nil {
		http.Error(response, "malformed user name", http.StatusBadRequest)
		return
	}
	nodeID, err := pathParam(request, "nodeID")
	if err != nil {
		http.Error(response, "malformed node id", http.StatusBadRequest)
		return
	}
	tracing.Annotate(request.Context(), userName, nodeID)

	myRouter.db.Delete(userName, nodeID)
	logger.Log.Debugw("node unregistered", "user", userName, "nodeId", nodeID)

	response.WriteHeader(http.StatusOK)
}

// GetApiinternalstats reports how many users and nodes are registered.
func (myRouter *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats := myRouter.db.Stats()

	writeJSON(response, http.StatusOK, models.InternalStatsResponse{
		Users: stats.Users,
		Nodes: stats.Nodes,
	})
}

// GetApiinternalusers lists every user that owns at least one node.
func (myRouter *Router) GetApiinternalusers(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.UsersResponse(myRouter.db.Users()))
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Debugln("Error calling the `json.Marshal()`:", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if _, err := response.Write(body); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`:", zap.Error(err))
	}
}
