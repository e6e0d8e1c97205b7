package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongorest/mongorest/pkg/logger"
	"github.com/mongorest/mongorest/pkg/mongodb"
)

const (
	// ServiceName identifies the service in the root descriptor and logs.
	ServiceName = "mongorest"
	// ServiceVersion is reported by the root descriptor.
	ServiceVersion = "1.0.0"
)

type service struct {
	store Store
	log   *slog.Logger
}

// NewRouter builds the HTTP surface: the nine data-access actions under
// POST /action/{action}, a health probe, and a static service descriptor.
func NewRouter(store Store, log *slog.Logger) chi.Router {
	svc := &service{store: store, log: log}

	r := chi.NewRouter()
	r.Use(svc.recoverer)
	r.Get("/", svc.info)
	r.Get("/health", svc.health)
	r.Post("/action", svc.action)
	r.Post("/action/{action}", svc.action)
	return r
}

// action runs the single-pass request pipeline: decode and validate the
// envelope, ensure the shared client is connected, dispatch by action name,
// and map the handler result to a status code. The check order matches the
// retired hosted API: envelope validation happens even when the action
// segment is missing or unknown.
func (s *service) action(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx := r.Context()
	name := chi.URLParam(r, "action")

	env, err := DecodeEnvelope(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, CodeInvalidRequest, "Request body must be a JSON object")
		return
	}
	if !env.validate() {
		s.respondError(w, http.StatusBadRequest, CodeInvalidRequest, "dataSource, database, and collection are required")
		return
	}

	if !s.store.Connected() {
		if err := s.store.Connect(ctx); err != nil {
			if errors.Is(err, mongodb.ErrMissingURI) {
				s.respondError(w, http.StatusInternalServerError, CodeURIMissing, "MongoDB connection string is not configured")
				return
			}
			s.log.ErrorContext(ctx, "connecting to mongodb", logger.Error(err))
			s.respondError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
			return
		}
	}

	if name == "" {
		s.respondError(w, http.StatusBadRequest, CodeMissingAction, "Action name is required")
		return
	}
	handle, ok := operations[name]
	if !ok {
		s.respondError(w, http.StatusBadRequest, CodeInvalidAction, "Invalid action: "+name)
		return
	}

	res := handle(ctx, s.store, env)

	status := http.StatusOK
	payload := res.Payload
	if res.Err != nil {
		status = http.StatusBadRequest
		payload = bson.M{"error": res.Err.Message, "error_code": res.Err.Code}
	}
	s.respond(w, status, payload)

	s.log.InfoContext(ctx, "action handled",
		logger.Action(name),
		slog.String("database", env.Database),
		slog.String("collection", env.Collection),
		slog.Int("status", status),
		logger.Duration(time.Since(started)),
	)
}

// health reports process liveness and current connection state. It never
// touches the database, so it succeeds whether or not a cluster is
// reachable.
func (s *service) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, bson.M{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"mongoConnected": s.store.Connected(),
	})
}

func (s *service) info(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, bson.M{
		"name":    ServiceName,
		"version": ServiceVersion,
		"endpoints": []string{
			"POST /action/{actionName}",
			"GET /health",
			"GET /",
		},
	})
}

// recoverer converts anything escaping a handler into a generic 500 payload
// so no internal detail reaches the client.
func (s *service) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.ErrorContext(r.Context(), "panic recovered", slog.Any("panic", rec))
				s.respondError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// respond marshals payload as relaxed extended JSON, which renders plain
// values as ordinary JSON and driver-native types (ObjectIDs, dates) the
// way the retired hosted API rendered them.
func (s *service) respond(w http.ResponseWriter, status int, payload any) {
	data, err := bson.MarshalExtJSON(payload, false, false)
	if err != nil {
		s.log.Error("marshaling response", logger.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error","error_code":"` + CodeInternal + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *service) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respond(w, status, bson.M{"error": message, "error_code": code})
}
