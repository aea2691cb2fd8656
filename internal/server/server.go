// Package server implements the admission-controlled HTTP front end (C7,
// C8): the buffered-channel semaphore guarding handler entry, and the
// gorilla/mux surface exposing /load_descriptor, /validate, and the
// ambient /healthz and /metrics endpoints.
package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/dataquality/jsonvalidator/internal/metrics"
	"github.com/dataquality/jsonvalidator/internal/registry"
	"github.com/dataquality/jsonvalidator/internal/validation"
)

// Config controls the handler set's runtime behaviour.
type Config struct {
	MaxConcurrentRequests int
	RequestTimeout        time.Duration
}

// DefaultConfig mirrors spec.md §4.6's suggested permit range.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentRequests: 200,
		RequestTimeout:        30 * time.Second,
	}
}

// Server bundles the descriptor store, admission gate, metrics recorder,
// and validation orchestrator behind an http.Handler.
type Server struct {
	store        *registry.Store
	cache        *registry.PoolCache
	gate         *AdmissionGate
	orchestrator *validation.Orchestrator
	metrics      metrics.Recorder
	log          zerolog.Logger
	router       *mux.Router
}

// New wires a Server per spec.md §4.6/§6. recorder may be metrics.NoopRecorder{}.
func New(cfg Config, recorder metrics.Recorder, log zerolog.Logger) *Server {
	store := registry.NewStore()
	cache := registry.NewPoolCache()

	s := &Server{
		store:   store,
		cache:   cache,
		gate:    NewAdmissionGate(cfg.MaxConcurrentRequests),
		metrics: recorder,
		log:     log,
	}
	s.orchestrator = validation.New(storePoolSource{store: store, cache: cache}, recorder)

	router := mux.NewRouter()
	router.Use(s.recoveryMiddleware)
	router.HandleFunc("/load_descriptor", s.handleLoadDescriptor).Methods(http.MethodPost)
	router.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	s.router = router

	return s
}

// ServeHTTP satisfies http.Handler, so Server can be passed directly to
// http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// storePoolSource resolves the live descriptor pool for the orchestrator,
// rebuilding from the store's current snapshot only when the generation
// has advanced since the last build (via PoolCache).
type storePoolSource struct {
	store *registry.Store
	cache *registry.PoolCache
}

func (p storePoolSource) Pool() (*protoregistry.Files, error) {
	return p.cache.GetOrBuild(p.store.Snapshot())
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic recovered")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type loadDescriptorRequest struct {
	FileName    string `json:"file_name"`
	FileContent string `json:"file_content"`
}

func (s *Server) handleLoadDescriptor(w http.ResponseWriter, r *http.Request) {
	release, err := s.gate.Acquire(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "server is at capacity, try again later")
		return
	}
	defer release()

	var req loadDescriptorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode request body: "+err.Error())
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode file content: "+err.Error())
		return
	}

	if err := s.store.Upsert(req.FileName, raw); err != nil {
		writeError(w, statusFor(err, true), "failed to decode file content: "+err.Error())
		return
	}
	s.cache.Invalidate()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("descriptor loaded"))
}

type validateRequest struct {
	Protobuf        *string         `json:"protobuf"`
	JSON            json.RawMessage `json:"json"`
	JSONEscaped     *bool           `json:"json_escaped"`
	FieldCheck      *bool           `json:"field_check"`
	FieldName       *string         `json:"field_name"`
	FieldValueCheck json.RawMessage `json:"field_value_check"`
}

type validateResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	release, err := s.gate.Acquire(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "server is at capacity, try again later")
		return
	}
	defer release()

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode request body: "+err.Error())
		return
	}

	jsonEscaped := true
	if req.JSONEscaped != nil {
		jsonEscaped = *req.JSONEscaped
	}

	fieldCheck := false
	if req.FieldCheck != nil {
		fieldCheck = *req.FieldCheck
	}

	messageName := ""
	if req.Protobuf != nil {
		messageName = *req.Protobuf
	}

	fieldName := ""
	if req.FieldName != nil {
		fieldName = *req.FieldName
	}

	vreq := validation.Request{
		MessageName:     messageName,
		JSON:            req.JSON,
		JSONEscaped:     jsonEscaped,
		FieldCheck:      fieldCheck,
		FieldName:       fieldName,
		FieldValueCheck: req.FieldValueCheck,
		HaveFieldValue:  req.FieldValueCheck != nil,
	}

	if err := s.orchestrator.Validate(vreq); err != nil {
		writeError(w, statusFor(err, false), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Message: "Valid JSON"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("metrics are exported via the configured OpenTelemetry reader\n"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
