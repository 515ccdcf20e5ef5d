// Package server exposes a parameter registry over HTTP: JSON endpoints for
// reading and writing values plus an HTML settings panel.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
	"github.com/goliatone/go-pipeparams/pkg/store"
)

// Option configures the server before construction.
type Option func(*Server)

// WithRenderers provides the renderer registry used by the panel endpoint.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithPanelRenderer selects which registered renderer serves GET /panel.
func WithPanelRenderer(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.panelRenderer = name
		}
	}
}

// WithPanelOptions seeds base render options (title, theme) for the panel.
func WithPanelOptions(options render.RenderOptions) Option {
	return func(s *Server) {
		s.panelOptions = options
	}
}

// WithStore persists overrides through the given store after every
// successful write or reset.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger overrides the request error logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server wires registry operations onto an HTTP router.
type Server struct {
	registry      *params.Registry
	renderers     *render.Registry
	panelRenderer string
	panelOptions  render.RenderOptions
	store         store.Store
	logger        *log.Logger
}

// New constructs a server around a loaded registry.
func New(registry *params.Registry, options ...Option) (*Server, error) {
	if registry == nil {
		return nil, errors.New("server: registry is required")
	}
	s := &Server{
		registry:      registry,
		panelRenderer: "html",
		logger:        log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/params", s.handleParamsList).Methods(http.MethodGet)
	r.HandleFunc("/params", s.handleResetAll).Methods(http.MethodDelete)
	r.HandleFunc("/params/{key}", s.handleParamGet).Methods(http.MethodGet)
	r.HandleFunc("/params/{key}", s.handleParamPut).Methods(http.MethodPut)
	r.HandleFunc("/params/{key}", s.handleParamDelete).Methods(http.MethodDelete)
	r.HandleFunc("/groups", s.handleGroupsList).Methods(http.MethodGet)
	r.HandleFunc("/groups/{name}", s.handleGroupGet).Methods(http.MethodGet)
	r.HandleFunc("/panel", s.handlePanel).Methods(http.MethodGet)
	return r
}

// paramPayload is the wire form of one parameter.
type paramPayload struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Widget      string `json:"widget"`
	Value       string `json:"value"`
	Default     string `json:"default"`
	Overridden  bool   `json:"overridden"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
	Rule  string `json:"rule,omitempty"`
}

type valuePayload struct {
	Value any `json:"value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParamsList(w http.ResponseWriter, _ *http.Request) {
	descriptors := s.registry.Descriptors()
	payload := make([]paramPayload, 0, len(descriptors))
	for _, desc := range descriptors {
		p, err := s.payloadFor(desc)
		if err != nil {
			s.internalError(w, err)
			return
		}
		payload = append(payload, p)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleParamGet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	desc, ok := s.registry.Descriptor(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{Error: fmt.Sprintf("unknown parameter %q", key)})
		return
	}
	p, err := s.payloadFor(desc)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleParamPut(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var body valuePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: fmt.Sprintf("decode body: %v", err)})
		return
	}

	if err := s.registry.Set(key, body.Value); err != nil {
		var unknown *params.UnknownParameterError
		var violation *params.ConstraintViolation
		switch {
		case errors.As(err, &unknown):
			writeJSON(w, http.StatusNotFound, errorPayload{Error: unknown.Error()})
		case errors.As(err, &violation):
			writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Error: violation.Error(), Rule: violation.Rule})
		default:
			writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		}
		return
	}

	if err := s.persist(r); err != nil {
		s.internalError(w, err)
		return
	}

	desc, _ := s.registry.Descriptor(key)
	p, err := s.payloadFor(desc)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleParamDelete(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := s.registry.Reset(key); err != nil {
		var unknown *params.UnknownParameterError
		if errors.As(err, &unknown) {
			writeJSON(w, http.StatusNotFound, errorPayload{Error: unknown.Error()})
			return
		}
		s.internalError(w, err)
		return
	}
	if err := s.persist(r); err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.registry.ResetAll()
	if err := s.persist(r); err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroupsList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Groups())
}

func (s *Server) handleGroupGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	descriptors := s.registry.Group(name)
	if len(descriptors) == 0 {
		writeJSON(w, http.StatusNotFound, errorPayload{Error: fmt.Sprintf("unknown group %q", name)})
		return
	}
	payload := make([]paramPayload, 0, len(descriptors))
	for _, desc := range descriptors {
		p, err := s.payloadFor(desc)
		if err != nil {
			s.internalError(w, err)
			return
		}
		payload = append(payload, p)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	if s.renderers == nil {
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "panel rendering not configured"})
		return
	}
	renderer, err := s.renderers.Get(s.panelRenderer)
	if err != nil {
		s.internalError(w, err)
		return
	}

	options := s.panelOptions
	if groups, ok := r.URL.Query()["group"]; ok {
		options.Groups = groups
	}

	out, err := renderer.Render(r.Context(), s.registry, options)
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Printf("server: write panel: %v", err)
	}
}

func (s *Server) payloadFor(desc params.Descriptor) (paramPayload, error) {
	value, err := s.registry.Get(desc.Key)
	if err != nil {
		return paramPayload{}, fmt.Errorf("server: resolve %q: %w", desc.Key, err)
	}
	return paramPayload{
		Key:         desc.Key,
		Label:       desc.Label(),
		Group:       desc.Group,
		Widget:      string(desc.Widget),
		Value:       value.String(),
		Default:     desc.Default.String(),
		Overridden:  s.registry.HasOverride(desc.Key),
		Unit:        desc.Unit,
		Description: desc.Description,
	}, nil
}

func (s *Server) persist(r *http.Request) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(r.Context(), s.registry); err != nil {
		return fmt.Errorf("server: persist overrides: %w", err)
	}
	return nil
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Printf("server: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorPayload{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
