package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	consensusservice "classconsensus/contexts/classroom/consensus-service"
	consensuserrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	consensushttp "classconsensus/contexts/classroom/consensus-service/transport/http"

	_ "classconsensus/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

const callerHeader = "X-Caller-Address"

type Server struct {
	mux       *http.ServeMux
	server    *http.Server
	logger    *slog.Logger
	addr      string
	consensus consensusservice.Module
}

func New(consensus consensusservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		consensus: consensus,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed mux for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/students", s.handleRegisterStudent)
	s.mux.HandleFunc("GET /v1/students", s.handleListStudents)
	s.mux.HandleFunc("POST /v1/tas", s.handleRegisterTA)
	s.mux.HandleFunc("GET /v1/identities/{address}", s.handleGetUserRole)
	s.mux.HandleFunc("GET /v1/roster", s.handleGetRoster)

	s.mux.HandleFunc("POST /v1/presentations", s.handleCreatePresentation)
	s.mux.HandleFunc("GET /v1/presentations", s.handleListPresentationIDs)
	s.mux.HandleFunc("GET /v1/presentations/{id}", s.handleGetPresentation)
	s.mux.HandleFunc("POST /v1/presentations/{id}/votes/{voter}", s.handleVote)
	s.mux.HandleFunc("POST /v1/presentations/{id}/finalize", s.handleFinalize)
	s.mux.HandleFunc("POST /v1/presentations/{id}/override", s.handleOverride)
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req consensushttp.RegisterStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.consensus.Handler.RegisterStudentHandler(r.Context(), caller, req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRegisterTA(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req consensushttp.RegisterTARequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.consensus.Handler.RegisterTAHandler(r.Context(), caller, req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetUserRole(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.GetUserRoleHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.GetRosterHandler(r.Context())
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.ListStudentsHandler(r.Context())
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePresentation(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req consensushttp.CreatePresentationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.consensus.Handler.CreatePresentationHandler(r.Context(), caller, req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPresentationIDs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.ListPresentationIDsHandler(r.Context())
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPresentation(w http.ResponseWriter, r *http.Request) {
	id, ok := presentationID(w, r)
	if !ok {
		return
	}
	resp, err := s.consensus.Handler.GetPresentationHandler(r.Context(), id)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := presentationID(w, r)
	if !ok {
		return
	}
	var req consensushttp.VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.consensus.Handler.VoteHandler(r.Context(), caller, r.PathValue("voter"), id, req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := presentationID(w, r)
	if !ok {
		return
	}
	resp, err := s.consensus.Handler.FinalizeHandler(r.Context(), caller, id)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := presentationID(w, r)
	if !ok {
		return
	}
	var req consensushttp.VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.consensus.Handler.OverrideHandler(r.Context(), caller, id, req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeConsensusError(w, http.StatusUnauthorized, "missing_caller", callerHeader+" header is required")
		return "", false
	}
	return caller, true
}

func presentationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeConsensusError(w, http.StatusBadRequest, "invalid_id", "presentation id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeConsensusError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeConsensusDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, consensuserrors.ErrInvalidSecret):
		writeConsensusError(w, http.StatusForbidden, "invalid_secret", err.Error())
	case errors.Is(err, consensuserrors.ErrUnauthorized):
		writeConsensusError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, consensuserrors.ErrAlreadyRegistered),
		errors.Is(err, consensuserrors.ErrProfessorImmutable):
		writeConsensusError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, consensuserrors.ErrSlotsFull):
		writeConsensusError(w, http.StatusConflict, "slots_full", err.Error())
	case errors.Is(err, consensuserrors.ErrNotFound):
		writeConsensusError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, consensuserrors.ErrInvalidCategory):
		writeConsensusError(w, http.StatusUnprocessableEntity, "invalid_category", err.Error())
	case errors.Is(err, consensuserrors.ErrInvalidState):
		writeConsensusError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, consensuserrors.ErrAlreadyVoted):
		writeConsensusError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, consensuserrors.ErrInvalidInput):
		writeConsensusError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, consensuserrors.ErrConflict):
		writeConsensusError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeConsensusError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeConsensusError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, consensushttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
