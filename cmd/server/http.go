package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"solana-risk-engine/internal/actions"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/storage"
)

const (
	maxParamsBytes = 1 << 20
	maxListLimit   = 1000
)

// Engine is the subset of *actions.Engine the transport needs.
type Engine interface {
	Invoke(ctx context.Context, action string, params json.RawMessage) (string, error)
	Status(ctx context.Context) actions.StatusReport
	Actions() []string
}

// Server exposes an Engine over HTTP and WebSocket, and the audit log it writes.
type Server struct {
	engine   Engine
	store    storage.InvocationStore
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates the transport. A nil store disables the invocation
// endpoints; a nil logger disables logging.
func NewServer(engine Engine, store storage.InvocationStore, log *zerolog.Logger) *Server {
	l := zerolog.Nop()
	if log != nil {
		l = *log
	}
	return &Server{
		engine: engine,
		store:  store,
		log:    l.With().Str("component", "http").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("GET /v1/actions", s.handleList)
	mux.HandleFunc("POST /v1/actions/{action}", s.handleAction)
	mux.HandleFunc("GET /v1/ws", s.handleWS)
	mux.HandleFunc("GET /v1/invocations", s.handleListInvocations)
	mux.HandleFunc("GET /v1/invocations/{id}", s.handleGetInvocation)

	return mux
}

type statusResponse struct {
	Status string `json:"status"`
	actions.StatusReport
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", StatusReport: s.engine.Status(r.Context())})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"actions": s.engine.Actions()})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParamsBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large", Kind: "invalid_input"})
		return
	}

	result, err := s.engine.Invoke(r.Context(), action, body)
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			s.log.Error().Err(err).Str("action", action).Msg("action failed")
		}
		writeJSON(w, statusFor(err), newErrorBody(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, result)
}

// invocationView is the wire form of an audit record.
type invocationView struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	Params     json.RawMessage `json:"params,omitempty"`
	ParamsHash string          `json:"paramsHash"`
	Status     string          `json:"status"`
	ErrorKind  string          `json:"errorKind,omitempty"`
	DurationMs int64           `json:"durationMs"`
	Timestamp  int64           `json:"timestamp"`
}

func toView(inv *domain.Invocation) invocationView {
	return invocationView{
		ID:         inv.ID,
		Action:     inv.Action,
		Params:     json.RawMessage(inv.Params),
		ParamsHash: inv.ParamsHash,
		Status:     string(inv.Status),
		ErrorKind:  inv.ErrorKind,
		DurationMs: inv.DurationMs,
		Timestamp:  inv.Timestamp,
	}
}

func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "invocation store not configured", Kind: "configuration_missing"})
		return
	}

	limit := storage.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be between 1 and 1000", Kind: "invalid_input"})
			return
		}
		limit = n
	}

	records, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list invocations")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "list invocations failed", Kind: "storage"})
		return
	}

	views := make([]invocationView, 0, len(records))
	for _, inv := range records {
		views = append(views, toView(inv))
	}
	writeJSON(w, http.StatusOK, map[string][]invocationView{"invocations": views})
}

func (s *Server) handleGetInvocation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "invocation store not configured", Kind: "configuration_missing"})
		return
	}

	inv, err := s.store.GetByID(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "invocation not found", Kind: "not_found"})
	case err != nil:
		s.log.Error().Err(err).Msg("failed to get invocation")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "get invocation failed", Kind: "storage"})
	default:
		writeJSON(w, http.StatusOK, toView(inv))
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newErrorBody(err error) errorBody {
	return errorBody{Error: err.Error(), Kind: domain.Kind(err)}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfigurationMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// wsRequest is one inbound frame. ID is echoed back verbatim.
type wsRequest struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

type wsResponse struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *errorBody      `json:"error,omitempty"`
}

// handleWS serves action frames over one connection. Frames are handled in
// order; a malformed frame gets an error reply and the connection stays open.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	observability.AddWSConnections(1)
	defer observability.AddWSConnections(-1)

	conn.SetReadLimit(maxParamsBytes)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}

		resp := s.handleFrame(ctx, data)
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, data []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return wsResponse{Error: &errorBody{Error: "malformed frame: " + err.Error(), Kind: "invalid_input"}}
	}

	result, err := s.engine.Invoke(ctx, req.Action, req.Params)
	if err != nil {
		body := newErrorBody(err)
		return wsResponse{ID: req.ID, Error: &body}
	}
	return wsResponse{ID: req.ID, Result: json.RawMessage(result)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
