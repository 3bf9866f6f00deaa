// Package server exposes the demo's HTTP surface: JSON chat and demo
// endpoints, a server-sent-event stream and a liveness probe.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/agentdeck/agentdeck"
	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/logging"
)

// Options configure the Server.
type Options struct {
	Logger logging.Logger
}

// Server wires HTTP handlers to the dispatch pipeline.
type Server struct {
	deck   *agentdeck.Deck
	logger logging.Logger
	mux    *http.ServeMux
}

// New constructs a Server around the given Deck.
func New(deck *agentdeck.Deck, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{deck: deck, logger: opts.Logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/tool_demo", s.handleToolDemo)
	s.mux.HandleFunc("POST /api/memory_demo", s.handleMemoryDemo)
	s.mux.HandleFunc("POST /api/multi_agent_demo", s.handleMultiAgentDemo)
	s.mux.HandleFunc("GET /api/stream_demo", s.handleStreamDemo)
	s.mux.HandleFunc("GET /api/framework_info", s.handleFrameworkInfo)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

type chatRequest struct {
	Message string `json:"message"`
}

type taskRequest struct {
	Task string `json:"task"`
}

type memoryEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.deck.Dispatcher().Chat(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, dispatch.ErrEmptyMessage) {
			s.writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		s.logger.Error("server.chat.error", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Chat failed: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"response":  result.Response.Text,
		"agent":     result.Response.Agent,
		"metadata":  result.Response.Metadata,
		"timestamp": timestamp(result.Response.Timestamp),
	})
}

func (s *Server) handleToolDemo(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.deck.Dispatcher().ToolTask(r.Context(), req.Task)
	if err != nil {
		s.logger.Error("server.tool_demo.error", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Tool demo failed: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"response":  result.Response.Text,
		"agent":     result.Response.Agent,
		"metadata":  result.Response.Metadata,
		"timestamp": timestamp(result.Response.Timestamp),
	})
}

func (s *Server) handleMemoryDemo(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.deck.Dispatcher().MemoryChat(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("server.memory_demo.error", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Memory demo failed: "+err.Error())
		return
	}

	entries := make([]memoryEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, memoryEntry{
			Role:      e.Role,
			Content:   e.Content,
			Timestamp: timestamp(e.Timestamp),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"response":             result.Response.Text,
		"memory_entries":       entries,
		"conversation_history": entries,
		"metadata":             result.Response.Metadata,
		"timestamp":            timestamp(result.Response.Timestamp),
	})
}

func (s *Server) handleMultiAgentDemo(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.deck.Dispatcher().Orchestrate(r.Context(), req.Task)
	if err != nil {
		s.logger.Error("server.multi_agent_demo.error", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Multi-agent demo failed: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"response":     result.Response.Text,
		"orchestrator": result.Orchestrator,
		"note":         result.Note,
		"metadata":     result.Response.Metadata,
		"timestamp":    timestamp(result.Response.Timestamp),
	})
}

// handleStreamDemo plays back the assistant's complete response as a
// server-sent event stream of word-group frames terminated by a done frame.
func (s *Server) handleStreamDemo(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx proxy support

	message := r.URL.Query().Get("message")

	for fragment := range s.deck.Dispatcher().Stream(r.Context(), message) {
		if fragment.Done {
			writeSSE(w, map[string]any{"done": true})
			flusher.Flush()
			return
		}

		frame := map[string]any{
			"chunk":     fragment.Chunk,
			"success":   fragment.Err == nil,
			"error":     nil,
			"timestamp": timestamp(time.Now()),
		}
		if fragment.Err != nil {
			frame["chunk"] = ""
			frame["error"] = fragment.Err.Error()
		}
		writeSSE(w, frame)
		flusher.Flush()
	}
}

func (s *Server) handleFrameworkInfo(w http.ResponseWriter, r *http.Request) {
	// Best effort: report the live inventory when the registry comes up,
	// otherwise fall back to the static descriptor.
	err := s.deck.Init()
	info := s.deck.Describe()
	if err != nil {
		info["error"] = "Could not load real framework info: " + err.Error()
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"timestamp":      timestamp(time.Now()),
		"api_configured": s.deck.APIConfigured(),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("server.write_json.error", "error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"error": msg})
}

func writeSSE(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	w.Write([]byte("data: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
