// Package gateway wires together the session registry, the LLM tool-use
// loop, STT/TTS, and the sandboxed tool executor behind a WebSocket and a
// small HTTP surface.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/madenney/walkie-talkie/internal/config"
	"github.com/madenney/walkie-talkie/internal/llm"
	"github.com/madenney/walkie-talkie/internal/session"
	"github.com/madenney/walkie-talkie/internal/stt"
	"github.com/madenney/walkie-talkie/internal/tts"
	"github.com/madenney/walkie-talkie/internal/workspace"
)

// Server holds every collaborator a connection handler needs.
type Server struct {
	config *config.Config
	logger *slog.Logger

	llmClient  *llm.Client
	stt        *stt.Transcriber
	tts        *tts.Synthesizer
	workspaces *workspace.Registry
	sessions   *session.Registry

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New builds a Server from cfg. The LLM client is required; STT and TTS
// are wired only when their config section is enabled and carries an API
// key, matching the original server's "collaborator may be absent"
// posture.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:    cfg.Claude.APIKey,
		Model:     cfg.Claude.Model,
		MaxTokens: cfg.Claude.MaxTokens,
		MaxTurns:  cfg.Claude.MaxConversationTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}

	s := &Server{
		config:     cfg,
		logger:     logger,
		llmClient:  llmClient,
		workspaces: workspace.NewRegistry(cfg.Workspaces),
		sessions:   session.NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	if cfg.STT.Enabled && cfg.STT.APIKey != "" {
		s.stt = stt.New(stt.Config{APIKey: cfg.STT.APIKey, Language: cfg.STT.Language})
	}
	if cfg.TTS.Enabled && cfg.TTS.APIKey != "" {
		s.tts = tts.New(tts.Config{APIKey: cfg.TTS.APIKey, Model: cfg.TTS.Model, Voice: cfg.TTS.Voice, Speed: cfg.TTS.Speed})
	}

	return s, nil
}

// ListenAndServe starts the reaper and blocks serving HTTP/WebSocket
// traffic until ctx is cancelled or the listener errors.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.sessions.Reap()
	defer s.sessions.Shutdown()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleHealth reports collaborator availability and active session count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"status":          "ok",
		"stt":             s.stt != nil,
		"tts":             s.tts != nil,
		"active_sessions": s.sessions.Len(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("health write failed", "error", err)
	}
}
