package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/madenney/walkie-talkie/internal/config"
	"github.com/madenney/walkie-talkie/internal/protocol"
)

func testServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Defaults()
		cfg.Claude.APIKey = "test-key"
	}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func dialWS(t *testing.T, s *Server) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	srv := httptest.NewServer(mux)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, srv
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func TestHandleHealthReportsCollaboratorAvailability(t *testing.T) {
	s := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", resp["status"])
	}
	if resp["stt"] != false || resp["tts"] != false {
		t.Fatalf("expected stt/tts false with no API keys configured, got %+v", resp)
	}
	if resp["active_sessions"] != float64(0) {
		t.Fatalf("expected 0 active sessions, got %v", resp["active_sessions"])
	}
}

func TestConnectWithNoWorkspacesSendsNoWorkspaceList(t *testing.T) {
	s := testServer(t, nil)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	conn.WriteJSON(protocol.Ping{Type: protocol.TypePing})
	var pong protocol.Pong
	readJSON(t, conn, &pong)
	if pong.Type != protocol.TypePong {
		t.Fatalf("expected pong, got %+v", pong)
	}
}

func TestConnectWithWorkspacesSendsWorkspaceList(t *testing.T) {
	cfg := config.Defaults()
	cfg.Claude.APIKey = "test-key"
	cfg.Workspaces = map[string]config.WorkspaceConfig{
		"demo": {Label: "demo", Cwd: t.TempDir()},
	}
	s := testServer(t, cfg)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	var list protocol.WorkspaceList
	readJSON(t, conn, &list)
	if list.Type != protocol.TypeWorkspaceList {
		t.Fatalf("expected workspace_list, got %+v", list)
	}
	if len(list.Workspaces) != 1 || list.Workspaces[0].Name != "demo" {
		t.Fatalf("unexpected workspaces: %+v", list.Workspaces)
	}
}

func TestSelectUnknownWorkspaceSendsInvalidWorkspaceError(t *testing.T) {
	s := testServer(t, nil)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	conn.WriteJSON(protocol.SelectWorkspace{Type: protocol.TypeSelectWorkspace, Name: "nope"})
	var errMsg protocol.Error
	readJSON(t, conn, &errMsg)
	if errMsg.Code != "invalid_workspace" {
		t.Fatalf("expected invalid_workspace error, got %+v", errMsg)
	}
}

func TestSelectKnownWorkspaceSendsWorkspaceSelected(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Claude.APIKey = "test-key"
	cfg.Workspaces = map[string]config.WorkspaceConfig{"demo": {Label: "demo", Cwd: dir}}
	s := testServer(t, cfg)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	var list protocol.WorkspaceList
	readJSON(t, conn, &list)

	conn.WriteJSON(protocol.SelectWorkspace{Type: protocol.TypeSelectWorkspace, Name: "demo"})
	var selected protocol.WorkspaceSelected
	readJSON(t, conn, &selected)
	if selected.Name != "demo" || selected.Path != dir {
		t.Fatalf("unexpected workspace_selected: %+v", selected)
	}
}

func TestAudioEndWithNoSTTConfiguredSendsError(t *testing.T) {
	s := testServer(t, nil)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	conn.WriteJSON(protocol.AudioStart{Type: protocol.TypeAudioStart, SampleRate: 16000, Channels: 1, Encoding: "pcm_s16le"})
	conn.WriteMessage(websocket.BinaryMessage, append([]byte{protocol.AudioPrefixMic}, []byte{1, 2, 3}...))
	conn.WriteJSON(protocol.AudioEnd{Type: protocol.TypeAudioEnd})

	var errMsg protocol.Error
	readJSON(t, conn, &errMsg)
	if errMsg.Code != "stt_unavailable" {
		t.Fatalf("expected stt_unavailable error, got %+v", errMsg)
	}
}

func TestAudioEndWithEmptyBufferEmitsNothing(t *testing.T) {
	cfg := config.Defaults()
	cfg.Claude.APIKey = "test-key"
	cfg.STT.Enabled = true
	cfg.STT.APIKey = "test-key"
	s := testServer(t, cfg)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	conn.WriteJSON(protocol.AudioStart{Type: protocol.TypeAudioStart, SampleRate: 16000, Channels: 1, Encoding: "pcm_s16le"})
	conn.WriteJSON(protocol.AudioEnd{Type: protocol.TypeAudioEnd})

	conn.WriteJSON(protocol.Ping{Type: protocol.TypePing})
	var pong protocol.Pong
	readJSON(t, conn, &pong)
	if pong.Type != protocol.TypePong {
		t.Fatalf("expected only a pong to follow an empty-buffer audio_end, got %+v", pong)
	}
}

func TestInterruptWithNoActiveResponseIsSafe(t *testing.T) {
	s := testServer(t, nil)
	conn, srv := dialWS(t, s)
	defer srv.Close()
	defer conn.Close()

	conn.WriteJSON(protocol.Interrupt{Type: protocol.TypeInterrupt})
	conn.WriteJSON(protocol.Ping{Type: protocol.TypePing})
	var pong protocol.Pong
	readJSON(t, conn, &pong)
	if pong.Type != protocol.TypePong {
		t.Fatalf("expected pong after no-op interrupt, got %+v", pong)
	}
}
