package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/madenney/walkie-talkie/internal/history"
	"github.com/madenney/walkie-talkie/internal/protocol"
	"github.com/madenney/walkie-talkie/internal/sandbox"
	"github.com/madenney/walkie-talkie/internal/session"
	"github.com/madenney/walkie-talkie/internal/tools"
	"github.com/madenney/walkie-talkie/internal/workspace"
)

const wsWriteWait = 10 * time.Second

// outboundFrame is one frame queued for the write loop. Using a single
// channel for both JSON and binary frames keeps every outbound frame on
// one session totally ordered, matching the response_end-before-tts_end
// guarantee.
type outboundFrame struct {
	messageType int
	data        []byte
}

// conn owns one WebSocket connection and its Session.
type conn struct {
	server *Server
	ws     *websocket.Conn
	sess   *session.Session
	send   chan outboundFrame
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &conn{
		server: s,
		ws:     wsConn,
		sess:   session.New(),
		send:   make(chan outboundFrame, 64),
	}
	s.sessions.Add(c.sess)
	defer s.sessions.Remove(c.sess.ID)

	go c.writeLoop()
	c.sendWorkspaceListIfAny()
	c.readLoop()
}

func (c *conn) writeLoop() {
	defer c.ws.Close()
	for frame := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.ws.WriteMessage(frame.messageType, frame.data); err != nil {
			return
		}
	}
}

func (c *conn) readLoop() {
	defer close(c.send)
	defer c.sess.CancelResponse()

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.sess.Touch()

		switch messageType {
		case websocket.TextMessage:
			c.handleText(data)
		case websocket.BinaryMessage:
			c.handleBinary(data)
		}
	}
}

func (c *conn) handleBinary(data []byte) {
	if len(data) < 2 {
		return
	}
	prefix, payload := data[0], data[1:]
	if prefix == protocol.AudioPrefixMic && c.sess.IsRecording() {
		c.sess.AudioBuffer = append(c.sess.AudioBuffer, payload...)
	}
}

func (c *conn) handleText(data []byte) {
	if err := validateIncomingFrame(data); err != nil {
		c.sendError("parse_error", err.Error())
		return
	}

	msg, err := protocol.DecodeIncoming(data)
	if err != nil {
		c.sendError("parse_error", err.Error())
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		c.sendJSON(protocol.Pong{Type: protocol.TypePong})

	case protocol.TypeSelectWorkspace:
		c.handleSelectWorkspace(msg.SelectWorkspace)

	case protocol.TypeAudioStart:
		c.sess.SampleRate = msg.AudioStart.SampleRate
		c.sess.ClearAudioBuffer()
		c.sess.SetRecording(true)

	case protocol.TypeAudioEnd:
		c.handleAudioEnd()

	case protocol.TypeTextMessage:
		go c.handleUserInput(msg.TextMessage.Text, nil)

	case protocol.TypeImageMessage:
		text := "What do you see in this image?"
		if msg.ImageMessage.Text != nil && *msg.ImageMessage.Text != "" {
			text = *msg.ImageMessage.Text
		}
		imageBlock := history.Block{Type: "image", MediaType: msg.ImageMessage.MediaType, Data: msg.ImageMessage.Data}
		go c.handleUserInput(text, []history.Block{imageBlock})

	case protocol.TypeInterrupt:
		c.sess.CancelResponse()
	}
}

func (c *conn) handleSelectWorkspace(m *protocol.SelectWorkspace) {
	ws, ok := c.server.workspaces.Lookup(m.Name)
	if !ok {
		err := &workspace.ErrUnknownWorkspace{Name: m.Name}
		c.sendError("invalid_workspace", err.Error())
		return
	}

	sb, err := sandbox.New(ws.Cwd)
	if err != nil {
		c.sendError("invalid_workspace", err.Error())
		return
	}

	timeout := time.Duration(c.server.config.Safety.CommandTimeout) * time.Second
	executor := tools.NewExecutor(sb, c.server.config.Safety.BlockedCommands, timeout)
	c.sess.SelectWorkspace(ws.Name, executor)

	c.sendJSON(protocol.WorkspaceSelected{Type: protocol.TypeWorkspaceSelected, Name: ws.Name, Path: ws.Cwd})
}

func (c *conn) handleAudioEnd() {
	c.sess.SetRecording(false)

	if c.server.stt == nil {
		c.sendError("stt_unavailable", "speech-to-text is not configured")
		return
	}
	if len(c.sess.AudioBuffer) == 0 {
		return
	}

	audio := append([]byte(nil), c.sess.AudioBuffer...)
	sampleRate := c.sess.SampleRate
	c.sess.ClearAudioBuffer()

	go func() {
		text, err := c.server.stt.Transcribe(context.Background(), audio, sampleRate)
		if err != nil {
			c.sendError("stt_error", err.Error())
			return
		}
		if text == "" {
			return
		}
		c.sendJSON(protocol.Transcription{Type: protocol.TypeTranscription, Text: text, IsFinal: true})
		c.handleUserInput(text, nil)
	}()
}

// handleUserInput appends the user's turn (any leading image blocks
// followed by a text block) to history, then drives one response task to
// completion. Runs inside the session's response slot so concurrent
// callers (text_message, image_message, and transcribed audio can all
// reach here without an intervening interrupt) are serialized rather than
// racing each other's history append and response task. Cancellation via
// interrupt is expected and produces no error; any other failure surfaces
// as a claude_error.
func (c *conn) handleUserInput(text string, leadingBlocks []history.Block) {
	c.sess.RunExclusive(func() {
		content := append(append([]history.Block{}, leadingBlocks...), history.Block{Type: "text", Text: text})
		c.sess.History.Append(history.Message{Role: "user", Content: content}, c.server.config.Claude.MaxConversationTurns)

		ctx := c.sess.BeginResponse(context.Background())
		c.sess.SetResponding(true)
		defer c.sess.SetResponding(false)
		defer c.sess.EndResponse()

		c.runResponse(ctx)
	})
}

func (c *conn) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.server.logger.Error("marshal outbound message failed", "error", err)
		return
	}
	c.enqueue(outboundFrame{messageType: websocket.TextMessage, data: data})
}

func (c *conn) sendAudio(data []byte) {
	c.enqueue(outboundFrame{messageType: websocket.BinaryMessage, data: data})
}

func (c *conn) sendError(code, message string) {
	c.sendJSON(protocol.Error{Type: protocol.TypeError, Message: message, Code: code})
}

// enqueue recovers from a send on a closed channel, which happens when
// the read loop has already torn the connection down while a response
// goroutine is still flushing its last frames.
func (c *conn) enqueue(frame outboundFrame) {
	defer func() { _ = recover() }()
	c.send <- frame
}

func (c *conn) sendWorkspaceListIfAny() {
	workspaces := c.server.workspaces.List()
	if len(workspaces) == 0 {
		return
	}
	entries := make([]protocol.WorkspaceEntry, 0, len(workspaces))
	for _, w := range workspaces {
		entries = append(entries, protocol.WorkspaceEntry{Name: w.Name, Path: w.Cwd})
	}
	c.sendJSON(protocol.WorkspaceList{Type: protocol.TypeWorkspaceList, Workspaces: entries})
}
