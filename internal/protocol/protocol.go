// Package protocol defines the JSON text-frame message types exchanged
// over the WebSocket connection, plus the binary audio-frame prefixes.
//
// Every text frame carries JSON with a "type" field selecting which of the
// structs below it decodes into. Binary frames carry raw audio with a
// single prefix byte: AudioPrefixMic for phone-to-server microphone audio,
// AudioPrefixTTS for server-to-phone synthesized speech.
package protocol

import "encoding/json"

// Binary frame prefixes.
const (
	AudioPrefixMic byte = 0x01
	AudioPrefixTTS byte = 0x02
)

// Incoming message types (phone -> server).
const (
	TypeSelectWorkspace = "select_workspace"
	TypeAudioStart      = "audio_start"
	TypeAudioEnd        = "audio_end"
	TypeTextMessage     = "text_message"
	TypeImageMessage    = "image_message"
	TypeInterrupt       = "interrupt"
	TypePing            = "ping"
)

// Outgoing message types (server -> phone).
const (
	TypeTranscription     = "transcription"
	TypeResponseDelta     = "response_delta"
	TypeResponseEnd       = "response_end"
	TypeToolUse           = "tool_use"
	TypeToolResult        = "tool_result"
	TypeTTSStart          = "tts_start"
	TypeTTSEnd            = "tts_end"
	TypeError             = "error"
	TypePong              = "pong"
	TypeWorkspaceList     = "workspace_list"
	TypeWorkspaceSelected = "workspace_selected"
)

// Envelope is used only to read the "type" discriminator before decoding
// the rest of an incoming frame into its concrete struct.
type Envelope struct {
	Type string `json:"type"`
}

// --- Phone -> Server ---

type SelectWorkspace struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type AudioStart struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Encoding   string `json:"encoding"`
}

type AudioEnd struct {
	Type string `json:"type"`
}

type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageMessage struct {
	Type      string  `json:"type"`
	Data      string  `json:"data"`
	MediaType string  `json:"media_type"`
	Text      *string `json:"text,omitempty"`
}

type Interrupt struct {
	Type string `json:"type"`
}

type Ping struct {
	Type string `json:"type"`
}

// --- Server -> Phone ---

type Transcription struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

type ResponseDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ResponseEnd struct {
	Type string `json:"type"`
}

type ToolUse struct {
	Type     string          `json:"type"`
	ToolName string          `json:"tool_name"`
	ToolID   string          `json:"tool_id"`
	Input    json.RawMessage `json:"input"`
}

type ToolResult struct {
	Type     string `json:"type"`
	ToolID   string `json:"tool_id"`
	ToolName string `json:"tool_name"`
	Success  bool   `json:"success"`
	Output   string `json:"output"`
}

type TTSStart struct {
	Type   string `json:"type"`
	Format string `json:"format"`
}

type TTSEnd struct {
	Type string `json:"type"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Pong struct {
	Type string `json:"type"`
}

type WorkspaceEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type WorkspaceList struct {
	Type       string           `json:"type"`
	Workspaces []WorkspaceEntry `json:"workspaces"`
}

type WorkspaceSelected struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// maxToolResultOutput truncates tool output echoed back to the client, so
// a single noisy tool call can't flood the phone's display.
const maxToolResultOutput = 2000

// NewToolResult builds a ToolResult with output truncated to what the
// client is meant to display.
func NewToolResult(toolID, toolName string, success bool, output string) ToolResult {
	if len(output) > maxToolResultOutput {
		output = output[:maxToolResultOutput]
	}
	return ToolResult{Type: TypeToolResult, ToolID: toolID, ToolName: toolName, Success: success, Output: output}
}
