package protocol

import (
	"encoding/json"
	"fmt"
)

// Incoming is the decoded form of one phone-to-server text frame. Exactly
// one of the pointer fields is non-nil, matching Envelope.Type.
type Incoming struct {
	Type string

	SelectWorkspace *SelectWorkspace
	AudioStart      *AudioStart
	AudioEnd        *AudioEnd
	TextMessage     *TextMessage
	ImageMessage    *ImageMessage
	Interrupt       *Interrupt
	Ping            *Ping
}

// DecodeIncoming parses a text frame's JSON payload, dispatching on its
// "type" field to the matching struct.
func DecodeIncoming(data []byte) (*Incoming, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: invalid message: %w", err)
	}

	msg := &Incoming{Type: env.Type}
	switch env.Type {
	case TypeSelectWorkspace:
		msg.SelectWorkspace = &SelectWorkspace{}
		return msg, json.Unmarshal(data, msg.SelectWorkspace)
	case TypeAudioStart:
		msg.AudioStart = &AudioStart{SampleRate: 16000, Channels: 1, Encoding: "pcm_s16le"}
		return msg, json.Unmarshal(data, msg.AudioStart)
	case TypeAudioEnd:
		msg.AudioEnd = &AudioEnd{}
		return msg, json.Unmarshal(data, msg.AudioEnd)
	case TypeTextMessage:
		msg.TextMessage = &TextMessage{}
		return msg, json.Unmarshal(data, msg.TextMessage)
	case TypeImageMessage:
		msg.ImageMessage = &ImageMessage{MediaType: "image/jpeg"}
		return msg, json.Unmarshal(data, msg.ImageMessage)
	case TypeInterrupt:
		msg.Interrupt = &Interrupt{}
		return msg, json.Unmarshal(data, msg.Interrupt)
	case TypePing:
		msg.Ping = &Ping{}
		return msg, json.Unmarshal(data, msg.Ping)
	default:
		return nil, fmt.Errorf("protocol: unknown message type: %s", env.Type)
	}
}
