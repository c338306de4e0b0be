package protocol

import "testing"

func TestDecodeIncomingSelectWorkspace(t *testing.T) {
	msg, err := DecodeIncoming([]byte(`{"type":"select_workspace","name":"blog"}`))
	if err != nil {
		t.Fatalf("DecodeIncoming: %v", err)
	}
	if msg.SelectWorkspace == nil || msg.SelectWorkspace.Name != "blog" {
		t.Fatalf("unexpected result: %+v", msg)
	}
}

func TestDecodeIncomingAudioStartDefaults(t *testing.T) {
	msg, err := DecodeIncoming([]byte(`{"type":"audio_start"}`))
	if err != nil {
		t.Fatalf("DecodeIncoming: %v", err)
	}
	if msg.AudioStart.SampleRate != 16000 || msg.AudioStart.Channels != 1 || msg.AudioStart.Encoding != "pcm_s16le" {
		t.Fatalf("unexpected defaults: %+v", msg.AudioStart)
	}
}

func TestDecodeIncomingUnknownType(t *testing.T) {
	if _, err := DecodeIncoming([]byte(`{"type":"bogus"}`)); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDecodeIncomingTextMessage(t *testing.T) {
	msg, err := DecodeIncoming([]byte(`{"type":"text_message","text":"hello"}`))
	if err != nil {
		t.Fatalf("DecodeIncoming: %v", err)
	}
	if msg.TextMessage.Text != "hello" {
		t.Fatalf("unexpected text: %q", msg.TextMessage.Text)
	}
}

func TestNewToolResultTruncatesOutput(t *testing.T) {
	big := make([]byte, 5000)
	for i := range big {
		big[i] = 'x'
	}
	res := NewToolResult("id1", "bash", true, string(big))
	if len(res.Output) != maxToolResultOutput {
		t.Fatalf("expected truncation to %d chars, got %d", maxToolResultOutput, len(res.Output))
	}
}
