package stt

import (
	"encoding/binary"
	"testing"
)

func TestWrapPCMAsWAVHeaderFields(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	wav := wrapPCMAsWAV(pcm, 16000)

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers")
	}
	if string(wav[12:16]) != "fmt " {
		t.Fatalf("missing fmt chunk")
	}
	channels := binary.LittleEndian.Uint16(wav[22:24])
	if channels != 1 {
		t.Fatalf("expected mono, got %d channels", channels)
	}
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 16000 {
		t.Fatalf("unexpected sample rate: %d", sampleRate)
	}
	bitsPerSample := binary.LittleEndian.Uint16(wav[34:36])
	if bitsPerSample != 16 {
		t.Fatalf("unexpected bits per sample: %d", bitsPerSample)
	}
	if string(wav[36:40]) != "data" {
		t.Fatalf("missing data chunk")
	}
	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	if int(dataSize) != len(pcm) {
		t.Fatalf("unexpected data size: %d", dataSize)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("unexpected total length: %d", len(wav))
	}
}

func TestTranscribeEmptyAudioSkipsAPICall(t *testing.T) {
	tr := New(Config{APIKey: "unused"})
	text, err := tr.Transcribe(nil, nil, 16000)
	if err != nil || text != "" {
		t.Fatalf("expected empty result with no error, got %q %v", text, err)
	}
}
