// Package stt transcribes buffered microphone audio to text before it is
// handed to the LLM.
package stt

import (
	"bytes"
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Transcriber converts PCM s16le mono audio into text using OpenAI's
// transcription API.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
}

// Config holds the tunable parameters for a Transcriber.
type Config struct {
	APIKey   string
	Model    string
	Language string
}

// New builds a Transcriber. Model falls back to OpenAI's general-purpose
// transcription model when unset.
func New(cfg Config) *Transcriber {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{
		client:   openai.NewClient(cfg.APIKey),
		model:    model,
		language: cfg.Language,
	}
}

// Transcribe returns the text spoken in audioData, a buffer of raw PCM
// s16le mono samples at sampleRate. Returns "" for empty input without
// making an API call.
func (t *Transcriber) Transcribe(ctx context.Context, audioData []byte, sampleRate int) (string, error) {
	if len(audioData) == 0 {
		return "", nil
	}

	wav := wrapPCMAsWAV(audioData, sampleRate)

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
	}
	if t.language != "" && t.language != "auto" {
		req.Language = t.language
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}
