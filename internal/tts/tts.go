// Package tts streams synthesized speech audio for text produced by the
// LLM, one sentence at a time so the first audio chunk reaches the client
// as quickly as possible.
package tts

import (
	"context"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

// splitSentences splits text at sentence-ending punctuation followed by
// whitespace, dropping empty segments. Equivalent to a regex split on
// `(?<=[.!?])\s+`, written by hand since RE2 doesn't support lookbehind.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		if j >= len(text) {
			continue
		}
		if next, _ := utf8.DecodeRuneInString(text[j:]); !unicode.IsSpace(next) {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(text[start:j]))
		start = j
	}
	if start < len(text) {
		if rest := strings.TrimSpace(text[start:]); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

// Synthesizer streams MP3 audio for text using OpenAI's speech API.
type Synthesizer struct {
	client *openai.Client
	model  string
	voice  string
	speed  float64
}

// Config holds the tunable parameters for a Synthesizer.
type Config struct {
	APIKey string
	Model  string
	Voice  string
	Speed  float64
}

// New builds a Synthesizer. Model and Voice fall back to the defaults the
// OpenAI TTS API recommends for low-latency narration; Speed falls back to
// normal playback speed.
func New(cfg Config) *Synthesizer {
	model := cfg.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}
	return &Synthesizer{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
		voice:  voice,
		speed:  speed,
	}
}

// chunkSize matches the byte size the reference TTS client reads audio in.
const chunkSize = 4096

// Synthesize splits text into sentences and streams MP3 audio chunks for
// each one over the returned channel, so playback can start before the
// whole text has been synthesized. The channel is closed once every
// sentence has been sent or ctx is cancelled. Errors synthesizing an
// individual sentence are swallowed so one bad sentence doesn't abort the
// rest of the utterance.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) <-chan []byte {
	out := make(chan []byte)

	go func() {
		defer close(out)

		for _, sentence := range splitSentences(text) {
			if ctx.Err() != nil {
				return
			}
			s.synthesizeSentence(ctx, sentence, out)
		}
	}()

	return out
}

func (s *Synthesizer) synthesizeSentence(ctx context.Context, sentence string, out chan<- []byte) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          sentence,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          s.speed,
	})
	if err != nil {
		return
	}
	defer resp.Close()

	buf := make([]byte, chunkSize)
	for {
		n, readErr := resp.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			return
		}
	}
}
