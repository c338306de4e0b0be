package gateway

import (
	"context"

	"github.com/madenney/walkie-talkie/internal/protocol"
	"github.com/madenney/walkie-talkie/internal/speak"
	"github.com/madenney/walkie-talkie/internal/tools"
)

// runResponse drives one LLM streaming turn to completion: relaying text
// deltas and tool events to the client, feeding the raw delta stream to
// the <speak> extractor, and running a TTS consumer alongside it. It
// always emits response_end on the way out, cancelled or not.
func (c *conn) runResponse(ctx context.Context) {
	executor := c.sess.Executor
	if executor == nil {
		executor = &tools.Executor{}
	}
	systemPrompt := workspaceSystemPrompt(c.sess.WorkspaceName)

	var extractor speak.Extractor
	var ttsQueue chan *string
	var ttsDone chan struct{}
	if c.server.tts != nil {
		ttsQueue = make(chan *string, 32)
		ttsDone = make(chan struct{})
		go c.runTTSConsumer(ttsQueue, ttsDone)
	}

	events := c.server.llmClient.StreamResponse(ctx, c.sess.History, executor, systemPrompt, c.sess.Interrupted)
	for ev := range events {
		switch ev.Type {
		case "text_delta":
			c.sendJSON(protocol.ResponseDelta{Type: protocol.TypeResponseDelta, Text: speak.StripTags(ev.Text)})
			if ttsQueue != nil {
				for _, spoken := range extractor.Feed(ev.Text) {
					spoken := spoken
					select {
					case ttsQueue <- &spoken:
					case <-ctx.Done():
					}
				}
			}

		case "tool_use":
			c.sendJSON(protocol.ToolUse{Type: protocol.TypeToolUse, ToolName: ev.ToolName, ToolID: ev.ToolID, Input: ev.Input})

		case "tool_result":
			c.sendJSON(protocol.NewToolResult(ev.ToolID, ev.ToolName, ev.Success, ev.Output))

		case "error":
			c.sendError("claude_error", ev.Err.Error())
		}
	}

	c.sendJSON(protocol.ResponseEnd{Type: protocol.TypeResponseEnd})

	if ttsQueue != nil {
		ttsQueue <- nil
		<-ttsDone
	}
}

// runTTSConsumer reads queued <speak> blocks, one at a time, synthesizing
// and forwarding MP3 chunks until it sees the nil sentinel. It emits
// tts_start on the first block and tts_end when it's done, but only if it
// ever started.
func (c *conn) runTTSConsumer(queue <-chan *string, done chan<- struct{}) {
	defer close(done)

	started := false
	for block := range queue {
		if block == nil {
			break
		}
		if c.sess.Interrupted() {
			continue
		}
		if !started {
			c.sendJSON(protocol.TTSStart{Type: protocol.TypeTTSStart, Format: "mp3"})
			started = true
		}
		for chunk := range c.server.tts.Synthesize(context.Background(), *block) {
			if c.sess.Interrupted() {
				break
			}
			c.sendAudio(append([]byte{protocol.AudioPrefixTTS}, chunk...))
		}
	}

	if started {
		c.sendJSON(protocol.TTSEnd{Type: protocol.TypeTTSEnd})
	}
}
