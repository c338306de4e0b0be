// Package llm drives the Claude tool-use loop: stream a response, execute
// any requested tools, feed the results back, and repeat until the model
// stops asking for tools or the round limit is hit.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/madenney/walkie-talkie/internal/history"
	"github.com/madenney/walkie-talkie/internal/tools"
)

// MaxToolRounds caps the tool-use loop so a model stuck requesting tools
// forever can't keep a session open indefinitely.
const MaxToolRounds = 15

// Event is one step of a streamed response. Type selects which fields are
// populated, mirroring the tagged events sent down to the client.
type Event struct {
	Type string // text_delta | text_done | tool_use | tool_result | response_complete | error

	Text string

	ToolID   string
	ToolName string
	Input    json.RawMessage

	Success bool
	Output  string

	Err error
}

// Client wraps the Anthropic Messages API with the tool-use loop.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	maxTurns  int
	toolDefs  []anthropic.ToolUnionParam
}

// Config holds the tunable parameters for a Client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	MaxTurns  int
}

// NewClient builds a Client for the given model, with the sandboxed tool
// catalog already converted to Anthropic's tool schema format.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 50
	}

	toolDefs, err := convertCatalog(tools.Catalog())
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	return &Client{
		api:       anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: int64(maxTokens),
		maxTurns:  maxTurns,
		toolDefs:  toolDefs,
	}, nil
}

func convertCatalog(defs []tools.Definition) ([]anthropic.ToolUnionParam, error) {
	result := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", def.Name, err)
		}
		toolParam := anthropic.ToolUnionParamOfTool(schema, def.Name)
		if toolParam.OfTool == nil {
			return nil, fmt.Errorf("invalid schema for %s: missing tool definition", def.Name)
		}
		toolParam.OfTool.Description = anthropic.String(def.Description)
		result = append(result, toolParam)
	}
	return result, nil
}

// pendingBlock accumulates one content block (text or tool_use) as its
// stream events arrive, in the order content_block_start introduced it.
type pendingBlock struct {
	kind      string // text | tool_use
	id        string
	name      string
	text      strings.Builder
	inputJSON strings.Builder
}

// StreamResponse runs the tool-use loop against hist, executing any
// requested tools through executor, and emits events on the returned
// channel as they happen. The channel is closed when the response
// completes, the round limit is hit, or interrupted reports true.
func (c *Client) StreamResponse(ctx context.Context, hist *history.History, executor *tools.Executor, systemPrompt string, interrupted func() bool) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		for round := 0; round < MaxToolRounds; round++ {
			if interrupted() {
				return
			}

			messages, err := convertMessages(hist.Messages)
			if err != nil {
				events <- Event{Type: "error", Err: err}
				return
			}

			params := anthropic.MessageNewParams{
				Model:     anthropic.Model(c.model),
				Messages:  messages,
				MaxTokens: c.maxTokens,
				Tools:     c.toolDefs,
			}
			if systemPrompt != "" {
				params.System = []anthropic.TextBlockParam{{Type: "text", Text: systemPrompt}}
			}

			stream := c.api.Messages.NewStreaming(ctx, params)

			var blocks []*pendingBlock
			roundHasText := false

			for stream.Next() {
				if interrupted() {
					return
				}
				event := stream.Current()

				switch event.Type {
				case "content_block_start":
					block := event.AsContentBlockStart().ContentBlock
					switch block.Type {
					case "text":
						blocks = append(blocks, &pendingBlock{kind: "text"})
					case "tool_use":
						toolUse := block.AsToolUse()
						blocks = append(blocks, &pendingBlock{kind: "tool_use", id: toolUse.ID, name: toolUse.Name})
					}

				case "content_block_delta":
					if len(blocks) == 0 {
						continue
					}
					current := blocks[len(blocks)-1]
					delta := event.AsContentBlockDelta().Delta
					switch delta.Type {
					case "text_delta":
						if delta.Text != "" {
							current.text.WriteString(delta.Text)
							roundHasText = true
							events <- Event{Type: "text_delta", Text: delta.Text}
						}
					case "input_json_delta":
						if delta.PartialJSON != "" {
							current.inputJSON.WriteString(delta.PartialJSON)
						}
					}
				}
			}

			if err := stream.Err(); err != nil {
				if interrupted() {
					return
				}
				events <- Event{Type: "error", Err: err}
				return
			}

			assistantMsg, toolUseBlocks, err := finalizeBlocks(blocks)
			if err != nil {
				events <- Event{Type: "error", Err: err}
				return
			}

			if roundHasText {
				events <- Event{Type: "text_done"}
			}

			if len(toolUseBlocks) == 0 {
				if len(assistantMsg.Content) > 0 {
					hist.Append(assistantMsg, c.maxTurns)
				}
				events <- Event{Type: "response_complete"}
				return
			}

			hist.Append(assistantMsg, c.maxTurns)

			var resultBlocks []history.Block
			for _, tb := range toolUseBlocks {
				input := json.RawMessage(tb.inputJSON.String())
				events <- Event{Type: "tool_use", ToolID: tb.id, ToolName: tb.name, Input: input}

				result, execErr := executor.Execute(ctx, tb.name, input)
				if execErr != nil {
					result = &tools.Result{Success: false, Output: fmt.Sprintf("Error: %v", execErr)}
				}

				events <- Event{Type: "tool_result", ToolID: tb.id, ToolName: tb.name, Success: result.Success, Output: result.Output}

				resultBlocks = append(resultBlocks, history.Block{
					Type:      "tool_result",
					ToolUseID: tb.id,
					Content:   result.Output,
					IsError:   !result.Success,
				})
			}

			hist.Append(history.Message{Role: "user", Content: resultBlocks}, c.maxTurns)
		}

		events <- Event{Type: "text_delta", Text: "\n\n(Reached maximum tool-use iterations)"}
		events <- Event{Type: "text_done"}
		events <- Event{Type: "response_complete"}
	}()

	return events
}

// finalizeBlocks converts the accumulated stream blocks into a history
// message plus the subset that are tool_use blocks, in streamed order.
func finalizeBlocks(blocks []*pendingBlock) (history.Message, []*pendingBlock, error) {
	msg := history.Message{Role: "assistant"}
	var toolUses []*pendingBlock

	for _, b := range blocks {
		switch b.kind {
		case "text":
			if b.text.Len() > 0 {
				msg.Content = append(msg.Content, history.Block{Type: "text", Text: b.text.String()})
			}
		case "tool_use":
			raw := b.inputJSON.String()
			if raw == "" {
				raw = "{}"
			}
			if !json.Valid([]byte(raw)) {
				return history.Message{}, nil, fmt.Errorf("invalid tool input for %s", b.name)
			}
			msg.Content = append(msg.Content, history.Block{Type: "tool_use", ID: b.id, Name: b.name, Input: json.RawMessage(raw)})
			toolUses = append(toolUses, b)
		}
	}

	return msg, toolUses, nil
}

// convertMessages converts history messages into Anthropic's API format,
// the one place the provider-agnostic history meets the SDK's types.
func convertMessages(messages []history.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		var content []anthropic.ContentBlockParamUnion
		for _, b := range msg.Content {
			switch b.Type {
			case "text":
				content = append(content, anthropic.NewTextBlock(b.Text))
			case "image":
				content = append(content, anthropic.NewImageBlockBase64(b.MediaType, b.Data))
			case "tool_use":
				var input map[string]any
				if err := json.Unmarshal(b.Input, &input); err != nil {
					return nil, fmt.Errorf("invalid tool_use input for %s: %w", b.Name, err)
				}
				content = append(content, anthropic.NewToolUseBlock(b.ID, input, b.Name))
			case "tool_result":
				content = append(content, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
			}
		}

		if msg.Role == "assistant" {
			result = append(result, anthropic.NewAssistantMessage(content...))
		} else {
			result = append(result, anthropic.NewUserMessage(content...))
		}
	}

	return result, nil
}
