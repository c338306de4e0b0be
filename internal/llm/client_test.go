package llm

import (
	"testing"

	"github.com/madenney/walkie-talkie/internal/history"
	"github.com/madenney/walkie-talkie/internal/tools"
)

func TestConvertCatalogCoversAllTools(t *testing.T) {
	defs, err := convertCatalog(tools.Catalog())
	if err != nil {
		t.Fatalf("convertCatalog: %v", err)
	}
	if len(defs) != len(tools.Catalog()) {
		t.Fatalf("got %d tool defs, want %d", len(defs), len(tools.Catalog()))
	}
	for i, d := range defs {
		if d.OfTool == nil {
			t.Fatalf("tool %d missing OfTool", i)
		}
	}
}

func TestFinalizeBlocksTextOnly(t *testing.T) {
	b := &pendingBlock{kind: "text"}
	b.text.WriteString("hello")
	msg, toolUses, err := finalizeBlocks([]*pendingBlock{b})
	if err != nil {
		t.Fatalf("finalizeBlocks: %v", err)
	}
	if len(msg.Content) != 1 || len(toolUses) != 0 {
		t.Fatalf("unexpected result: content=%d toolUses=%d", len(msg.Content), len(toolUses))
	}
	if msg.Content[0].Text != "hello" {
		t.Fatalf("unexpected text: %q", msg.Content[0].Text)
	}
}

func TestFinalizeBlocksToolUse(t *testing.T) {
	b := &pendingBlock{kind: "tool_use", id: "tool_1", name: "read_file"}
	b.inputJSON.WriteString(`{"path":"a.txt"}`)
	msg, toolUses, err := finalizeBlocks([]*pendingBlock{b})
	if err != nil {
		t.Fatalf("finalizeBlocks: %v", err)
	}
	if len(msg.Content) != 1 || len(toolUses) != 1 {
		t.Fatalf("unexpected result: content=%d toolUses=%d", len(msg.Content), len(toolUses))
	}
	if toolUses[0].name != "read_file" {
		t.Fatalf("unexpected tool name: %s", toolUses[0].name)
	}
}

func TestFinalizeBlocksInvalidInputJSON(t *testing.T) {
	b := &pendingBlock{kind: "tool_use", id: "tool_1", name: "bash"}
	b.inputJSON.WriteString(`{not json`)
	if _, _, err := finalizeBlocks([]*pendingBlock{b}); err == nil {
		t.Fatalf("expected error for invalid input json")
	}
}

func TestFinalizeBlocksEmptyInputDefaultsToEmptyObject(t *testing.T) {
	b := &pendingBlock{kind: "tool_use", id: "tool_1", name: "list_directory"}
	msg, toolUses, err := finalizeBlocks([]*pendingBlock{b})
	if err != nil {
		t.Fatalf("finalizeBlocks: %v", err)
	}
	if len(msg.Content) != 1 || len(toolUses) != 1 {
		t.Fatalf("unexpected result")
	}
	if string(msg.Content[0].Input) != "{}" {
		t.Fatalf("expected defaulted empty object input, got %q", msg.Content[0].Input)
	}
}

func TestConvertMessagesRoundTrip(t *testing.T) {
	msgs := []history.Message{
		{Role: "user", Content: []history.Block{{Type: "text", Text: "hi"}}},
		{Role: "assistant", Content: []history.Block{
			{Type: "tool_use", ID: "t1", Name: "bash", Input: []byte(`{"command":"ls"}`)},
		}},
		{Role: "user", Content: []history.Block{
			{Type: "tool_result", ToolUseID: "t1", Content: "file1\nfile2", IsError: false},
		}},
	}
	anthropicMsgs, err := convertMessages(msgs)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(anthropicMsgs) != len(msgs) {
		t.Fatalf("got %d messages, want %d", len(anthropicMsgs), len(msgs))
	}
}
