package session

import (
	"context"
	"testing"
	"time"

	"github.com/madenney/walkie-talkie/internal/history"
)

func TestNewAssignsTwelveCharID(t *testing.T) {
	s := New()
	if len(s.ID) != 12 {
		t.Fatalf("expected 12-char session id, got %q (%d chars)", s.ID, len(s.ID))
	}
}

func TestTouchUpdatesLastActivity(t *testing.T) {
	s := New()
	before := s.LastActivity
	time.Sleep(time.Millisecond)
	s.Touch()
	if !s.LastActivity.After(before) {
		t.Fatalf("expected LastActivity to advance")
	}
}

func TestCancelResponseCancelsContext(t *testing.T) {
	s := New()
	ctx := s.BeginResponse(context.Background())
	s.CancelResponse()

	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected response context to be cancelled")
	}
	if !s.Interrupted() {
		t.Fatalf("expected session to report interrupted")
	}
}

func TestCancelResponseWithoutActiveResponseIsSafe(t *testing.T) {
	s := New()
	s.CancelResponse()
	if !s.Interrupted() {
		t.Fatalf("expected interrupted flag set even with no active response")
	}
}

func TestBeginResponseResetsInterrupted(t *testing.T) {
	s := New()
	s.CancelResponse()
	if !s.Interrupted() {
		t.Fatalf("expected interrupted after cancel")
	}
	s.BeginResponse(context.Background())
	if s.Interrupted() {
		t.Fatalf("expected BeginResponse to clear interrupted")
	}
}

func TestSelectWorkspaceClearsHistoryAndCancelsResponse(t *testing.T) {
	s := New()
	s.History.Append(history.Message{Role: "user", Content: []history.Block{{Type: "text", Text: "hi"}}}, 50)
	ctx := s.BeginResponse(context.Background())

	s.SelectWorkspace("other", nil)

	if len(s.History.Messages) != 0 {
		t.Fatalf("expected history cleared, got %d messages", len(s.History.Messages))
	}
	if s.WorkspaceName != "other" {
		t.Fatalf("expected workspace name updated, got %q", s.WorkspaceName)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected in-flight response context cancelled by workspace switch")
	}
}

func TestClearAudioBufferEmptiesBuffer(t *testing.T) {
	s := New()
	s.AudioBuffer = append(s.AudioBuffer, 1, 2, 3)
	s.ClearAudioBuffer()
	if len(s.AudioBuffer) != 0 {
		t.Fatalf("expected empty audio buffer, got %d bytes", len(s.AudioBuffer))
	}
}
