package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type readFileInput struct {
	Path   string `json:"path"`
	Offset *int   `json:"offset"`
	Limit  *int   `json:"limit"`
}

func (e *Executor) readFile(raw json.RawMessage) (*Result, error) {
	var in readFileInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	path, err := e.Sandbox.Resolve(in.Path)
	if err != nil {
		return safetyError(err), nil
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &Result{Success: false, Output: fmt.Sprintf("File not found: %s", in.Path)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}
	text := lossyDecode(data)

	lines := splitKeepEnds(text)
	if in.Offset != nil {
		start := *in.Offset - 1 // 1-based to 0-based
		if start < 0 {
			start = 0
		}
		if start > len(lines) {
			start = len(lines)
		}
		lines = lines[start:]
	}
	if in.Limit != nil && *in.Limit < len(lines) {
		if *in.Limit < 0 {
			lines = nil
		} else {
			lines = lines[:*in.Limit]
		}
	}

	output := strings.Join(lines, "")
	if len(output) > maxOutput {
		output = output[:maxOutput] + fmt.Sprintf("\n... (truncated, %d total chars)", len(text))
	}
	return &Result{Success: true, Output: output}, nil
}

// lossyDecode mirrors Python's str.decode(errors="replace"): invalid UTF-8
// bytes become the replacement character instead of failing the read.
func lossyDecode(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}

// splitKeepEnds splits text into lines, keeping each line's trailing
// newline; a final line without one is kept as is. Only '\n' ends a line:
// unlike Python's str.splitlines, a bare '\r' or other line separators do
// not split.
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
