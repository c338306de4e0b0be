package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type writeFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (e *Executor) writeFile(raw json.RawMessage) (*Result, error) {
	var in writeFileInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	path, err := e.Sandbox.Resolve(in.Path)
	if err != nil {
		return safetyError(err), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}
	if err := os.WriteFile(path, []byte(in.Content), 0o644); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	return &Result{Success: true, Output: fmt.Sprintf("Wrote %d chars to %s", len(in.Content), in.Path)}, nil
}
