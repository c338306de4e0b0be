package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type editFileInput struct {
	Path    string `json:"path"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

func (e *Executor) editFile(raw json.RawMessage) (*Result, error) {
	var in editFileInput
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
	text := string(data)

	count := strings.Count(text, in.OldText)
	if count == 0 {
		return &Result{Success: false, Output: "old_text not found in file"}, nil
	}
	if count > 1 {
		return &Result{Success: false, Output: fmt.Sprintf("old_text found %d times — must be unique", count)}, nil
	}

	text = strings.Replace(text, in.OldText, in.NewText, 1)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	return &Result{Success: true, Output: "Edit applied"}, nil
}
