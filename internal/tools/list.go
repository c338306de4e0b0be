package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type listDirectoryInput struct {
	Path string `json:"path"`
}

func (e *Executor) listDirectory(raw json.RawMessage) (*Result, error) {
	var in listDirectoryInput
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
		}
	}

	dirPath := e.Sandbox.Root
	if in.Path != "" {
		resolved, err := e.Sandbox.Resolve(in.Path)
		if err != nil {
			return safetyError(err), nil
		}
		dirPath = resolved
	}

	info, err := os.Stat(dirPath)
	if err != nil || !info.IsDir() {
		label := in.Path
		if label == "" {
			label = "."
		}
		return &Result{Success: false, Output: fmt.Sprintf("Not a directory: %s", label)}, nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		if strings.HasPrefix(name, ".") {
			continue
		}
		entryInfo, statErr := os.Stat(dirPath + string(os.PathSeparator) + name)
		suffix := ""
		if statErr == nil && entryInfo.IsDir() {
			suffix = "/"
		}
		lines = append(lines, name+suffix)
	}

	if len(lines) == 0 {
		return &Result{Success: true, Output: "(empty directory)"}, nil
	}
	return &Result{Success: true, Output: strings.Join(lines, "\n")}, nil
}
