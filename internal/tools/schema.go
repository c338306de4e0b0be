package tools

import "encoding/json"

// Definition describes one tool's name, description, and input schema for
// the LLM's tool-use catalog.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

func mustSchema(v map[string]any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}

// Catalog returns the fixed set of tool definitions sent to the LLM on
// every request. Order matches the static dispatch table in Execute.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        "read_file",
			Description: "Read the contents of a file. Returns the file text. Paths are relative to the workspace root.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":   map[string]any{"type": "string", "description": "File path to read"},
					"offset": map[string]any{"type": "integer", "description": "Line number to start reading from (1-based). Optional."},
					"limit":  map[string]any{"type": "integer", "description": "Maximum number of lines to read. Optional."},
				},
				"required": []string{"path"},
			}),
		},
		{
			Name:        "write_file",
			Description: "Create or overwrite a file with the given content. Paths are relative to the workspace root.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    map[string]any{"type": "string", "description": "File path to write"},
					"content": map[string]any{"type": "string", "description": "Content to write to the file"},
				},
				"required": []string{"path", "content"},
			}),
		},
		{
			Name:        "edit_file",
			Description: "Replace an exact text match in a file. The old_text must appear exactly once in the file.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":     map[string]any{"type": "string", "description": "File path to edit"},
					"old_text": map[string]any{"type": "string", "description": "Exact text to find and replace"},
					"new_text": map[string]any{"type": "string", "description": "Replacement text"},
				},
				"required": []string{"path", "old_text", "new_text"},
			}),
		},
		{
			Name:        "bash",
			Description: "Run a shell command and return its output. Commands run in the workspace root directory.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{"type": "string", "description": "Shell command to execute"},
					"timeout": map[string]any{"type": "integer", "description": "Timeout in seconds (default 30)"},
				},
				"required": []string{"command"},
			}),
		},
		{
			Name:        "glob",
			Description: "Find files matching a glob pattern. Returns a list of matching file paths.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string", "description": "Glob pattern (e.g. '**/*.go', 'src/*.ts')"},
					"path":    map[string]any{"type": "string", "description": "Directory to search in (default: workspace root)"},
				},
				"required": []string{"pattern"},
			}),
		},
		{
			Name:        "grep",
			Description: "Search file contents for a regex pattern. Returns matching lines with file paths and line numbers.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string", "description": "Regex pattern to search for"},
					"path":    map[string]any{"type": "string", "description": "File or directory to search in (default: workspace root)"},
					"include": map[string]any{"type": "string", "description": "Glob pattern to filter files (e.g. '*.go')"},
				},
				"required": []string{"pattern"},
			}),
		},
		{
			Name:        "list_directory",
			Description: "List the contents of a directory. Returns file and directory names.",
			InputSchema: mustSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string", "description": "Directory path (default: workspace root)"},
				},
				"required": []string{},
			}),
		},
	}
}
