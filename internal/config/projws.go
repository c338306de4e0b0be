package config

import (
	"encoding/json"
	"os"
)

// projwsFile mirrors the external `{"projects": {key: {"label","cwd"}}}`
// JSON document some hosts use to publish their open project list.
type projwsFile struct {
	Projects map[string]WorkspaceConfig `json:"projects"`
}

// loadProjws reads a projws JSON file and derives workspace configs from it.
func loadProjws(path string) (map[string]WorkspaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]WorkspaceConfig{}, nil
		}
		return nil, err
	}
	var parsed projwsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	workspaces := make(map[string]WorkspaceConfig, len(parsed.Projects))
	for name, ws := range parsed.Projects {
		ws.Cwd = expandPath(ws.Cwd)
		workspaces[name] = ws
	}
	return workspaces, nil
}
