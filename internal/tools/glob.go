package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type globInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

const maxGlobMatches = 500

func (e *Executor) glob(raw json.RawMessage) (*Result, error) {
	var in globInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	searchDir := e.Sandbox.Root
	if in.Path != "" {
		resolved, err := e.Sandbox.Resolve(in.Path)
		if err != nil {
			return safetyError(err), nil
		}
		searchDir = resolved
	}

	var matches []string
	err := filepath.WalkDir(searchDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(searchDir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		matched, matchErr := matchGlob(in.Pattern, rel)
		if matchErr != nil {
			return matchErr
		}
		if matched {
			fromRoot, relErr := filepath.Rel(e.Sandbox.Root, path)
			if relErr != nil {
				return nil
			}
			matches = append(matches, filepath.ToSlash(fromRoot))
		}
		return nil
	})
	if err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	if len(matches) == 0 {
		return &Result{Success: true, Output: "No matches found"}, nil
	}
	sort.Strings(matches)

	limit := len(matches)
	if limit > maxGlobMatches {
		limit = maxGlobMatches
	}
	output := strings.Join(matches[:limit], "\n")
	if len(matches) > maxGlobMatches {
		output += fmt.Sprintf("\n... (%d total matches)", len(matches))
	}
	return &Result{Success: true, Output: output}, nil
}

// matchGlob matches name against pattern, supporting ** for recursive
// directory matching beyond what filepath.Match offers.
func matchGlob(pattern, name string) (bool, error) {
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, name)
	}
	return filepath.Match(pattern, name)
}

func matchDoublestar(pattern, name string) (bool, error) {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix == "" && suffix == "" {
		return true, nil
	}
	if prefix == "" {
		segments := strings.Split(name, "/")
		for i := range segments {
			subpath := strings.Join(segments[i:], "/")
			if matched, _ := filepath.Match(suffix, subpath); matched {
				return true, nil
			}
		}
		return false, nil
	}
	if suffix == "" {
		return strings.HasPrefix(name, prefix+"/") || name == prefix, nil
	}
	if !strings.HasPrefix(name, prefix+"/") && name != prefix {
		return false, nil
	}
	rest := strings.TrimPrefix(name, prefix+"/")
	return matchDoublestar("**/"+suffix, rest)
}
