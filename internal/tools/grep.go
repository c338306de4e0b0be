package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type grepInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
	Include string `json:"include"`
}

const maxGrepMatches = 200

func (e *Executor) grep(raw json.RawMessage) (*Result, error) {
	var in grepInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	searchPath := e.Sandbox.Root
	if in.Path != "" {
		resolved, err := e.Sandbox.Resolve(in.Path)
		if err != nil {
			return safetyError(err), nil
		}
		searchPath = resolved
	}

	re, err := regexp.Compile(in.Pattern)
	if err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Invalid regex: %v", err)}, nil
	}

	var results []string
	searchFile := func(path string) {
		results = append(results, grepFile(e.Sandbox.Root, path, re)...)
	}

	info, statErr := os.Stat(searchPath)
	if statErr == nil && !info.IsDir() {
		searchFile(searchPath)
	} else {
		pattern := in.Include
		if pattern == "" {
			pattern = "**/*"
		}
		_ = filepath.WalkDir(searchPath, func(path string, d os.DirEntry, err error) error {
			if err != nil || len(results) >= maxGrepMatches {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			for _, part := range strings.Split(path, string(os.PathSeparator)) {
				if strings.HasPrefix(part, ".") && part != "" {
					return nil
				}
			}
			rel, relErr := filepath.Rel(searchPath, path)
			if relErr != nil {
				return nil
			}
			matched, matchErr := matchGlob(pattern, filepath.ToSlash(rel))
			if matchErr != nil || !matched {
				return nil
			}
			searchFile(path)
			if len(results) >= maxGrepMatches {
				return filepath.SkipAll
			}
			return nil
		})
	}

	if len(results) == 0 {
		return &Result{Success: true, Output: "No matches found"}, nil
	}

	limit := len(results)
	if limit > maxGrepMatches {
		limit = maxGrepMatches
	}
	output := strings.Join(results[:limit], "\n")
	if len(results) > maxGrepMatches {
		output += fmt.Sprintf("\n... (%d total matches)", len(results))
	}
	return &Result{Success: true, Output: output}, nil
}

func grepFile(root, path string, re *regexp.Regexp) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)

	var hits []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if re.MatchString(text) {
			hits = append(hits, fmt.Sprintf("%s:%d: %s", rel, line, text))
		}
	}
	return hits
}
