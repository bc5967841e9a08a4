package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Chat models frequently wrap JSON in prose or markdown fences. The helpers
// here first try a strict parse and then fall back to extracting the
// outermost JSON value from the raw text.

// parseJSONArray decodes a JSON array from raw completion text.
func parseJSONArray(raw string, dest any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), dest); err == nil {
		return nil
	}
	extracted, ok := extractDelimited(trimmed, '[', ']')
	if !ok {
		return fmt.Errorf("no JSON array found in response")
	}
	if err := json.Unmarshal([]byte(extracted), dest); err != nil {
		return fmt.Errorf("failed to parse extracted JSON array: %w", err)
	}
	return nil
}

// parseJSONObject decodes a JSON object from raw completion text.
func parseJSONObject(raw string, dest any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), dest); err == nil {
		return nil
	}
	extracted, ok := extractDelimited(trimmed, '{', '}')
	if !ok {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(extracted), dest); err != nil {
		return fmt.Errorf("failed to parse extracted JSON object: %w", err)
	}
	return nil
}

// extractDelimited returns the substring from the first open delimiter to the
// last close delimiter, inclusive.
func extractDelimited(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// sceneEntry tolerates the shapes models return for one scene: a plain
// string, {"scene": "..."} or {"setting": ..., "action": ..., "emotion": ...}.
type sceneEntry struct {
	text string
}

func (e *sceneEntry) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		e.text = plain
		return nil
	}
	var obj struct {
		Scene   string `json:"scene"`
		Setting string `json:"setting"`
		Action  string `json:"action"`
		Emotion string `json:"emotion"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Scene != "" {
		e.text = obj.Scene
		return nil
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{obj.Setting, obj.Action, obj.Emotion} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	e.text = strings.Join(parts, ". ")
	return nil
}

// parseSceneList extracts a list of scene descriptions from completion text.
func parseSceneList(raw string) ([]string, error) {
	var entries []sceneEntry
	if err := parseJSONArray(raw, &entries); err != nil {
		return nil, err
	}
	scenes := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.text) != "" {
			scenes = append(scenes, strings.TrimSpace(e.text))
		}
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scene list is empty")
	}
	return scenes, nil
}
