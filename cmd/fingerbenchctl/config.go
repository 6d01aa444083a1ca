package main

import (
	"encoding/json"
	"fmt"
	"os"

	benchapi "fingerbench/pkg/fingerbench"
)

func loadRunRequestFromConfig(path string) (benchapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return benchapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return benchapi.RunRequest{}, err
	}

	var req benchapi.RunRequest
	if v, ok := asString(raw["task"]); ok {
		req.Task = v
	}
	if v, ok := asString(raw["policy"]); ok {
		req.Policy = v
	}
	if v, ok := asInt(raw["episodes"]); ok {
		req.Episodes = v
	}
	if v, ok := asUint64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["frame_skip"]); ok {
		req.FrameSkip = v
	}
	if v, ok := asInt(raw["max_episode_steps"]); ok {
		req.MaxEpisodeSteps = v
	}
	if v, ok := asString(raw["base_path"]); ok {
		req.BasePath = v
	}
	if v, ok := asBool(raw["diagnostics"]); ok {
		req.Diagnostics = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (benchapi.RunRequest, error) {
	if configPath == "" {
		return benchapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return benchapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// overrideFromFlags lets explicitly set flags win over config file values.
func overrideFromFlags(req *benchapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "task":
			req.Task = v.(string)
		case "policy":
			req.Policy = v.(string)
		case "episodes":
			req.Episodes = v.(int)
		case "seed":
			req.Seed = v.(uint64)
		case "frame-skip":
			req.FrameSkip = v.(int)
		case "max-steps":
			req.MaxEpisodeSteps = v.(int)
		case "base-path":
			req.BasePath = v.(string)
		case "diagnostics":
			req.Diagnostics = v.(bool)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}
