// Package taskid canonicalizes task-name spellings coming from config files
// and command lines into the names the task layer validates.
package taskid

import "strings"

// Normalize canonicalizes task names and reference aliases. Unknown names
// are returned in normalized spelling so the task layer can produce its own
// configuration error.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.Trim(normalized, "_")
	if normalized == "" {
		return ""
	}
	if canonical, ok := canonicalTaskName(normalized); ok {
		return canonical
	}
	return normalized
}

func canonicalTaskName(alias string) (string, bool) {
	candidate := strings.TrimPrefix(alias, "finger_")
	switch candidate {
	case "spin":
		return "spin", true
	case "turn_easy", "easy":
		return "turn_easy", true
	case "turn_hard", "hard":
		return "turn_hard", true
	}

	compact := strings.ReplaceAll(candidate, "_", "")
	switch compact {
	case "spin":
		return "spin", true
	case "turneasy":
		return "turn_easy", true
	case "turnhard":
		return "turn_hard", true
	default:
		return "", false
	}
}
