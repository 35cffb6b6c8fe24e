package rag

import "strings"

// extractObject returns the substring between the first '{' and the last '}'
// of an LLM response, which tolerates prose or markdown fences around the
// JSON object. Returns "" when no such pair exists.
func extractObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}
