package llm

import "strings"

// ExtractJSONBlock returns the first JSON object embedded in a model
// response. Models frequently wrap structured output in markdown code
// fences or surround it with prose; this strips both. Returns an empty
// string if no object is found.
func ExtractJSONBlock(s string) string {
	s = strings.TrimSpace(s)

	// Strip a markdown code fence if the whole response is fenced.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	// Walk to the matching close brace, respecting strings.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
