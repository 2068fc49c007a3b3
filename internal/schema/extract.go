package schema

import "strings"

// ExtractJSON pulls the first JSON document out of free-form AI output.
// Models frequently wrap JSON in markdown fences or surround it with prose;
// this strips fences and slices from the first opening bracket to the last
// matching closing bracket. Returns nil when no JSON-looking payload exists.
func ExtractJSON(s string) []byte {
	s = strings.TrimSpace(s)

	// Strip a ```json ... ``` fence when present.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')

	start := objStart
	closer := byte('}')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		start = arrStart
		closer = ']'
	}
	if start < 0 {
		return nil
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return nil
	}
	return []byte(s[start : end+1])
}
