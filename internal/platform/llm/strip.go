package llm

import "strings"

// StripFences removes a surrounding markdown code fence from a model reply.
// Models routinely wrap JSON answers in ```json blocks even when told not to.
func StripFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```") {
		if i := strings.Index(clean, "\n"); i >= 0 {
			clean = clean[i+1:]
		}
	}
	clean = strings.TrimSpace(clean)
	if strings.HasSuffix(clean, "```") {
		if i := strings.LastIndex(clean, "```"); i >= 0 {
			clean = clean[:i]
		}
	}
	return strings.TrimSpace(clean)
}
