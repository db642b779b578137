package utils

import "strings"

// CleanMarkdown trims whitespace and strips one outer code fence (``` or ```markdown)
// so model prose can be embedded in a report.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}

	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the info string (e.g. "markdown") on the opening fence.
	if nl := strings.Index(cleaned, "\n"); nl >= 0 && !strings.ContainsAny(cleaned[:nl], " \t") {
		cleaned = cleaned[nl+1:]
	}
	return strings.TrimSpace(cleaned)
}
