package govern

import "strings"

const (
	maxSnippetLen = 120
	maxErrorLen   = 160
)

// snippet collapses runs of whitespace and truncates the result so prompt
// text stays readable in log lines.
func snippet(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return truncate(collapsed, maxSnippetLen)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
