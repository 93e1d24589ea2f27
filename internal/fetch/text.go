package fetch

import (
	"regexp"
	"strings"
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes converted page text while keeping Markdown structure:
// line endings become LF, trailing whitespace goes, runs of spaces inside a
// line collapse, headings and bullets keep their markers, and at most one
// blank line separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankRuns.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return inlineSpace.ReplaceAllString(trimmed, " ")
	}

	indent := len(line) - len(trimmed)
	return strings.Repeat(" ", indent) + inlineSpace.ReplaceAllString(trimmed, " ")
}
