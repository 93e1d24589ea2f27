package llm

import "strings"

// CleanJSONBlock removes a markdown code fence around a JSON document.
// Models often fence JSON even when asked not to. A leading language tag
// (```json, ```JSON, ```javascript) is dropped with the fence.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := strings.TrimSpace(text[:idx])
		if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
			text = text[idx+1:]
		}
	} else if strings.HasPrefix(strings.ToLower(text), "json") {
		text = text[len("json"):]
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
