package llm

import (
	"encoding/json"
	"strings"
)

// parseAnswer decodes the model output into an Answer. Models often wrap
// JSON in markdown code fences; those are stripped first. Output that is not
// valid JSON is kept verbatim as the answer text.
func parseAnswer(raw string) *Answer {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var answer Answer
	if err := json.Unmarshal([]byte(cleaned), &answer); err == nil && answer.Answer != "" {
		return &answer
	}

	return &Answer{Answer: strings.TrimSpace(raw)}
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
