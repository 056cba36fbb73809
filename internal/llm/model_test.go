package llm

import (
	"context"
	"testing"

	"github.com/lectio/lectio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerJSON(t *testing.T) {
	raw := `{"answer": "Dynamic programming caches subproblem results.", "flashcards": [{"question": "Q", "answer": "A"}], "summary": "DP basics."}`

	answer := parseAnswer(raw)
	assert.Equal(t, "Dynamic programming caches subproblem results.", answer.Answer)
	require.Len(t, answer.Flashcards, 1)
	assert.Equal(t, "Q", answer.Flashcards[0].Question)
	assert.Equal(t, "DP basics.", answer.Summary)
}

func TestParseAnswerCodeFence(t *testing.T) {
	raw := "```json\n{\"answer\": \"fenced\"}\n```"
	answer := parseAnswer(raw)
	assert.Equal(t, "fenced", answer.Answer)

	raw = "```\n{\"answer\": \"bare fence\"}\n```"
	answer = parseAnswer(raw)
	assert.Equal(t, "bare fence", answer.Answer)
}

func TestParseAnswerPlainText(t *testing.T) {
	raw := "  The answer is memoization.  "
	answer := parseAnswer(raw)
	assert.Equal(t, "The answer is memoization.", answer.Answer)
	assert.Empty(t, answer.Flashcards)
}

func TestParseAnswerEmptyJSONAnswerFallsBack(t *testing.T) {
	raw := `{"flashcards": []}`
	answer := parseAnswer(raw)
	assert.Equal(t, raw, answer.Answer)
}

func TestOfflineAnswer(t *testing.T) {
	answer, err := Offline{}.Answer(context.Background(), "What is memoization?", "[00:05] (asr) some context")
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "what is memoization")
	assert.NotEmpty(t, answer.Flashcards)
	assert.NotEmpty(t, answer.Summary)
}

func TestOfflineAnswerNoContext(t *testing.T) {
	answer, err := Offline{}.Answer(context.Background(), "Explain", "")
	require.NoError(t, err)
	assert.Empty(t, answer.Flashcards)
}

func TestNewModelUnsupportedProvider(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{LLMProvider: "nonsense"})
	assert.Error(t, err)
}

func TestNewModelMissingCredentials(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{LLMProvider: config.ProviderOpenAI})
	assert.Error(t, err)

	_, err = NewModel(context.Background(), config.Config{LLMProvider: config.ProviderAnthropic})
	assert.Error(t, err)
}
