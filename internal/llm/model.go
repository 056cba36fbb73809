// Package llm answers lecture questions through a configurable language
// model provider.
package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Answer is the structured response of the language model collaborator.
type Answer struct {
	Answer     string             `json:"answer"`
	Flashcards []models.Flashcard `json:"flashcards,omitempty"`
	Summary    string             `json:"summary,omitempty"`
}

// Answerer produces a grounded answer from a question and timestamped
// lecture context.
type Answerer interface {
	Answer(ctx context.Context, question, lectureContext string) (*Answer, error)
}

// Model wraps a langchaingo LLM for answering lecture questions.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ Answerer = (*Model)(nil)

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awscfg, cfgErr := awsconfig.LoadDefaultConfig(ctx)
		if cfgErr != nil {
			return nil, fmt.Errorf("load aws config: %w", cfgErr)
		}
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awscfg)),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

const answerSystemPrompt = `You are a helpful tutor. Answer the student's question using ONLY the provided lecture context.
Each context line starts with the timecode at which it was said or written; reference these timecodes in your answer.
If the context doesn't contain enough information to answer the question, say so.

Respond with a JSON object:
{"answer": "...", "flashcards": [{"question": "...", "answer": "..."}], "summary": "..."}

Flashcards and summary are optional; include them only when the material supports them.`

// Answer asks the model the question against the timestamped context and
// parses the structured response.
func (m *Model) Answer(ctx context.Context, question, lectureContext string) (*Answer, error) {
	userPrompt := fmt.Sprintf(`Question: %s

Context:
%s`, question, lectureContext)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, answerSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	return parseAnswer(response.Choices[0].Content), nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
