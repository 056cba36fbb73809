package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/models"
)

// Offline is the no-provider fallback. It produces a deterministic answer
// from the retrieved context so the pipeline stays usable without
// credentials. The answer is generic; the value is in the citation links the
// caller attaches.
type Offline struct{}

var _ Answerer = Offline{}

func (Offline) Answer(_ context.Context, question, lectureContext string) (*Answer, error) {
	answer := fmt.Sprintf(
		"Based on the lecture content, %s involves several key concepts covered at the timestamps shown above. "+
			"The main points include the theoretical foundations and practical applications discussed throughout the session.",
		strings.ToLower(strings.TrimSuffix(question, "?")),
	)

	result := &Answer{
		Answer:  answer,
		Summary: "This lecture section covers fundamental concepts with both theoretical background and practical examples.",
	}
	if lectureContext != "" {
		result.Flashcards = []models.Flashcard{
			{
				Question: fmt.Sprintf("What is the main concept related to %q?", question),
				Answer:   "The main concept involves the theoretical and practical aspects covered in this lecture section.",
			},
		}
	}
	return result, nil
}
