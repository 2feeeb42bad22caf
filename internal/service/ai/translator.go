package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soignetech/itsupport-chatbot/internal/language"
)

const translateSystemPrompt = "Translate this French IT question to English. Return ONLY the translation."

// Translator converts French questions into the knowledge base's pivot
// language. It fails open: on any upstream trouble the original question is
// used as-is, trading retrieval quality for availability.
type Translator struct {
	client   *Client
	detector *language.Detector
	timeout  time.Duration
	log      *zap.Logger
}

// NewTranslator builds a translator on top of the generation client.
func NewTranslator(client *Client, detector *language.Detector, timeout time.Duration, log *zap.Logger) *Translator {
	return &Translator{client: client, detector: detector, timeout: timeout, log: log}
}

// ToEnglish returns the English form of question. English input is returned
// unchanged without touching the network.
func (t *Translator) ToEnglish(ctx context.Context, question string) string {
	if t.detector.Detect(question) == language.English {
		return question
	}

	translated, err := t.client.Complete(ctx, []Message{
		{Role: "system", Content: translateSystemPrompt},
		{Role: "user", Content: question},
	}, CompletionOptions{
		Temperature: 0,
		MaxTokens:   150,
		Timeout:     t.timeout,
	})
	if err != nil {
		t.log.Warn("translation failed, using original question", zap.Error(err))
		return question
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return question
	}

	t.log.Info("question translated for retrieval",
		zap.String("original", truncate(question, 30)),
		zap.String("translated", truncate(translated, 30)))
	return translated
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
