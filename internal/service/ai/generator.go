package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soignetech/itsupport-chatbot/internal/language"
	chatmodel "github.com/soignetech/itsupport-chatbot/internal/model/chat"
	"github.com/soignetech/itsupport-chatbot/internal/upstream"
)

// historyWindow bounds how many prior turns accompany a generation call.
const historyWindow = 5

const systemPromptTemplate = `You are a bilingual hospital IT Support assistant.

STRICT LANGUAGE RULE:
The user's question is in %[1]s. You MUST respond in %[1]s.
- If question is in English → respond in English
- If question is in French → respond in French
- NEVER mix languages in your response
- Translate context/knowledge if needed but keep response in user's language

RESPONSE STYLE:
- Clear and concise
- Use bullet points for steps
- Professional and courteous
- Use ONLY information from provided context
- If no relevant info → politely say it's outside IT scope


CONTEXTE:
%[2]s
`

// GeneratorOptions carry the sampling parameters for answer generation.
type GeneratorOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// Generator produces grounded answers in the question's own language.
type Generator struct {
	client   *Client
	detector *language.Detector
	opts     GeneratorOptions
	log      *zap.Logger
}

// NewGenerator builds an answer generator on top of the generation client.
func NewGenerator(client *Client, detector *language.Detector, opts GeneratorOptions, log *zap.Logger) *Generator {
	return &Generator{client: client, detector: detector, opts: opts, log: log}
}

// Generate asks the generation collaborator for an answer grounded in
// contextBlock, carrying at most the last five history turns. A collaborator
// timeout degrades to a canned apology in the question's language instead of
// failing the request; every other failure propagates for classification.
func (g *Generator) Generate(ctx context.Context, contextBlock, question string, history []chatmodel.Turn) (string, error) {
	lang := g.detector.Detect(question)

	messages := make([]Message, 0, historyWindow+2)
	messages = append(messages, Message{Role: "system", Content: g.systemPrompt(lang, contextBlock)})

	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, Message{Role: chatmodel.RoleUser, Content: question})

	answer, err := g.client.Complete(ctx, messages, CompletionOptions{
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
		TopP:        g.opts.TopP,
		Timeout:     g.opts.Timeout,
	})
	if err != nil {
		if upstream.IsTimeout(err) {
			g.log.Error("generation timed out, returning canned apology", zap.Error(err))
			return TimeoutAnswer(lang), nil
		}
		return "", err
	}

	g.log.Info("answer generated", zap.Int("length", len(answer)))
	return answer, nil
}

func (g *Generator) systemPrompt(lang language.Lang, contextBlock string) string {
	langWord := "English"
	if lang == language.French {
		langWord = "French"
	}
	if contextBlock == "" {
		contextBlock = "Aucune information pertinente trouvée"
	}
	return fmt.Sprintf(systemPromptTemplate, langWord, contextBlock)
}

// TimeoutAnswer is the canned apology used when generation exceeds its
// deadline.
func TimeoutAnswer(lang language.Lang) string {
	if lang == language.French {
		return "Désolé, le service met trop de temps. Réessayez."
	}
	return "Sorry, service timeout. Please retry."
}
