package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soignetech/itsupport-chatbot/internal/language"
	chatmodel "github.com/soignetech/itsupport-chatbot/internal/model/chat"
	"github.com/soignetech/itsupport-chatbot/internal/service/ai"
	"github.com/soignetech/itsupport-chatbot/internal/upstream"
)

type capturedRequest struct {
	Messages    []ai.Message `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	TopP        float64      `json:"top_p"`
}

func newGenerator(t *testing.T, handler http.HandlerFunc, opts ai.GeneratorOptions) *ai.Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := ai.NewClient(srv.URL, "key", 0, zap.NewNop())
	return ai.NewGenerator(client, language.NewDetector(), opts, zap.NewNop())
}

func TestGenerateBuildsLanguagePinnedPrompt(t *testing.T) {
	var got capturedRequest
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write(completionBody("- Ouvrez le portail\n- Cliquez sur mot de passe oublié"))
	}, ai.GeneratorOptions{Temperature: 0.3, TopP: 0.95, MaxTokens: 800, Timeout: 5 * time.Second})

	answer, err := gen.Generate(context.Background(),
		"[Document: Guide]\nRéinitialisation via le portail.",
		"Comment réinitialiser mon mot de passe?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "portail")

	require.NotEmpty(t, got.Messages)
	system := got.Messages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "The user's question is in French. You MUST respond in French.")
	assert.Contains(t, system.Content, "NEVER mix languages")
	assert.Contains(t, system.Content, "[Document: Guide]")

	last := got.Messages[len(got.Messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "Comment réinitialiser mon mot de passe?", last.Content)

	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 0.95, got.TopP)
	assert.Equal(t, 800, got.MaxTokens)
}

func TestGenerateBoundsHistoryToFiveTurns(t *testing.T) {
	var got capturedRequest
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write(completionBody("answer"))
	}, ai.GeneratorOptions{Timeout: 5 * time.Second})

	history := make([]chatmodel.Turn, 0, 12)
	for i := 0; i < 6; i++ {
		history = append(history,
			chatmodel.Turn{Role: chatmodel.RoleUser, Content: "old question"},
			chatmodel.Turn{Role: chatmodel.RoleAssistant, Content: "old answer"},
		)
	}

	_, err := gen.Generate(context.Background(), "[Document: a]\nx", "What about the VPN?", history)
	require.NoError(t, err)

	// system + 5 history turns + new question
	require.Len(t, got.Messages, 7)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "What about the VPN?", got.Messages[6].Content)
}

func TestGenerateTimeoutReturnsCannedAnswer(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}, ai.GeneratorOptions{Timeout: 10 * time.Millisecond})

	answer, err := gen.Generate(context.Background(), "[Document: a]\nx",
		"Comment réinitialiser mon mot de passe?", nil)
	require.NoError(t, err)
	assert.Equal(t, ai.TimeoutAnswer(language.French), answer)
}

func TestGenerateHTTPErrorPropagates(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, ai.GeneratorOptions{Timeout: 5 * time.Second})

	_, err := gen.Generate(context.Background(), "[Document: a]\nx", "VPN?", nil)
	require.Error(t, err)

	var httpErr *upstream.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestGenerateMalformedResponse(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, ai.GeneratorOptions{Timeout: 5 * time.Second})

	_, err := gen.Generate(context.Background(), "[Document: a]\nx", "VPN?", nil)
	assert.ErrorIs(t, err, upstream.ErrMalformedResponse)
}

func TestGenerateUndecodableResponseKeepsParseDetail(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}, ai.GeneratorOptions{Timeout: 5 * time.Second})

	_, err := gen.Generate(context.Background(), "[Document: a]\nx", "VPN?", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "invalid character")
}
