package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/soignetech/itsupport-chatbot/internal/config"
	"github.com/soignetech/itsupport-chatbot/internal/language"
	chatmodel "github.com/soignetech/itsupport-chatbot/internal/model/chat"
	searchmodel "github.com/soignetech/itsupport-chatbot/internal/model/search"
	"github.com/soignetech/itsupport-chatbot/internal/service/search"
	"github.com/soignetech/itsupport-chatbot/internal/upstream"
)

// Translator converts a question into the pivot language, failing open.
type Translator interface {
	ToEnglish(ctx context.Context, question string) string
}

// Searcher retrieves ranked knowledge-base passages.
type Searcher interface {
	Search(ctx context.Context, query string, top int) ([]searchmodel.Document, error)
}

// Generator produces a grounded answer from context, question and history.
type Generator interface {
	Generate(ctx context.Context, contextBlock, question string, history []chatmodel.Turn) (string, error)
}

// Question content rejected outright, matching the front-door injection
// screen of the public deployment.
var dangerousPatterns = []string{"<script>", "javascript:", "drop table", "delete from"}

// Service sequences one chat turn: validate, resolve session, suppress
// duplicates, translate, search, assemble, generate, record. It is also the
// error-translation boundary: everything a collaborator throws leaves here as
// a *Error with a safe localized message.
type Service struct {
	store      *Store
	detector   *language.Detector
	translator Translator
	searcher   Searcher
	generator  Generator
	log        *zap.Logger

	rateWindow time.Duration
	now        func() time.Time
}

// NewService wires the orchestrator.
func NewService(store *Store, detector *language.Detector, translator Translator, searcher Searcher, generator Generator, rateWindow time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		detector:   detector,
		translator: translator,
		searcher:   searcher,
		generator:  generator,
		log:        log,
		rateWindow: rateWindow,
		now:        time.Now,
	}
}

// Chat runs the full pipeline for one question and returns the result, or a
// *Error describing the terminal failure.
func (s *Service) Chat(ctx context.Context, question, sessionID string) (*chatmodel.Result, error) {
	question = strings.TrimSpace(question)
	lang := s.detector.Detect(question)

	if err := s.validate(question, lang); err != nil {
		return nil, err
	}

	// Opportunistic expiry sweep before touching any session.
	s.store.SweepExpired()

	session := s.store.GetOrCreate(sessionID)

	// Hold the session lock across check-pipeline-record so two concurrent
	// submissions of the same question cannot both pass the duplicate check
	// or interleave history turns.
	session.Lock()
	defer session.Unlock()

	s.log.Info("question received",
		zap.String("session_id", session.ID[:8]),
		zap.String("language", string(lang)),
		zap.String("question", truncate(question, 80)))

	if s.store.IsDuplicate(session, question, s.now(), s.rateWindow) {
		s.log.Warn("duplicate question suppressed", zap.String("session_id", session.ID[:8]))
		return nil, newError(KindRateLimited, duplicateMessage(lang), nil)
	}

	query := s.translator.ToEnglish(ctx, question)

	docs, err := s.searcher.Search(ctx, query, config.TopK)
	if err != nil {
		return nil, s.classify(err, lang)
	}

	contextBlock, sources := search.BuildContext(docs)
	if sources == nil {
		sources = []string{}
	}

	var answer string
	if contextBlock == "" {
		// Empty grounding: canned disclaimer, never spend a generation call.
		answer = noContextAnswer(lang)
	} else {
		answer, err = s.generator.Generate(ctx, contextBlock, question, session.History)
		if err != nil {
			return nil, s.classify(err, lang)
		}
	}

	s.store.RecordTurn(session, question, answer, s.now())

	return &chatmodel.Result{
		Answer:    answer,
		Language:  string(lang),
		Sources:   sources,
		SessionID: session.ID,
	}, nil
}

// Reset deletes the session and reports whether it existed.
func (s *Service) Reset(sessionID string) bool {
	return s.store.Reset(sessionID)
}

// ActiveSessions returns the live session count for health reporting.
func (s *Service) ActiveSessions() int {
	return s.store.Count()
}

func (s *Service) validate(question string, lang language.Lang) error {
	if question == "" {
		return newError(KindValidation, emptyQuestionMessage(lang), nil)
	}
	// The limit counts characters, not bytes; accented French input takes
	// two bytes per rune.
	if utf8.RuneCountInString(question) > config.MaxQuestionLength {
		return newError(KindValidation, tooLongMessage(lang), nil)
	}
	lower := strings.ToLower(question)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			s.log.Warn("suspicious question rejected", zap.String("pattern", pattern))
			return newError(KindValidation, suspiciousMessage(lang), nil)
		}
	}
	return nil
}

// classify maps collaborator failures onto the terminal taxonomy. The full
// cause is retained for the log; only the localized message reaches clients.
func (s *Service) classify(err error, lang language.Lang) *Error {
	var httpErr *upstream.HTTPError
	switch {
	case errors.As(err, &httpErr):
		s.log.Error("collaborator error",
			zap.String("service", httpErr.Service),
			zap.Int("status", httpErr.StatusCode),
			zap.String("body", truncate(httpErr.Body, 200)))
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return newError(KindUpstreamBusy, busyMessage(lang), err)
		}
		return newError(KindUpstream, upstreamErrorMessage(lang), err)
	case upstream.IsTimeout(err):
		s.log.Error("collaborator timed out", zap.Error(err))
		return newError(KindUpstreamTimeout, timeoutMessage(lang), err)
	case errors.Is(err, upstream.ErrMalformedResponse):
		s.log.Error("collaborator response malformed", zap.Error(err))
		return newError(KindMalformed, upstreamErrorMessage(lang), err)
	default:
		s.log.Error("unexpected pipeline failure", zap.Error(err))
		return newError(KindInternal, internalMessage(lang), err)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
