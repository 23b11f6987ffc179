// Package app is the transport-independent message dispatcher. It owns
// command routing, the video load flow and the Q&A flow, and renders every
// outcome as user-facing text so transports only deliver strings.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"vidsage/internal/cache"
	"vidsage/internal/domain"
	"vidsage/internal/observability"
	"vidsage/internal/retrieval"
	"vidsage/internal/session"
	"vidsage/internal/transcript"
)

var simplifyKeywords = []string{
	"explain like i'm 5",
	"explain like im 5",
	"eli5",
	"in simple terms",
	"simple terms",
	"explain simply",
	"simplify",
}

// Service handles one user message at a time per user and produces the reply.
type Service struct {
	sessions  *session.Manager
	engine    *retrieval.Engine
	store     *cache.Store
	generator domain.Generator
}

// NewService creates the dispatcher (DI constructor).
func NewService(
	sessions *session.Manager,
	engine *retrieval.Engine,
	store *cache.Store,
	generator domain.Generator,
) *Service {
	return &Service{
		sessions:  sessions,
		engine:    engine,
		store:     store,
		generator: generator,
	}
}

// HandleMessage processes one incoming message and returns the reply text.
// Messages from the same user are serialized through the session handling
// lock, so answers always reflect the state left by the previous message.
func (s *Service) HandleMessage(ctx context.Context, userID, text string) string {
	ctx = observability.WithRequestID(ctx, observability.GenerateRequestID())
	ctx = observability.WithUserID(ctx, userID)

	sess := s.sessions.Get(userID)
	sess.Acquire()
	defer sess.Release()

	text = strings.TrimSpace(text)
	if text == "" {
		return renderError(domain.ErrEmptyText)
	}

	logger := observability.FromContext(ctx)
	logger.Info("handling message", observability.Int("length", len(text)))

	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, sess, text)
	}

	if transcript.IsVideoURL(text) {
		return s.loadVideo(ctx, sess, text)
	}

	if language := detectRequestedLanguage(text); language != "" {
		return s.switchLanguage(ctx, sess, language)
	}

	if topic, ok := simplifyRequest(text); ok && sess.Loaded() {
		return s.simplified(ctx, sess, topic)
	}

	return s.answerQuestion(ctx, sess, text)
}

func (s *Service) handleCommand(ctx context.Context, sess *session.Session, text string) string {
	command, args, _ := strings.Cut(text, " ")
	// Strip the @botname suffix so "/summary@VidSageBot" routes like "/summary".
	command, _, _ = strings.Cut(strings.ToLower(command), "@")
	args = strings.TrimSpace(args)

	switch command {
	case "/start", "/help":
		return replyStart
	case "/reset":
		return s.reset(ctx, sess)
	case "/language":
		return s.languageCommand(ctx, sess, args)
	case "/summary":
		return s.summaryCommand(ctx, sess)
	case "/deepdive":
		return s.structured(ctx, sess, s.generator.DeepDive, "deep dive")
	case "/actionpoints":
		return s.structured(ctx, sess, s.generator.ActionPoints, "action points")
	default:
		return "I don't know that command. Try /help."
	}
}

// loadVideo runs the build pipeline for a linked video and replies with its
// summary. Repeated links to a cached video reuse the stored index and the
// per-language summary without any model calls.
func (s *Service) loadVideo(ctx context.Context, sess *session.Session, text string) string {
	videoID := transcript.ExtractVideoID(text)
	if videoID == "" {
		return renderError(domain.ErrInvalidVideoRef)
	}
	ctx = observability.WithVideoID(ctx, videoID)
	logger := observability.FromContext(ctx)

	entry, err := s.engine.EnsureIndex(ctx, videoID)
	if err != nil {
		logger.Warn("video load failed", observability.Error(err))
		return renderError(err)
	}

	sess.SetVideo(videoID)
	language := sess.Language()

	summary, err := s.videoSummary(ctx, entry, language)
	if err != nil {
		logger.Warn("summary generation failed", observability.Error(err))
		return fmt.Sprintf("✅ Loaded %q.%s", entry.Transcript.Title, replyAskAnything)
	}

	return summary + replyAskAnything
}

// videoSummary returns the per-language summary for a loaded video, serving
// the cached text when one exists and memoizing fresh generations.
func (s *Service) videoSummary(ctx context.Context, entry *cache.Entry, language string) (string, error) {
	if cached, ok := entry.Summary(language); ok {
		return cached, nil
	}
	text, err := s.generator.Summary(ctx, entry.Transcript, language)
	if err != nil {
		return "", err
	}
	s.store.PutSummary(ctx, entry.VideoID, language, text)
	return text, nil
}

func (s *Service) answerQuestion(ctx context.Context, sess *session.Session, question string) string {
	videoID := sess.VideoID()
	if videoID == "" {
		return renderError(domain.ErrNoActiveVideo)
	}
	ctx = observability.WithVideoID(ctx, videoID)
	logger := observability.FromContext(ctx)

	entry := s.store.Get(videoID)

	chunks, err := s.engine.AnswerContext(ctx, videoID, question, 0)
	if err != nil {
		if errors.Is(err, domain.ErrNotCovered) {
			return s.notCovered(entry)
		}
		logger.Warn("retrieval failed", observability.Error(err))
		return renderError(err)
	}

	if entry == nil {
		// AnswerContext rebuilt the entry after eviction.
		entry = s.store.Get(videoID)
		if entry == nil {
			return renderError(domain.ErrInternal)
		}
	}

	answer, err := s.generator.Answer(ctx, entry.Transcript, chunks, question, sess.Language(), sess.History())
	if err != nil {
		if errors.Is(err, domain.ErrNotCovered) {
			return s.notCovered(entry)
		}
		logger.Warn("answer generation failed", observability.Error(err))
		return renderError(err)
	}

	sess.AddTurn(domain.RoleUser, question)
	sess.AddTurn(domain.RoleAssistant, answer)
	return answer
}

func (s *Service) notCovered(entry *cache.Entry) string {
	title := ""
	if entry != nil {
		title = entry.Transcript.Title
	}
	return renderNotCovered(title)
}

// structured handles /summary, /deepdive and /actionpoints, which share the
// loaded-video requirement and the full-transcript generation shape.
func (s *Service) structured(
	ctx context.Context,
	sess *session.Session,
	generate func(ctx context.Context, video *domain.Transcript, language string) (string, error),
	kind string,
) string {
	entry, errReply := s.loadedEntry(ctx, sess)
	if errReply != "" {
		return errReply
	}
	ctx = observability.WithVideoID(ctx, entry.VideoID)

	text, err := generate(ctx, entry.Transcript, sess.Language())
	if err != nil {
		observability.FromContext(ctx).Warn("generation failed",
			observability.String("kind", kind),
			observability.Error(err))
		return renderError(err)
	}
	return text
}

// summaryCommand serves /summary from the per-language summary cache,
// generating and memoizing on first request.
func (s *Service) summaryCommand(ctx context.Context, sess *session.Session) string {
	entry, errReply := s.loadedEntry(ctx, sess)
	if errReply != "" {
		return errReply
	}
	ctx = observability.WithVideoID(ctx, entry.VideoID)

	text, err := s.videoSummary(ctx, entry, sess.Language())
	if err != nil {
		observability.FromContext(ctx).Warn("summary generation failed", observability.Error(err))
		return renderError(err)
	}
	return text
}

func (s *Service) simplified(ctx context.Context, sess *session.Session, topic string) string {
	entry, errReply := s.loadedEntry(ctx, sess)
	if errReply != "" {
		return errReply
	}
	ctx = observability.WithVideoID(ctx, entry.VideoID)

	text, err := s.generator.Simplified(ctx, entry.Transcript, sess.Language(), topic)
	if err != nil {
		observability.FromContext(ctx).Warn("simplified generation failed", observability.Error(err))
		return renderError(err)
	}
	return text
}

func (s *Service) switchLanguage(ctx context.Context, sess *session.Session, language string) string {
	sess.SetLanguage(language)
	if !sess.Loaded() {
		return fmt.Sprintf("🌐 I'll answer in %s from now on.", language)
	}

	entry, errReply := s.loadedEntry(ctx, sess)
	if errReply != "" {
		return errReply
	}
	ctx = observability.WithVideoID(ctx, entry.VideoID)

	summary, err := s.videoSummary(ctx, entry, language)
	if err != nil {
		return fmt.Sprintf("🌐 I'll answer in %s from now on.", language)
	}
	return fmt.Sprintf("🌐 Switched to %s.\n\n%s", language, summary)
}

func (s *Service) languageCommand(ctx context.Context, sess *session.Session, args string) string {
	if args == "" {
		names := make([]string, 0, len(languageKeywords))
		for name := range languageKeywords {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("Current language: %s.\nSay /language <name> to switch. Supported: %s.",
			sess.Language(), strings.Join(names, ", "))
	}
	language := detectRequestedLanguage(args)
	if language == "" {
		return fmt.Sprintf("I can't answer in %q yet. Try /language to see the supported list.", args)
	}
	return s.switchLanguage(ctx, sess, language)
}

// reset forgets the user's session and drops the video's cached artifacts so
// the next link triggers a fresh build.
func (s *Service) reset(ctx context.Context, sess *session.Session) string {
	if videoID := sess.VideoID(); videoID != "" {
		s.store.Reset(ctx, videoID)
	}
	sess.ClearVideo()
	s.sessions.Reset(sess.UserID)
	return replyReset
}

// loadedEntry resolves the session's active video to a cache entry, rebuilding
// it when evicted. Returns a rendered error reply on failure.
func (s *Service) loadedEntry(ctx context.Context, sess *session.Session) (*cache.Entry, string) {
	videoID := sess.VideoID()
	if videoID == "" {
		return nil, renderError(domain.ErrNoActiveVideo)
	}
	entry, err := s.engine.EnsureIndex(ctx, videoID)
	if err != nil {
		return nil, renderError(err)
	}
	return entry, ""
}

// simplifyRequest reports whether a message asks for a simplified explanation
// and extracts the topic that follows the trigger phrase, if any.
func simplifyRequest(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range simplifyKeywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		topic := strings.TrimSpace(text[idx+len(kw):])
		topic = strings.TrimLeft(topic, ":,- ")
		return topic, true
	}
	return "", false
}

