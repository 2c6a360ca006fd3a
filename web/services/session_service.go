package services

import (
	"context"
	"strings"

	"datachat/database"

	"github.com/google/uuid"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

const maxTitleLength = 60

// SessionService derives session metadata from conversation activity.
type SessionService struct {
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewSessionService(store *database.PostgresStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: logger,
	}
}

// TitleSession sets the session title from the opening query's first
// sentence. Called once, on the first user message of a session.
func (ss *SessionService) TitleSession(ctx context.Context, sessionID uuid.UUID, query string) {
	title := firstSentence(query, ss.logger)
	if title == "" {
		return
	}
	if err := ss.store.UpdateSessionTitle(ctx, sessionID, title); err != nil {
		ss.logger.Warn("Failed to update session title",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
	}
}

// firstSentence segments the text and returns its first sentence, truncated
// at a word boundary when too long for a title.
func firstSentence(text string, logger *zap.Logger) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	doc, err := prose.NewDocument(trimmed, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		logger.Warn("Failed to segment title sentence, truncating at character boundary", zap.Error(err))
	} else if sents := doc.Sentences(); len(sents) > 0 {
		trimmed = strings.TrimSpace(sents[0].Text)
	}

	if len(trimmed) <= maxTitleLength {
		return trimmed
	}
	cut := trimmed[:maxTitleLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
