package services

import (
	"context"

	"datachat/chart"
	"datachat/database"
	"datachat/web/format"
	"datachat/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageService mirrors the router's in-memory conversation state into the
// database so sessions survive restarts.
type MessageService struct {
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewMessageService(store *database.PostgresStore, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:  store,
		logger: logger,
	}
}

// PersistExchange saves the turns produced by one routed query: the user
// turn, and the model turn unless the exchange failed (error replies leave
// only the user turn behind). Persistence failures are logged, never
// surfaced to the user; the in-memory state remains authoritative for the
// running session.
func (ms *MessageService) PersistExchange(ctx context.Context, sessionID uuid.UUID, turns []types.Turn, reply types.RoutedReply) {
	for _, turn := range turns {
		var rendered string
		var followUps []string
		var spec *chart.Spec
		if turn.Role == types.RoleModel {
			rendered = format.RenderHTML(turn.Content)
			followUps = reply.FollowUps
			spec = reply.Chart
		}
		if err := ms.store.CreateTurn(ctx, turn, rendered, followUps, spec); err != nil {
			ms.logger.Error("Failed to persist turn - conversation data may be lost",
				zap.Error(err),
				zap.String("session_id", sessionID.String()),
				zap.String("role", turn.Role))
		}
	}

	if reply.Chart != nil {
		if err := ms.store.SetLastChart(ctx, sessionID, reply.Chart); err != nil {
			ms.logger.Error("Failed to persist cached chart",
				zap.Error(err),
				zap.String("session_id", sessionID.String()))
		}
	}
}
