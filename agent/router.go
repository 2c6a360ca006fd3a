package agent

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"datachat/chart"
	"datachat/classify"
	"datachat/config"
	"datachat/prompts"
	"datachat/web/types"

	"go.uber.org/zap"
)

// IntentResolver decides domain membership for queries the lexical rules
// could not place. Satisfied by *classify.RemoteIntent.
type IntentResolver interface {
	IsAnalytics(ctx context.Context, query string) bool
}

// Router classifies each incoming query and answers it locally, rejects it,
// reuses prior state, or delegates to the completion service. It owns all
// conversation state; nothing else mutates it.
type Router struct {
	cfg    *config.Config
	llm    classify.Completer
	intent IntentResolver
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*History
}

func NewRouter(cfg *config.Config, llm classify.Completer, intent IntentResolver, logger *zap.Logger) *Router {
	return &Router{
		cfg:      cfg,
		llm:      llm,
		intent:   intent,
		logger:   logger,
		sessions: make(map[string]*History),
	}
}

// History returns the conversation state for a session, creating it on
// first use.
func (r *Router) History(sessionID string) *History {
	r.mu.RLock()
	h, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.sessions[sessionID]; ok {
		return h
	}
	h = NewHistory(sessionID)
	r.sessions[sessionID] = h
	return h
}

// Reset clears a session's conversation state.
func (r *Router) Reset(sessionID string) {
	r.History(sessionID).Reset()
	r.logger.Info("Conversation state reset", zap.String("session_id", sessionID))
}

// Forget drops a session's state entirely (used by cleanup).
func (r *Router) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

// Textual reference to a prior result, and requests to expand on one.
var (
	reusePattern       = regexp.MustCompile(`(?i)\b(above|previous|earlier|that data)\b`)
	elaborationPattern = regexp.MustCompile(`(?i)\b(explain|in detail|elaborate|why|how|tell me more|expand)\b`)
)

// Route handles one user query, with an optional uploaded dataset. The
// checks run in fixed priority order; the order is part of the contract:
// gibberish, casual, domain membership, context reuse, dataset, delegation.
// The user turn is appended before any branching. Every produced answer is
// appended as a model turn, except when the completion call fails: then the
// reply carries the fixed apology but no model turn is recorded.
//
// The second return value is the turns this call appended (the user turn,
// plus the model turn when one was recorded), so callers can persist the
// exchange without reading shared history state back.
func (r *Router) Route(ctx context.Context, sessionID, query string, dataset []chart.Row, columns []string, fileName string) (types.RoutedReply, []types.Turn) {
	h := r.History(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()

	userTurn := h.append(types.RoleUser, query)

	// 1. Gibberish short-circuits everything with a clarification request.
	if classify.IsGibberish(query) {
		return r.finish(h, userTurn, types.RoutedReply{
			Kind:      types.KindGibberish,
			Answer:    clarificationText,
			FollowUps: clarificationFollowUps,
		})
	}

	// 2. Casual chit-chat is answered locally, no classifier or network.
	if classify.IsCasual(query) {
		return r.finish(h, userTurn, types.RoutedReply{
			Kind:      types.KindCasual,
			Answer:    casualText,
			FollowUps: casualFollowUps,
		})
	}

	// 3. Domain membership: lexical fast path, remote classifier otherwise.
	// A supplied dataset keeps the query in scope regardless of the verdict.
	inDomain := classify.HasAnalyticsHint(query)
	if !inDomain && len(dataset) == 0 {
		inDomain = r.intent.IsAnalytics(ctx, query)
	}
	if !inDomain && len(dataset) == 0 {
		return r.finish(h, userTurn, types.RoutedReply{
			Kind:      types.KindOutOfDomain,
			Answer:    outOfDomainText,
			FollowUps: outOfDomainFollowUps,
		})
	}

	// 4. Reuse the cached chart when the query points back at it.
	if len(dataset) == 0 && reusePattern.MatchString(query) && h.lastChart != nil {
		return r.finish(h, userTurn, types.RoutedReply{
			Kind:      types.KindAnalytics,
			Answer:    reuseText,
			FollowUps: chartFollowUps,
			Chart:     h.lastChart,
		})
	}

	// 5. A freshly uploaded dataset becomes a bar chart.
	if len(dataset) > 0 {
		spec := chart.FromRows(columns, dataset)
		h.lastChart = spec
		return r.finish(h, userTurn, types.RoutedReply{
			Kind:      types.KindAnalytics,
			Answer:    fmt.Sprintf(uploadTextFormat, fileName, len(dataset), spec.XKey, spec.YKey),
			FollowUps: chartFollowUps,
			Chart:     spec,
		})
	}

	// 6. Open-ended analytics question: delegate to the completion service.
	return r.delegate(ctx, h, userTurn, sessionID, query)
}

func (r *Router) delegate(ctx context.Context, h *History, userTurn types.Turn, sessionID, query string) (types.RoutedReply, []types.Turn) {
	prompt := query
	if elaborationPattern.MatchString(query) {
		// Skip the user turn appended for this query when looking back.
		if prevUser, prevModel := h.lastExchange(1); prevUser != nil && prevModel != nil {
			prompt = fmt.Sprintf(
				"Earlier question: %s\n\nEarlier answer: %s\n\nExpand on the earlier answer to address this: %s",
				prevUser.Content, prevModel.Content, query)
		}
	}

	messages := []types.AgentMessage{
		{Role: "system", Content: prompts.AnalyticsSystem()},
		{Role: "user", Content: prompt},
	}

	raw, err := r.llm.Chat(ctx, messages, nil)
	if err != nil {
		// Failures never escape the router; the exchange keeps the user
		// turn only and the caller gets the fixed apology.
		r.logger.Error("Completion call failed",
			zap.Error(err),
			zap.String("session_id", sessionID))
		return types.RoutedReply{
			Kind:      types.KindError,
			Answer:    errorText,
			FollowUps: errorFollowUps,
		}, []types.Turn{userTurn}
	}

	parsed := ParseCompletion(raw, r.logger)
	if parsed.Chart != nil {
		h.lastChart = parsed.Chart
	}

	return r.finish(h, userTurn, types.RoutedReply{
		Kind:      types.KindAnalytics,
		Answer:    parsed.Answer,
		FollowUps: parsed.FollowUps,
		Chart:     parsed.Chart,
	})
}

// finish appends the produced answer as a model turn and returns the reply
// together with the full exchange. Callers must hold h.mu.
func (r *Router) finish(h *History, userTurn types.Turn, reply types.RoutedReply) (types.RoutedReply, []types.Turn) {
	modelTurn := h.append(types.RoleModel, reply.Answer)
	return reply, []types.Turn{userTurn, modelTurn}
}
