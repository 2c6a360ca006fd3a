package classify

import (
	"context"
	"strings"

	"datachat/prompts"
	"datachat/web/types"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Completer is the completion-service dependency of the remote classifier.
// Satisfied by *llmclient.Client.
type Completer interface {
	Chat(ctx context.Context, messages []types.AgentMessage, temperature *float64) (string, error)
}

// RemoteIntent resolves domain membership for queries the lexical rules
// could not place, by asking the completion service for a strict YES/NO.
// Verdicts are cached per normalized query so repeated ambiguous queries
// do not pay the network round-trip twice.
type RemoteIntent struct {
	llm    Completer
	cache  *lru.Cache
	logger *zap.Logger
}

func NewRemoteIntent(llm Completer, cacheSize int, logger *zap.Logger) (*RemoteIntent, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &RemoteIntent{
		llm:    llm,
		cache:  cache,
		logger: logger,
	}, nil
}

// IsAnalytics reports whether the query is about data/analytics topics.
// The reply is treated as affirmative iff it contains "yes" after
// normalization. On transport or parse failure the safe default is
// restrictive: false. A query that cannot be classified is refused rather
// than forwarded to the completion service.
func (r *RemoteIntent) IsAnalytics(ctx context.Context, query string) bool {
	key := strings.ToLower(strings.TrimSpace(query))
	if verdict, ok := r.cache.Get(key); ok {
		return verdict.(bool)
	}

	temperature := 0.0
	messages := []types.AgentMessage{
		{Role: "system", Content: prompts.IntentClassifier()},
		{Role: "user", Content: query},
	}

	reply, err := r.llm.Chat(ctx, messages, &temperature)
	if err != nil {
		r.logger.Warn("Remote intent classification failed, defaulting to out-of-domain",
			zap.Error(err))
		return false
	}

	verdict := strings.Contains(strings.ToLower(reply), "yes")
	r.cache.Add(key, verdict)
	return verdict
}
