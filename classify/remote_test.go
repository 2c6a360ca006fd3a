package classify

import (
	"context"
	"errors"
	"testing"

	"datachat/web/types"

	"go.uber.org/zap"
)

type stubCompleter struct {
	calls int
	reply string
	err   error
}

func (s *stubCompleter) Chat(ctx context.Context, messages []types.AgentMessage, temperature *float64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestRemoteIntentVerdicts(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"plain yes", "YES", true},
		{"yes with prose", "Yes, this is about analytics.", true},
		{"plain no", "NO", false},
		{"unparseable reply", "maybe?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ri, err := NewRemoteIntent(&stubCompleter{reply: tt.reply}, 8, zap.NewNop())
			if err != nil {
				t.Fatalf("NewRemoteIntent: %v", err)
			}
			if got := ri.IsAnalytics(context.Background(), "tell me about averages"); got != tt.want {
				t.Errorf("IsAnalytics = %v, want %v for reply %q", got, tt.want, tt.reply)
			}
		})
	}
}

func TestRemoteIntentFailureDefaultsToFalse(t *testing.T) {
	stub := &stubCompleter{err: errors.New("service unavailable")}
	ri, err := NewRemoteIntent(stub, 8, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRemoteIntent: %v", err)
	}

	if ri.IsAnalytics(context.Background(), "some query") {
		t.Error("IsAnalytics = true on transport failure, want restrictive false")
	}
	// Failures are not cached; the next call retries.
	ri.IsAnalytics(context.Background(), "some query")
	if stub.calls != 2 {
		t.Errorf("calls = %d, want 2 (no caching of failures)", stub.calls)
	}
}

func TestRemoteIntentCachesVerdicts(t *testing.T) {
	stub := &stubCompleter{reply: "YES"}
	ri, err := NewRemoteIntent(stub, 8, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRemoteIntent: %v", err)
	}

	ri.IsAnalytics(context.Background(), "Compare averages")
	// Same query normalized differently must hit the cache.
	if !ri.IsAnalytics(context.Background(), "  compare averages  ") {
		t.Error("cached verdict lost")
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1 (second lookup served from cache)", stub.calls)
	}
}
