package types

import (
	"time"

	"datachat/chart"

	"github.com/google/uuid"
)

// AgentMessage represents a message in the format expected by the completion service.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is a single message in the conversation log. Turns are immutable once
// appended; the log only ever grows, except on explicit reset.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ReplyKind classifies a routed reply.
type ReplyKind string

const (
	KindCasual      ReplyKind = "casual"
	KindGibberish   ReplyKind = "gibberish"
	KindOutOfDomain ReplyKind = "out-of-domain"
	KindAnalytics   ReplyKind = "analytics"
	KindError       ReplyKind = "error"
)

// RoutedReply is the router's sole output contract. It is always fully
// populated before being returned; a missing chart is expressed as nil,
// never as a partially built spec.
type RoutedReply struct {
	Kind      ReplyKind   `json:"kind"`
	Answer    string      `json:"answer"`
	FollowUps []string    `json:"followUps"`
	Chart     *chart.Spec `json:"chart,omitempty"`
}

// Session represents a chat session.
type Session struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	LastActive time.Time
	Title      string
	IsActive   bool
}
