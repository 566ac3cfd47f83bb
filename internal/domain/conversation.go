// Package domain holds the request-scoped entities exchanged with callers and
// upstream AI providers, and the error taxonomy shared by every operation.
package domain

import (
	"fmt"
	"time"
)

// Speaker is who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Role is the message role understood by the completion service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Wire values used by the web client in the "who" field.
const (
	WhoUser = "user"
	WhoAI   = "ai"
)

// ParseWho maps the client's "who" tag to a Speaker.
func ParseWho(who string) (Speaker, error) {
	switch who {
	case WhoUser:
		return SpeakerUser, nil
	case WhoAI:
		return SpeakerAssistant, nil
	}
	return "", fmt.Errorf("unrecognized speaker %q", who)
}

// Who returns the client-side tag for the speaker.
func (s Speaker) Who() (string, error) {
	switch s {
	case SpeakerUser:
		return WhoUser, nil
	case SpeakerAssistant:
		return WhoAI, nil
	}
	return "", fmt.Errorf("unrecognized speaker %q", string(s))
}

// Role maps the speaker to the completion service role.
func (s Speaker) Role() (Role, error) {
	switch s {
	case SpeakerUser:
		return RoleUser, nil
	case SpeakerAssistant:
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("unrecognized speaker %q", string(s))
}

// ParseRole validates a role supplied directly by a caller.
func ParseRole(role string) (Role, error) {
	switch Role(role) {
	case RoleSystem:
		return RoleSystem, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("unrecognized role %q", role)
}

// Turn is one immutable utterance in a conversation.
type Turn struct {
	ID      int64
	Speaker Speaker
	Text    string
}

// History is the ordered, caller-owned dialogue so far.
type History []Turn

// LastID returns the id of the final turn, or 0 for an empty history.
func (h History) LastID() int64 {
	if len(h) == 0 {
		return 0
	}
	return h[len(h)-1].ID
}

// NextID returns an id strictly greater than every id in h. It prefers the
// wall clock in milliseconds, matching ids minted by the web client.
// ParseHistory rejects a MaxInt64 id, so last+1 cannot overflow.
func (h History) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	if last := h.LastID(); id <= last {
		id = last + 1
	}
	return id
}

// Append returns a new history with t at the end; h is left untouched.
func (h History) Append(t Turn) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, t)
}

// Messages converts the history into role-tagged completion messages.
func (h History) Messages() ([]Message, error) {
	out := make([]Message, 0, len(h))
	for _, t := range h {
		role, err := t.Speaker.Role()
		if err != nil {
			return nil, err
		}
		out = append(out, Message{Role: role, Content: t.Text})
	}
	return out, nil
}

// Message is one role-tagged entry sent to the completion service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnResult is the outcome of a processed conversation turn.
type TurnResult struct {
	Transcript string `json:"transcript"`
	Reply      string `json:"reply"`
}
