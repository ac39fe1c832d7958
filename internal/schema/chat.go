package schema

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a conversation turn.
type Role string

// Accepted role values. Anything else is a validation failure, never a
// silent default.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid checks if the role is one of the supported values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type chatMessageWire struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// ParseChatMessage validates raw JSON into a ChatMessage.
func ParseChatMessage(data []byte) (ChatMessage, error) {
	var w chatMessageWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return ChatMessage{}, err
	}

	switch {
	case w.Role == nil:
		v.missing("role")
	case !Role(*w.Role).IsValid():
		v.add("role", `must be "user" or "assistant"`, *w.Role)
	}
	if w.Content == nil {
		v.missing("content")
	}
	if err := v.err(); err != nil {
		return ChatMessage{}, err
	}

	return ChatMessage{Role: Role(*w.Role), Content: *w.Content}, nil
}

// QueryRequest is a user query with optional session and history context.
// ChatHistory preserves conversation order.
type QueryRequest struct {
	Query       string        `json:"query"`
	SessionID   string        `json:"session_id,omitempty"`
	ChatHistory []ChatMessage `json:"chat_history"`
}

type queryRequestWire struct {
	Query       *string           `json:"query"`
	SessionID   *string           `json:"session_id"`
	ChatHistory []json.RawMessage `json:"chat_history"`
}

// ParseQueryRequest validates raw JSON into a QueryRequest.
// chat_history defaults to an empty sequence when absent or null.
func ParseQueryRequest(data []byte) (QueryRequest, error) {
	var w queryRequestWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return QueryRequest{}, err
	}

	switch {
	case w.Query == nil:
		v.missing("query")
	case len(*w.Query) < 1:
		v.add("query", "min length 1", *w.Query)
	}

	history := make([]ChatMessage, 0, len(w.ChatHistory))
	for i, raw := range w.ChatHistory {
		msg, err := ParseChatMessage(raw)
		if err != nil {
			v.nested(fmt.Sprintf("chat_history[%d]", i), err)
			continue
		}
		history = append(history, msg)
	}
	if err := v.err(); err != nil {
		return QueryRequest{}, err
	}

	req := QueryRequest{Query: *w.Query, ChatHistory: history}
	if w.SessionID != nil {
		req.SessionID = *w.SessionID
	}
	return req, nil
}
