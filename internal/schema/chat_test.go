package schema

import (
	"encoding/json"
	"testing"
)

func TestRole_IsValid(t *testing.T) {
	cases := []struct {
		role  Role
		valid bool
	}{
		{RoleUser, true},
		{RoleAssistant, true},
		{"moderator", false},
		{"system", false},
		{"User", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := tc.role.IsValid(); got != tc.valid {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tc.role, got, tc.valid)
		}
	}
}

func TestParseChatMessage_Valid(t *testing.T) {
	msg, err := ParseChatMessage([]byte(`{"role":"assistant","content":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != RoleAssistant || msg.Content != "hi" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestParseChatMessage_UnknownRole(t *testing.T) {
	_, err := ParseChatMessage([]byte(`{"role":"moderator","content":"hi"}`))
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	if !hasViolation(t, err, "role", `must be "user" or "assistant"`) {
		t.Errorf("expected role violation, got %v", err)
	}
}

func TestParseChatMessage_EmptyContentAllowed(t *testing.T) {
	msg, err := ParseChatMessage([]byte(`{"role":"user","content":""}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content != "" {
		t.Errorf("unexpected content: %q", msg.Content)
	}
}

func TestParseChatMessage_MissingBoth(t *testing.T) {
	_, err := ParseChatMessage([]byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	fields := violationFields(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 violations, got %v", fields)
	}
}

func TestParseQueryRequest_Minimal(t *testing.T) {
	req, err := ParseQueryRequest([]byte(`{"query":"how do I install?"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Query != "how do I install?" {
		t.Errorf("unexpected query: %q", req.Query)
	}
	if req.SessionID != "" {
		t.Errorf("expected empty session id, got %q", req.SessionID)
	}
	if req.ChatHistory == nil {
		t.Fatal("chat history must default to an empty slice, not nil")
	}
	if len(req.ChatHistory) != 0 {
		t.Errorf("expected empty history, got %v", req.ChatHistory)
	}
}

func TestParseQueryRequest_HistoryRoundTrip(t *testing.T) {
	// An absent history must serialize back as [] rather than null.
	req, err := ParseQueryRequest([]byte(`{"query":"q"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(out["chat_history"]) != "[]" {
		t.Errorf("chat_history = %s, want []", out["chat_history"])
	}
}

func TestParseQueryRequest_WithHistory(t *testing.T) {
	raw := `{
		"query": "and then?",
		"session_id": "sess-1",
		"chat_history": [
			{"role": "user", "content": "first question"},
			{"role": "assistant", "content": "first answer"}
		]
	}`
	req, err := ParseQueryRequest([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.SessionID != "sess-1" {
		t.Errorf("unexpected session id: %q", req.SessionID)
	}
	if len(req.ChatHistory) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(req.ChatHistory))
	}
	if req.ChatHistory[0].Role != RoleUser || req.ChatHistory[1].Role != RoleAssistant {
		t.Errorf("turn order not preserved: %+v", req.ChatHistory)
	}
}

func TestParseQueryRequest_EmptyQuery(t *testing.T) {
	_, err := ParseQueryRequest([]byte(`{"query":""}`))
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if !hasViolation(t, err, "query", "min length 1") {
		t.Errorf("expected query violation, got %v", err)
	}
}

func TestParseQueryRequest_BadHistoryElement(t *testing.T) {
	raw := `{
		"query": "q",
		"chat_history": [
			{"role": "user", "content": "fine"},
			{"role": "robot", "content": "bad"}
		]
	}`
	_, err := ParseQueryRequest([]byte(raw))
	if err == nil {
		t.Fatal("expected error for bad history element")
	}
	if !hasViolation(t, err, "chat_history[1].role", `must be "user" or "assistant"`) {
		t.Errorf("expected prefixed violation, got %v", err)
	}
}

func TestParseQueryRequest_CollectsQueryAndHistoryViolations(t *testing.T) {
	raw := `{
		"query": "",
		"chat_history": [{"role": "x", "content": "c"}]
	}`
	_, err := ParseQueryRequest([]byte(raw))
	if err == nil {
		t.Fatal("expected error")
	}
	fields := violationFields(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 violations, got %v", fields)
	}
}

func TestParseQueryRequest_TypeMismatchDoesNotMaskOtherViolations(t *testing.T) {
	raw := `{
		"query": 5,
		"chat_history": [{"role": "moderator", "content": "x"}]
	}`
	_, err := ParseQueryRequest([]byte(raw))
	if err == nil {
		t.Fatal("expected error")
	}
	fields := violationFields(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 violations, got %v", fields)
	}
	if fields[0] != "query" {
		t.Errorf("expected type violation on query, got %v", fields)
	}
	if !hasViolation(t, err, "chat_history[0].role", `must be "user" or "assistant"`) {
		t.Errorf("expected prefixed role violation, got %v", err)
	}
}

func TestParseQueryRequest_CollectsMultipleTypeMismatches(t *testing.T) {
	_, err := ParseQueryRequest([]byte(`{"query": 5, "session_id": 7}`))
	if err == nil {
		t.Fatal("expected error")
	}
	fields := violationFields(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 violations, got %v", fields)
	}
	want := map[string]bool{"query": true, "session_id": true}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected violation field %q in %v", f, fields)
		}
	}
}
