package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	fields := make([]string, len(verr.Violations))
	for i, v := range verr.Violations {
		fields[i] = v.Field
	}
	return fields
}

func hasViolation(t *testing.T, err error, field, rule string) bool {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	for _, v := range verr.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

func TestParseTextProcessRequest_Valid(t *testing.T) {
	req, err := ParseTextProcessRequest([]byte(`{"text":"# Setup\n\nInstall it.","title":"Setup Guide"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text != "# Setup\n\nInstall it." {
		t.Errorf("unexpected text: %q", req.Text)
	}
	if req.Title != "Setup Guide" {
		t.Errorf("unexpected title: %q", req.Title)
	}
}

func TestParseTextProcessRequest_TitleOptional(t *testing.T) {
	req, err := ParseTextProcessRequest([]byte(`{"text":"hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Title != "" {
		t.Errorf("expected empty title, got %q", req.Title)
	}
}

func TestParseTextProcessRequest_EmptyText(t *testing.T) {
	_, err := ParseTextProcessRequest([]byte(`{"text":""}`))
	if err == nil {
		t.Fatal("expected error for empty text")
	}
	if !hasViolation(t, err, "text", "min length 1") {
		t.Errorf("expected violation on text, got %v", err)
	}
}

func TestParseTextProcessRequest_MissingText(t *testing.T) {
	_, err := ParseTextProcessRequest([]byte(`{"title":"no body"}`))
	if err == nil {
		t.Fatal("expected error for missing text")
	}
	if !hasViolation(t, err, "text", "required field is missing") {
		t.Errorf("expected missing-field violation on text, got %v", err)
	}
}

func TestParseTextProcessRequest_WrongType(t *testing.T) {
	_, err := ParseTextProcessRequest([]byte(`{"text":123}`))
	if err == nil {
		t.Fatal("expected error for numeric text")
	}
	fields := violationFields(t, err)
	if len(fields) != 1 || fields[0] != "text" {
		t.Errorf("expected single type violation on text, got %v", fields)
	}
}

func TestParseTextProcessRequest_MalformedJSON(t *testing.T) {
	_, err := ParseTextProcessRequest([]byte(`{"text": "unterminated`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Errorf("malformed JSON must not be a validation error, got %v", verr)
	}
}

func TestParseDocumentUploadResponse_Valid(t *testing.T) {
	raw := `{
		"success": true,
		"document_id": "doc-1",
		"title": "Setup Guide",
		"chunks_created": 3,
		"links_extracted": 2,
		"images_extracted": 1,
		"processing_time_ms": 152.4
	}`
	resp, err := ParseDocumentUploadResponse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.ChunksCreated != 3 || resp.LinksExtracted != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestParseDocumentUploadResponse_CountsDefaultToZero(t *testing.T) {
	raw := `{
		"success": true,
		"document_id": "doc-1",
		"title": "t",
		"chunks_created": 1,
		"processing_time_ms": 10
	}`
	resp, err := ParseDocumentUploadResponse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LinksExtracted != 0 || resp.ImagesExtracted != 0 {
		t.Errorf("expected zero defaults, got links=%d images=%d", resp.LinksExtracted, resp.ImagesExtracted)
	}
}

func TestParseDocumentUploadResponse_NegativeCounts(t *testing.T) {
	raw := `{
		"success": true,
		"document_id": "doc-1",
		"title": "t",
		"chunks_created": -1,
		"links_extracted": -2,
		"images_extracted": -3,
		"processing_time_ms": -4
	}`
	_, err := ParseDocumentUploadResponse([]byte(raw))
	if err == nil {
		t.Fatal("expected error for negative counts")
	}

	fields := violationFields(t, err)
	want := []string{"chunks_created", "links_extracted", "images_extracted", "processing_time_ms"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d violations, got %d: %v", len(want), len(fields), fields)
	}
	for _, f := range want {
		if !hasViolation(t, err, f, "must be non-negative") {
			t.Errorf("expected non-negative violation on %s", f)
		}
	}
}

func TestParseDocumentUploadResponse_CollectsAllMissing(t *testing.T) {
	_, err := ParseDocumentUploadResponse([]byte(`{}`))
	if err == nil {
		t.Fatal("expected error for empty object")
	}
	fields := violationFields(t, err)
	// Every required field reported in one pass, not just the first.
	want := []string{"success", "document_id", "title", "chunks_created", "processing_time_ms"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d violations, got %d: %v", len(want), len(fields), fields)
	}
}

func TestDocumentUploadResponse_RoundTrip(t *testing.T) {
	orig := DocumentUploadResponse{
		Success:          true,
		DocumentID:       "doc-9",
		Title:            "Round Trip",
		ChunksCreated:    4,
		ProcessingTimeMS: 88.5,
	}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseDocumentUploadResponse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != orig {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, orig)
	}
}
