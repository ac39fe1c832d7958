package schema

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

func TestParseChunkMetadataAt_Defaults(t *testing.T) {
	raw := `{"source":"doc-1","title":"Guide","chunk_id":"c1"}`
	m, err := ParseChunkMetadataAt([]byte(raw), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Links == nil || len(m.Links) != 0 {
		t.Errorf("links must default to empty slice, got %v", m.Links)
	}
	if m.Images == nil || len(m.Images) != 0 {
		t.Errorf("images must default to empty slice, got %v", m.Images)
	}
	if m.CreatedAt != "2025-03-14T09:26:53.589793" {
		t.Errorf("created_at = %q, want stamped default", m.CreatedAt)
	}
	if m.Section != "" {
		t.Errorf("section must default empty, got %q", m.Section)
	}
}

func TestParseChunkMetadataAt_ExplicitCreatedAtKept(t *testing.T) {
	raw := `{"source":"s","title":"t","chunk_id":"c","created_at":"2024-01-01T00:00:00.000000"}`
	m, err := ParseChunkMetadataAt([]byte(raw), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.CreatedAt != "2024-01-01T00:00:00.000000" {
		t.Errorf("explicit created_at overwritten: %q", m.CreatedAt)
	}
}

func TestParseChunkMetadata_MissingRequired(t *testing.T) {
	_, err := ParseChunkMetadata([]byte(`{"section":"intro"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	fields := violationFields(t, err)
	if len(fields) != 3 {
		t.Fatalf("expected 3 violations (source, title, chunk_id), got %v", fields)
	}
}

func TestParseRetrievedChunk_Valid(t *testing.T) {
	raw := `{
		"chunk_id": "c1",
		"text": "some text",
		"score": 0.82,
		"metadata": {"source":"doc-1","title":"Guide","chunk_id":"c1"}
	}`
	c, err := ParseRetrievedChunk([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Score != 0.82 || c.Metadata.Source != "doc-1" {
		t.Errorf("unexpected chunk: %+v", c)
	}
}

func TestParseRetrievedChunk_MissingMetadata(t *testing.T) {
	_, err := ParseRetrievedChunk([]byte(`{"chunk_id":"c1","text":"t","score":0.5}`))
	if err == nil {
		t.Fatal("expected error for missing metadata")
	}
	if !hasViolation(t, err, "metadata", "required field is missing") {
		t.Errorf("expected metadata violation, got %v", err)
	}
}

func TestParseRetrievedChunk_NestedMetadataViolation(t *testing.T) {
	raw := `{
		"chunk_id": "c1",
		"text": "t",
		"score": 0.5,
		"metadata": {"title": "only title", "chunk_id": "c1"}
	}`
	_, err := ParseRetrievedChunk([]byte(raw))
	if err == nil {
		t.Fatal("expected error")
	}
	if !hasViolation(t, err, "metadata.source", "required field is missing") {
		t.Errorf("expected prefixed metadata violation, got %v", err)
	}
}

func TestParseRerankedChunk_PreservesBothScores(t *testing.T) {
	raw := `{
		"chunk_id": "c1",
		"text": "t",
		"score": 0.95,
		"original_score": 0.71,
		"metadata": {"source":"s","title":"t","chunk_id":"c1"}
	}`
	c, err := ParseRerankedChunk([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Score != 0.95 {
		t.Errorf("score = %f, want 0.95", c.Score)
	}
	if c.OriginalScore != 0.71 {
		t.Errorf("original_score = %f, want 0.71", c.OriginalScore)
	}
}

func TestParseRerankedChunk_MissingOriginalScore(t *testing.T) {
	raw := `{
		"chunk_id": "c1",
		"text": "t",
		"score": 0.95,
		"metadata": {"source":"s","title":"t","chunk_id":"c1"}
	}`
	_, err := ParseRerankedChunk([]byte(raw))
	if err == nil {
		t.Fatal("expected error for missing original_score")
	}
	if !hasViolation(t, err, "original_score", "required field is missing") {
		t.Errorf("expected original_score violation, got %v", err)
	}
}

func TestFormatTimestamp(t *testing.T) {
	got := FormatTimestamp(testNow)
	if got != "2025-03-14T09:26:53.589793" {
		t.Errorf("FormatTimestamp = %q", got)
	}

	// Non-UTC instants are normalized before formatting.
	loc := time.FixedZone("UTC+3", 3*3600)
	got = FormatTimestamp(testNow.In(loc))
	if got != "2025-03-14T09:26:53.589793" {
		t.Errorf("FormatTimestamp with zone = %q", got)
	}
}
