package schema

// TextProcessRequest is raw text submitted for ingestion.
type TextProcessRequest struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

type textProcessRequestWire struct {
	Text  *string `json:"text"`
	Title *string `json:"title"`
}

// ParseTextProcessRequest validates raw JSON into a TextProcessRequest.
func ParseTextProcessRequest(data []byte) (TextProcessRequest, error) {
	var w textProcessRequestWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return TextProcessRequest{}, err
	}

	switch {
	case w.Text == nil:
		v.missing("text")
	case len(*w.Text) < 1:
		v.add("text", "min length 1", *w.Text)
	}
	if err := v.err(); err != nil {
		return TextProcessRequest{}, err
	}

	req := TextProcessRequest{Text: *w.Text}
	if w.Title != nil {
		req.Title = *w.Title
	}
	return req, nil
}

// DocumentUploadResponse is the outcome of ingesting one document.
type DocumentUploadResponse struct {
	Success          bool    `json:"success"`
	DocumentID       string  `json:"document_id"`
	Title            string  `json:"title"`
	ChunksCreated    int     `json:"chunks_created"`
	LinksExtracted   int     `json:"links_extracted"`
	ImagesExtracted  int     `json:"images_extracted"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
}

type documentUploadResponseWire struct {
	Success          *bool    `json:"success"`
	DocumentID       *string  `json:"document_id"`
	Title            *string  `json:"title"`
	ChunksCreated    *int     `json:"chunks_created"`
	LinksExtracted   *int     `json:"links_extracted"`
	ImagesExtracted  *int     `json:"images_extracted"`
	ProcessingTimeMS *float64 `json:"processing_time_ms"`
}

// ParseDocumentUploadResponse validates raw JSON into a DocumentUploadResponse.
// links_extracted and images_extracted default to 0 when absent.
func ParseDocumentUploadResponse(data []byte) (DocumentUploadResponse, error) {
	var w documentUploadResponseWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return DocumentUploadResponse{}, err
	}

	if w.Success == nil {
		v.missing("success")
	}
	if w.DocumentID == nil {
		v.missing("document_id")
	}
	if w.Title == nil {
		v.missing("title")
	}
	requireCount(&v, "chunks_created", w.ChunksCreated)
	if w.LinksExtracted != nil && *w.LinksExtracted < 0 {
		v.add("links_extracted", "must be non-negative", *w.LinksExtracted)
	}
	if w.ImagesExtracted != nil && *w.ImagesExtracted < 0 {
		v.add("images_extracted", "must be non-negative", *w.ImagesExtracted)
	}
	switch {
	case w.ProcessingTimeMS == nil:
		v.missing("processing_time_ms")
	case *w.ProcessingTimeMS < 0:
		v.add("processing_time_ms", "must be non-negative", *w.ProcessingTimeMS)
	}
	if err := v.err(); err != nil {
		return DocumentUploadResponse{}, err
	}

	resp := DocumentUploadResponse{
		Success:          *w.Success,
		DocumentID:       *w.DocumentID,
		Title:            *w.Title,
		ChunksCreated:    *w.ChunksCreated,
		ProcessingTimeMS: *w.ProcessingTimeMS,
	}
	if w.LinksExtracted != nil {
		resp.LinksExtracted = *w.LinksExtracted
	}
	if w.ImagesExtracted != nil {
		resp.ImagesExtracted = *w.ImagesExtracted
	}
	return resp, nil
}

// requireCount checks a required non-negative integer field.
func requireCount(v *violations, field string, val *int) {
	switch {
	case val == nil:
		v.missing(field)
	case *val < 0:
		v.add(field, "must be non-negative", *val)
	}
}
