package ingest

import (
	"regexp"
	"strings"
)

// Chunking defaults, in characters.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// Chunk is one split unit of a document, tagged with the markdown
// section it appeared under.
type Chunk struct {
	Text    string
	Section string
}

// Chunker splits document text into overlapping chunks along paragraph
// boundaries.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Non-positive size falls back to the
// defaults; overlap is clamped below size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

var (
	paragraphSplit = regexp.MustCompile(`\n{2,}`)
	headingLine    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
)

// Split cuts text into chunks. Paragraphs are kept whole when they fit;
// a paragraph larger than the chunk size is hard-split with overlap.
// Markdown headings set the section of the following chunks.
func (c *Chunker) Split(text string) []Chunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		chunks  []Chunk
		current strings.Builder
		section string
	)

	flush := func() {
		t := strings.TrimSpace(current.String())
		if t != "" {
			chunks = append(chunks, Chunk{Text: t, Section: section})
		}
		current.Reset()
	}

	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if m := headingLine.FindStringSubmatch(firstLine(para)); m != nil {
			// A heading starts a new section and therefore a new chunk.
			flush()
			section = strings.TrimSpace(m[2])
		}

		if len(para) > c.size {
			flush()
			for _, piece := range c.hardSplit(para) {
				chunks = append(chunks, Chunk{Text: piece, Section: section})
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(para)+2 > c.size {
			tail := overlapTail(current.String(), c.overlap)
			flush()
			if tail != "" {
				current.WriteString(tail)
				current.WriteString("\n\n")
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// hardSplit cuts an oversized paragraph into size-length windows,
// stepping back by the overlap.
func (c *Chunker) hardSplit(para string) []string {
	step := c.size - c.overlap
	var pieces []string
	for start := 0; start < len(para); start += step {
		end := start + c.size
		if end >= len(para) {
			pieces = append(pieces, strings.TrimSpace(para[start:]))
			break
		}
		pieces = append(pieces, strings.TrimSpace(para[start:end]))
	}
	return pieces
}

// overlapTail returns the last n characters of s, extended left to the
// nearest whitespace so the overlap starts on a word boundary.
func overlapTail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return ""
	}
	tail := s[len(s)-n:]
	if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

var (
	imageRef = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	linkRef  = regexp.MustCompile(`(^|[^!])\[[^\]]*\]\((https?://[^)\s]+)\)`)
)

// ExtractLinks returns the unique markdown link URLs in text, in order
// of first appearance. Image references are not counted as links.
func ExtractLinks(text string) []string {
	matches := linkRef.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if url := m[2]; !seen[url] {
			seen[url] = true
			out = append(out, url)
		}
	}
	return out
}

// ExtractImages returns the unique markdown image references in text,
// in order of first appearance.
func ExtractImages(text string) []string {
	matches := imageRef.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if src := m[1]; !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}
