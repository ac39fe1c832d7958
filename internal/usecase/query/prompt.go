package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/ragdex/internal/schema"
)

const groundedSystemPrompt = `You are a helpful assistant that answers questions using the provided context.
Cite the context blocks you rely on by their bracketed numbers, for example [1] or [2].
If the context does not contain the answer, say so plainly instead of guessing.`

const generalSystemPrompt = `You are a helpful assistant. The knowledge base had no relevant material for this question, so answer from general knowledge and say that no supporting documents were found.`

// buildContextPrompt renders the reranked chunks as numbered context
// blocks appended to the grounded system prompt. Block numbers match
// the source reference ids returned to the caller.
func buildContextPrompt(chunks []schema.RerankedChunk) string {
	var b strings.Builder
	b.WriteString(groundedSystemPrompt)
	b.WriteString("\n\nContext:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, strings.TrimSpace(c.Text))
	}
	return b.String()
}

// snippet shortens chunk text for the source listing, cutting at a word
// boundary where possible and never inside a multibyte rune.
func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := strings.LastIndexByte(text[:max], ' ')
	if cut <= 0 {
		cut = max
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
	}
	return text[:cut] + "..."
}
