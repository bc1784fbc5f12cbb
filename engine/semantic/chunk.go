package semantic

import (
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target number of tokens per chunk.
	DefaultChunkSize = 512
	// DefaultOverlap is the number of overlapping tokens between chunks.
	DefaultOverlap = 50
)

// Chunk is a slice of manual text sized for embedding.
type Chunk struct {
	Text     string
	Index    int
	ManualID string
}

// ChunkText splits manual text into overlapping chunks on sentence
// boundaries. Token count is approximated as word count.
func ChunkText(manualID, text string, chunkSize, overlap int) []Chunk {
	return chunkSentences(manualID, splitSentences(text), chunkSize, overlap)
}

// splitSentences splits text into sentences using punctuation and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if r == '\n' || i == len(text)-1 || (i+1 < len(text) && unicode.IsSpace(rune(text[i+1]))) {
				s := strings.TrimSpace(current.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func chunkSentences(manualID string, sentences []string, chunkSize, overlap int) []Chunk {
	if len(sentences) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []Chunk
	idx := 0
	start := 0

	for start < len(sentences) {
		var buf strings.Builder
		tokens := 0
		end := start

		for end < len(sentences) {
			words := wordCount(sentences[end])
			if tokens+words > chunkSize && tokens > 0 {
				break
			}
			if buf.Len() > 0 {
				buf.WriteRune(' ')
			}
			buf.WriteString(sentences[end])
			tokens += words
			end++
		}

		chunks = append(chunks, Chunk{
			Text:     buf.String(),
			Index:    idx,
			ManualID: manualID,
		})
		idx++

		if end == len(sentences) {
			break
		}

		// Move start back by overlap amount.
		overlapTokens := 0
		newStart := end
		for newStart > start && overlapTokens < overlap {
			newStart--
			overlapTokens += wordCount(sentences[newStart])
		}
		if newStart == start {
			// Ensure forward progress.
			start = end
		} else {
			start = newStart
		}
	}
	return chunks
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
