package processing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Chunker splits extracted document text into paragraph chunks, windowing
// paragraphs longer than Size with Overlap characters of carry-over.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return Chunker{Size: size, Overlap: overlap}
}

func (c Chunker) Split(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, c.window(p)...)
	}
	return out
}

// ChunkText splits with the default sizes.
func ChunkText(text string) []string {
	return NewChunker(DefaultChunkSize, DefaultChunkOverlap).Split(text)
}

// window works on runes so multi-byte text from OCR and transcripts is never cut mid-character.
func (c Chunker) window(s string) []string {
	if utf8.RuneCountInString(s) <= c.Size {
		return []string{s}
	}
	runes := []rune(s)
	step := c.Size - c.Overlap
	var res []string
	for i := 0; i < len(runes); i += step {
		end := i + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[i:end])); chunk != "" {
			res = append(res, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return res
}
