// Package chunker splits documents into overlapping text chunks for retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"docuchat/internal/model"
	"docuchat/internal/pkg/pdfextract"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the number of characters carried over from the
	// previous chunk, so context severed at a boundary is preserved.
	DefaultChunkOverlap = 100
)

// ErrNoExtractableText is returned when a document parses but contains no text.
var ErrNoExtractableText = errors.New("document contains no extractable text")

// Separators in decreasing priority: paragraph, line, sentence, word.
var separators = []string{"\n\n", "\n", ". ", " "}

type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
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

// ChunkFile parses the PDF at filePath and returns its chunks, each carrying
// the document's provenance metadata. The whole document is parsed before any
// chunk is returned, since page metadata requires full structural parsing.
func (c *Chunker) ChunkFile(documentName, filePath string) ([]model.Chunk, error) {
	pages, err := pdfextract.ExtractPages(filePath)
	if err != nil {
		return nil, fmt.Errorf("parse document %q failed: %w", documentName, err)
	}

	var chunks []model.Chunk
	for _, page := range pages {
		for _, text := range c.Split(page.Text) {
			chunks = append(chunks, model.Chunk{
				ID:   uuid.New().String(),
				Text: text,
				Metadata: model.ChunkMetadata{
					DocumentName: documentName,
					FilePath:     filePath,
					SourcePage:   page.Number,
				},
			})
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %q: %w", documentName, ErrNoExtractableText)
	}
	return chunks, nil
}

// Split cuts text into chunks of at most c.size characters. Consecutive
// chunks share the trailing c.overlap characters of the previous chunk.
// Separators are retained, so concatenating the non-overlapping portions
// reconstructs the input.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// Units must leave room for the carried overlap.
	unitMax := c.size - c.overlap
	units := splitRecursive(text, separators, unitMax)
	return c.merge(units)
}

// splitRecursive splits text on the first separator that helps, recursing
// into oversized parts with the remaining separators. Separators stay
// attached to the preceding part so no characters are lost.
func splitRecursive(text string, seps []string, max int) []string {
	if utf8.RuneCountInString(text) <= max {
		return []string{text}
	}
	if len(seps) == 0 {
		return hardCut(text, max)
	}
	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return splitRecursive(text, seps[1:], max)
	}
	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= max {
			out = append(out, part)
			continue
		}
		out = append(out, splitRecursive(part, seps[1:], max)...)
	}
	return out
}

// hardCut is the last resort for text with no usable separators.
func hardCut(text string, max int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += max {
		end := i + max
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// merge packs units into chunks up to c.size characters, seeding every chunk
// after the first with the previous chunk's trailing overlap.
func (c *Chunker) merge(units []string) []string {
	var chunks []string
	carry := ""
	current := ""
	for _, unit := range units {
		if current != carry || current == "" {
			if utf8.RuneCountInString(current)+utf8.RuneCountInString(unit) > c.size {
				chunks = append(chunks, current)
				carry = tailRunes(current, c.overlap)
				current = carry
			}
		}
		current += unit
	}
	if current != carry || len(chunks) == 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
