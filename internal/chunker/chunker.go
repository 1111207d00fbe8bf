// Package chunker splits document text into bounded, overlapping pieces
// used as the unit of retrieval. Splitting is a pure transformation with
// no side effects.
package chunker

import (
	"fmt"
	"strings"
)

// separators are tried in order when looking for a natural boundary:
// paragraph break, line break, sentence end, word boundary.
var separators = []string{"\n\n", "\n", ". ", " "}

// Segment is one ordered unit of source text with optional metadata
// carried from the loader (e.g. the source file key).
type Segment struct {
	Text     string
	Metadata map[string]any
}

// Piece is one emitted chunk. Order is 1-based over the full output for
// a single document and strictly increasing in split order.
type Piece struct {
	Text     string
	Metadata map[string]any
	Order    int
}

// Splitter splits text into pieces of at most ChunkSize runes where
// consecutive pieces share roughly Overlap runes of trailing context.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// New validates the chunking parameters and returns a Splitter.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}, nil
}

// Split produces the ordered chunk sequence for one document. Output order
// matches input segment order; empty input yields an empty slice.
func (s *Splitter) Split(segments []Segment) []Piece {
	var pieces []Piece
	order := 1
	for _, seg := range segments {
		for _, text := range s.splitText(seg.Text) {
			pieces = append(pieces, Piece{
				Text:     text,
				Metadata: seg.Metadata,
				Order:    order,
			})
			order++
		}
	}
	return pieces
}

// splitText slides a window of at most ChunkSize runes over the text,
// preferring natural boundaries for the cut and stepping back Overlap
// runes between windows.
func (s *Splitter) splitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}

		cut := s.findCut(runes[start:end]) + start
		out = append(out, string(runes[start:cut]))

		// Step back to carry overlap into the next piece, always making
		// forward progress.
		next := cut - s.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return out
}

// findCut returns the rune offset to cut a full window at. It picks the
// last occurrence of the highest-priority separator that still leaves at
// least half a window of content; a raw cut at the window end is the
// fallback. The half-window floor keeps a separator near the window start
// from producing a near-empty piece.
func (s *Splitter) findCut(window []rune) int {
	minCut := s.ChunkSize / 2
	if minCut <= s.Overlap {
		minCut = s.Overlap + 1
	}

	text := string(window)
	for _, sep := range separators {
		idx := strings.LastIndex(text, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(text[:idx])) + len([]rune(sep))
		if cut >= minCut {
			return cut
		}
	}
	return len(window)
}
