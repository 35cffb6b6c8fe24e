// Package wiki provides fetching, structural extraction, and link discovery
// for MediaWiki-hosted game wikis.
package wiki

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// DefaultSection labels chunks that appear before the first heading.
	DefaultSection = "Introduction"

	// InfoboxSection is the reserved section label for infobox summary chunks.
	InfoboxSection = "Infobox Summary"

	// MinChunkLen is the minimum rendered content length in bytes.
	// Shorter fragments are noise that degrades embedding quality.
	MinChunkLen = 50
)

// Metadata carries the provenance of a chunk.
type Metadata struct {
	// Source is the full URL of the page the chunk came from.
	Source string `json:"source"`

	// PageTitle is the page's display title.
	PageTitle string `json:"pageTitle"`

	// SectionTitle is the heading the chunk appeared under.
	SectionTitle string `json:"sectionTitle"`
}

// Chunk is one retrievable unit of extracted page text.
type Chunk struct {
	// Content is the rendered prose, list, or table text.
	Content string `json:"content"`

	// Metadata is the chunk's provenance.
	Metadata Metadata `json:"metadata"`
}

// ID returns a stable content-derived identifier for the chunk.
// Re-ingesting unchanged content produces the same ID, so repeated
// ingestion runs upsert in place instead of accumulating duplicates.
func (c Chunk) ID() string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", c.Metadata.Source, c.Metadata.SectionTitle, c.Content))
	return "chunk-" + hex.EncodeToString(h[:8])
}

// FilterShort drops chunks whose content is below MinChunkLen.
// The filter is idempotent; applying it twice is the same as once.
func FilterShort(chunks []Chunk) []Chunk {
	kept := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Content) >= MinChunkLen {
			kept = append(kept, c)
		}
	}
	return kept
}
