// Package vectorstore defines the vector index seam used by ingestion and
// retrieval, with a Pinecone-backed implementation for production and an
// embedded chromem-go implementation for local development.
package vectorstore

import (
	"context"
)

// RecordMetadata is the provenance stored alongside each vector.
type RecordMetadata struct {
	// Text is the chunk content the vector was computed from.
	Text string `json:"text"`

	// Source is the URL of the originating page.
	Source string `json:"source"`

	// PageTitle is the originating page's display title.
	PageTitle string `json:"pageTitle"`

	// SectionTitle is the section the chunk appeared under.
	SectionTitle string `json:"sectionTitle"`
}

// Record is the persisted unit in the vector index.
type Record struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata RecordMetadata `json:"metadata"`
}

// Match is one retrieval result, ranked by similarity score descending.
type Match struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata RecordMetadata `json:"metadata"`
}

// Store is the narrow interface over an external vector index.
type Store interface {
	// Upsert writes one batch of records. The index owns storage
	// exclusively; callers only append or replace.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK nearest records with their metadata.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
