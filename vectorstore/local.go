package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philippgille/chromem-go"
)

// localCollection names the single collection the local store keeps.
const localCollection = "wiki-chunks"

// Local is an embedded vector store backed by chromem-go. It lets ingest
// and serve run end to end without a Pinecone account, with vectors
// persisted to a local directory.
type Local struct {
	collection *chromem.Collection
	logger     *slog.Logger
}

// NewLocal opens (or creates) a persistent local store at path.
// An empty path keeps the store in memory, which is what tests want.
func NewLocal(path string, logger *slog.Logger) (*Local, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open local vector store: %w", err)
		}
	}

	// Embeddings are always supplied by the caller, so the collection's
	// own embedding func must never run.
	collection, err := db.GetOrCreateCollection(localCollection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &Local{collection: collection, logger: logger}, nil
}

// rejectEmbedding guards against chromem computing embeddings itself.
func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("local store requires precomputed embeddings")
}

// Upsert writes one batch of records to the local collection.
func (l *Local) Upsert(ctx context.Context, records []Record) error {
	for _, rec := range records {
		doc := chromem.Document{
			ID:        rec.ID,
			Content:   rec.Metadata.Text,
			Embedding: rec.Values,
			Metadata: map[string]string{
				"source":       rec.Metadata.Source,
				"pageTitle":    rec.Metadata.PageTitle,
				"sectionTitle": rec.Metadata.SectionTitle,
			},
		}
		if err := l.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("add document %s: %w", rec.ID, err)
		}
	}

	l.logger.Debug("Upserted vectors locally", "count", len(records))
	return nil
}

// Query returns up to topK nearest records from the local collection.
func (l *Local) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	// chromem rejects nResults above the collection size.
	if count := l.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := l.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query local store: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, Match{
			ID:    res.ID,
			Score: res.Similarity,
			Metadata: RecordMetadata{
				Text:         res.Content,
				Source:       res.Metadata["source"],
				PageTitle:    res.Metadata["pageTitle"],
				SectionTitle: res.Metadata["sectionTitle"],
			},
		})
	}
	return matches, nil
}
