package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLocal(t *testing.T) *Local {
	t.Helper()
	local, err := NewLocal("", nil)
	require.NoError(t, err)

	records := []Record{
		{ID: "chunk-aa", Values: []float32{1, 0, 0}, Metadata: RecordMetadata{
			Text: "Wraith is an interdimensional skirmisher.", Source: "https://example.test/wiki/Wraith",
			PageTitle: "Wraith", SectionTitle: "Introduction",
		}},
		{ID: "chunk-bb", Values: []float32{0, 1, 0}, Metadata: RecordMetadata{
			Text: "The R-301 is an assault rifle.", Source: "https://example.test/wiki/R-301_Carbine",
			PageTitle: "R-301 Carbine", SectionTitle: "Introduction",
		}},
		{ID: "chunk-cc", Values: []float32{0, 0, 1}, Metadata: RecordMetadata{
			Text: "Kings Canyon was the first map.", Source: "https://example.test/wiki/Maps",
			PageTitle: "Maps", SectionTitle: "History",
		}},
	}
	require.NoError(t, local.Upsert(context.Background(), records))
	return local
}

func TestLocal_QueryNearest(t *testing.T) {
	local := seedLocal(t)

	matches, err := local.Query(context.Background(), []float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "chunk-aa", matches[0].ID)
	assert.Equal(t, "Wraith", matches[0].Metadata.PageTitle)
	assert.Equal(t, "Introduction", matches[0].Metadata.SectionTitle)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestLocal_QueryClampsTopK(t *testing.T) {
	local := seedLocal(t)

	matches, err := local.Query(context.Background(), []float32{1, 0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestLocal_QueryEmptyStore(t *testing.T) {
	local, err := NewLocal("", nil)
	require.NoError(t, err)

	matches, err := local.Query(context.Background(), []float32{1, 0, 0}, 7)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLocal_PersistsToDisk(t *testing.T) {
	dir := t.TempDir()

	local, err := NewLocal(dir, nil)
	require.NoError(t, err)
	require.NoError(t, local.Upsert(context.Background(), []Record{
		{ID: "chunk-aa", Values: []float32{1, 0}, Metadata: RecordMetadata{Text: "persisted", PageTitle: "Lore"}},
	}))

	reopened, err := NewLocal(dir, nil)
	require.NoError(t, err)
	matches, err := reopened.Query(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "persisted", matches[0].Metadata.Text)
}
