package wiki

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseHTML builds a goquery document from a markup snippet.
func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// page wraps body markup in the MediaWiki skeleton the extractor expects.
func page(title, body string) string {
	return `<html><body>
<h1 id="firstHeading">` + title + `</h1>
<div id="mw-content-text"><div class="mw-parser-output">` + body + `</div></div>
</body></html>`
}

const longPara = "This paragraph is comfortably longer than the fifty character minimum threshold for chunks."

func TestExtract_SyntheticPage(t *testing.T) {
	body := `
<table class="infobox"><tbody>
  <tr><th>Health</th><td>100</td></tr>
</tbody></table>
<h2>Overview</h2>
<p>` + longPara + `</p>
<table class="wikitable"><tbody>
  <tr><th>Weapon name</th><th>Body damage</th></tr>
  <tr><td>R-301 Carbine</td><td>14 per shot</td></tr>
  <tr><td>VK-47 Flatline</td><td>19 per shot</td></tr>
</tbody></table>`

	doc := parseHTML(t, page("Lifeline", body))
	chunks := Extract(doc, "https://apexlegends.wiki.gg/wiki/Lifeline", "Lifeline")

	require.Len(t, chunks, 3)

	// Infobox summary comes first with the reserved section label.
	assert.Equal(t, InfoboxSection, chunks[0].Metadata.SectionTitle)
	assert.Contains(t, chunks[0].Content, "Health: 100")

	assert.Equal(t, "Overview", chunks[1].Metadata.SectionTitle)
	assert.Equal(t, longPara, chunks[1].Content)

	assert.Equal(t, "Overview", chunks[2].Metadata.SectionTitle)
	lines := strings.Split(chunks[2].Content, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Weapon name | Body damage", lines[0])
	assert.Equal(t, "--- | ---", lines[1])
	assert.Equal(t, "R-301 Carbine | 14 per shot", lines[2])
	assert.Equal(t, "VK-47 Flatline | 19 per shot", lines[3])

	for _, c := range chunks {
		assert.Equal(t, "Lifeline", c.Metadata.PageTitle)
		assert.Equal(t, "https://apexlegends.wiki.gg/wiki/Lifeline", c.Metadata.Source)
	}
}

func TestExtract_NoInfobox(t *testing.T) {
	doc := parseHTML(t, page("Maps", "<p>"+longPara+"</p>"))
	chunks := Extract(doc, "https://example.test/wiki/Maps", "Maps")

	require.Len(t, chunks, 1)
	for _, c := range chunks {
		assert.NotEqual(t, InfoboxSection, c.Metadata.SectionTitle)
	}
	assert.Equal(t, DefaultSection, chunks[0].Metadata.SectionTitle)
}

func TestExtract_SectionTracking(t *testing.T) {
	body := `
<p>` + longPara + `</p>
<h2>Abilities</h2>
<p>` + longPara + `</p>
<h3>Tactical</h3>
<p>` + longPara + `</p>`

	doc := parseHTML(t, page("Wraith", body))
	chunks := Extract(doc, "https://example.test/wiki/Wraith", "Wraith")

	require.Len(t, chunks, 3)
	assert.Equal(t, DefaultSection, chunks[0].Metadata.SectionTitle)
	assert.Equal(t, "Abilities", chunks[1].Metadata.SectionTitle)
	assert.Equal(t, "Tactical", chunks[2].Metadata.SectionTitle)
}

func TestExtract_HeadingsProduceNoChunks(t *testing.T) {
	body := `<h2>Empty section</h2><h3>Also empty</h3>`
	doc := parseHTML(t, page("Stub", body))
	chunks := Extract(doc, "https://example.test/wiki/Stub", "Stub")
	assert.Empty(t, chunks)
}

func TestExtract_StripsNavigationalElements(t *testing.T) {
	body := `
<div class="toc">` + longPara + `</div>
<div class="navbox">` + longPara + `</div>
<div class="gallery">` + longPara + `</div>
<h2>History<span class="mw-editsection">[edit]</span></h2>
<p>` + longPara + `</p>`

	doc := parseHTML(t, page("Seasons", body))
	chunks := Extract(doc, "https://example.test/wiki/Seasons", "Seasons")

	require.Len(t, chunks, 1)
	assert.Equal(t, "History", chunks[0].Metadata.SectionTitle)
}

func TestExtract_NestedListRendering(t *testing.T) {
	body := `
<ul>
  <li>Assault rifles deal sustained damage at range
    <ul>
      <li>Hemlok Burst AR fires three-round bursts
        <ul><li>Amped single fire mode exists</li></ul>
      </li>
      <li>Havoc Rifle needs a spin-up</li>
    </ul>
  </li>
  <li>Sniper rifles reward precision</li>
</ul>`

	doc := parseHTML(t, page("Weapons overview", body))
	chunks := Extract(doc, "https://example.test/wiki/Weapons_overview", "Weapons_overview")

	require.Len(t, chunks, 1)
	lines := strings.Split(chunks[0].Content, "\n")
	require.Len(t, lines, 5)

	// Parent-before-child ordering with strictly increasing indentation.
	assert.Equal(t, "- Assault rifles deal sustained damage at range", lines[0])
	assert.Equal(t, "  - Hemlok Burst AR fires three-round bursts", lines[1])
	assert.Equal(t, "    - Amped single fire mode exists", lines[2])
	assert.Equal(t, "  - Havoc Rifle needs a spin-up", lines[3])
	assert.Equal(t, "- Sniper rifles reward precision", lines[4])
}

func TestRenderTable_SingleCellCollapses(t *testing.T) {
	doc := parseHTML(t, `<table><tr><th>Release date</th></tr><tr><td>February 4, 2019</td></tr></table>`)
	rendered := renderTable(doc.Find("table"))

	assert.Equal(t, "Release date: February 4, 2019", rendered)
	assert.NotContains(t, rendered, "|")
}

func TestExtract_DropsShortChunks(t *testing.T) {
	body := `<p>Too short.</p><p>` + longPara + `</p>`
	doc := parseHTML(t, page("Item", body))
	chunks := Extract(doc, "https://example.test/wiki/Item", "Item")

	require.Len(t, chunks, 1)
	assert.Equal(t, longPara, chunks[0].Content)
}

func TestExtract_MissingContentRegion(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>no wiki markup here</p></body></html>`)
	assert.Empty(t, Extract(doc, "https://example.test/wiki/Nothing", "Nothing"))
}

func TestFilterShort_Idempotent(t *testing.T) {
	chunks := []Chunk{
		{Content: "tiny"},
		{Content: strings.Repeat("a", MinChunkLen)},
		{Content: strings.Repeat("b", MinChunkLen+10)},
	}

	once := FilterShort(chunks)
	twice := FilterShort(once)

	require.Len(t, once, 2)
	assert.Equal(t, once, twice)
}

func TestChunk_IDStable(t *testing.T) {
	c := Chunk{
		Content:  "The Kraber .50-Cal Sniper is a care package weapon.",
		Metadata: Metadata{Source: "https://example.test/wiki/Kraber", SectionTitle: "Overview"},
	}

	assert.Equal(t, c.ID(), c.ID())
	assert.True(t, strings.HasPrefix(c.ID(), "chunk-"))

	changed := c
	changed.Content += " It deals massive damage."
	assert.NotEqual(t, c.ID(), changed.ID())
}
