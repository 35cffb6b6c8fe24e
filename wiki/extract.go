package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// strippedSelectors are sub-elements of the content region that carry no
// informational value and must never become chunks.
const strippedSelectors = ".toc, .mw-editsection, .navbox, .gallery"

// Extract parses a fetched detail page into an ordered list of chunks.
//
// The infobox, when present, becomes a single summary chunk emitted first.
// Remaining content is walked top to bottom: h2/h3 headings update the
// current section title, paragraphs become chunks verbatim, lists flatten
// into indented bullets, and tables render pipe-delimited. Chunks shorter
// than MinChunkLen are dropped silently as a quality filter; the infobox
// summary is structured data and is kept regardless of length.
func Extract(doc *goquery.Document, pageURL, slug string) []Chunk {
	pageTitle := strings.TrimSpace(doc.Find("#firstHeading").First().Text())
	if pageTitle == "" {
		pageTitle = strings.ReplaceAll(slug, "_", " ")
	}

	content := doc.Find("#mw-content-text").First()
	if content.Length() == 0 {
		return nil
	}
	content.Find(strippedSelectors).Remove()

	var chunks []Chunk
	meta := func(section string) Metadata {
		return Metadata{Source: pageURL, PageTitle: pageTitle, SectionTitle: section}
	}

	if summary := renderInfobox(content.Find(".infobox").First(), pageTitle); summary != "" {
		chunks = append(chunks, Chunk{Content: summary, Metadata: meta(InfoboxSection)})
	}

	container := content.ChildrenFiltered("div.mw-parser-output").First()
	if container.Length() == 0 {
		container = content
	}

	section := DefaultSection
	container.Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2", "h3":
			if title := strings.TrimSpace(s.Text()); title != "" {
				section = title
			}
		case "p":
			if text := strings.TrimSpace(s.Text()); len(text) >= MinChunkLen {
				chunks = append(chunks, Chunk{Content: text, Metadata: meta(section)})
			}
		case "ul", "ol":
			if text := renderList(s, 0); len(text) >= MinChunkLen {
				chunks = append(chunks, Chunk{Content: text, Metadata: meta(section)})
			}
		case "table":
			if s.HasClass("infobox") {
				return
			}
			if text := renderTable(s); len(text) >= MinChunkLen {
				chunks = append(chunks, Chunk{Content: text, Metadata: meta(section)})
			}
		}
	})

	return chunks
}

// renderInfobox turns an infobox's label/value rows into a summary block.
// Returns "" when the selection is empty or has no usable rows.
func renderInfobox(infobox *goquery.Selection, pageTitle string) string {
	if infobox.Length() == 0 {
		return ""
	}

	var lines []string
	infobox.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		if label != "" && value != "" {
			lines = append(lines, label+": "+value)
		}
	})
	if len(lines) == 0 {
		return ""
	}

	return "Key information for " + pageTitle + ":\n" + strings.Join(lines, "\n")
}

// renderList flattens a (possibly nested) list into indented bullet lines.
// Each nesting level indents two further spaces, with children directly
// below their parent's line.
func renderList(list *goquery.Selection, depth int) string {
	var lines []string
	indent := strings.Repeat("  ", depth)

	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		var own strings.Builder
		var nested []string

		li.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "ul", "ol":
				if sub := renderList(node, depth+1); sub != "" {
					nested = append(nested, sub)
				}
			default:
				own.WriteString(node.Text())
			}
		})

		if text := collapseSpace(own.String()); text != "" {
			lines = append(lines, indent+"- "+text)
		}
		lines = append(lines, nested...)
	})

	return strings.Join(lines, "\n")
}

// renderTable renders a table as a pipe-delimited block: header row,
// separator row, one line per data row. A table with exactly one header
// cell and one data cell collapses to a "Label: Value" line.
func renderTable(table *goquery.Selection) string {
	var header []string
	var rows [][]string

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, collapseSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if header == nil && row.Find("th").Length() > 0 {
			header = cells
			return
		}
		rows = append(rows, cells)
	})

	if len(header) == 1 && len(rows) == 1 && len(rows[0]) == 1 {
		return header[0] + ": " + rows[0][0]
	}

	var lines []string
	if len(header) > 0 {
		lines = append(lines, strings.Join(header, " | "))
		seps := make([]string, len(header))
		for i := range seps {
			seps[i] = "---"
		}
		lines = append(lines, strings.Join(seps, " | "))
	}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}

	return strings.Join(lines, "\n")
}

// collapseSpace trims and collapses all runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
