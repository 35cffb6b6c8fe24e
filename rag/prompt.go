package rag

import (
	"fmt"
	"strings"

	"github.com/apexdash/apexdash/vectorstore"
)

// contextDelimiter separates retrieved chunks inside the context block.
const contextDelimiter = "\n\n---\n\n"

// answerPrompt is the instruction template for grounded answering.
// Placeholders: context block, rendered history, new query.
const answerPrompt = `You are the Apex Legends assistant for a game-data dashboard. Answer the player's question using ONLY the context information below. If the context does not contain the answer, say you don't know. Do not use prior knowledge.

Respond with a single JSON object and nothing else:
{"answer": "your answer as plain text", "sources": ["page titles you actually used"]}

--- CONTEXT ---
%s
--- END CONTEXT ---

--- CONVERSATION SO FAR ---
%s
--- END CONVERSATION ---

New question: %s`

// buildContext renders retrieved matches as Source/Content blocks.
func buildContext(matches []vectorstore.Match) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nContent: %s", m.Metadata.PageTitle, m.Metadata.Text))
	}
	return strings.Join(blocks, contextDelimiter)
}

// buildHistory renders prior turns as alternating User:/AI: lines.
func buildHistory(history []Turn) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		var text strings.Builder
		for _, part := range turn.Parts {
			text.WriteString(part.Text)
		}

		speaker := "User"
		if turn.Role == RoleModel {
			speaker = "AI"
		}
		lines = append(lines, speaker+": "+text.String())
	}
	return strings.Join(lines, "\n")
}

// buildPrompt assembles the full grounded prompt for one request.
func buildPrompt(matches []vectorstore.Match, history []Turn, message string) string {
	return fmt.Sprintf(answerPrompt, buildContext(matches), buildHistory(history), message)
}
