package app

import (
	"fmt"
	"sort"
	"strings"

	"docuchat/internal/vectorstore"
)

// Fixed user-facing strings. These are part of the behavioral contract and
// must not be reworded.
const (
	PromptForInput    = "Please provide a valid question or message."
	ApologyReply      = "Sorry, I encountered an error while processing your request. Please try again."
	NotAvailableReply = "Not available in provided documents."
)

func formatDocumentList(documents []string) string {
	sorted := make([]string, len(documents))
	copy(sorted, documents)
	sort.Strings(sorted)
	var b strings.Builder
	for _, name := range sorted {
		b.WriteString(fmt.Sprintf("- **%s**\n", name))
	}
	return strings.TrimRight(b.String(), "\n")
}

// specifyDocumentReply is returned when a summary is requested, several
// documents are available, and the message names none of them.
func specifyDocumentReply(documents []string) string {
	return fmt.Sprintf(
		"Please specify which document you want summarized. Available documents:\n%s\n\n"+
			"You can ask: 'Summarize [document name]' or 'Give me an overview of [document name]'",
		formatDocumentList(documents),
	)
}

// notAvailableReply appends an in-scope topic suggestion when documents exist.
func notAvailableReply(documents []string) string {
	if len(documents) == 0 {
		return NotAvailableReply
	}
	sorted := make([]string, len(documents))
	copy(sorted, documents)
	sort.Strings(sorted)
	return NotAvailableReply + " I can help you with questions about: " + strings.Join(sorted, ", ") + "."
}

// buildSystemPrompt assembles the synthesis contract: strict grounding, the
// available documents, the retrieved context, and the response rules for
// every intent, plus an explicit note naming the classified intent.
func buildSystemPrompt(documents []string, passages []vectorstore.SearchResult, intent Intent) string {
	var b strings.Builder

	b.WriteString("You are a precise, context-grounded document assistant. You help users understand and extract information from their uploaded documents.\n\n")

	b.WriteString("## Core Principles\n")
	b.WriteString("1. Strict grounding: answer ONLY from the provided context. Never use external knowledge, assumptions, or general information.\n")
	b.WriteString("2. Clarity: provide clear responses tailored to the user's intent.\n")
	b.WriteString("3. Honesty: if information is missing or ambiguous, or the question is unrelated to the documents, state it explicitly.\n\n")

	b.WriteString("## Available Documents\n")
	if len(documents) == 0 {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(formatDocumentList(documents))
		b.WriteString("\n")
	}
	b.WriteString("\n## Context\n")
	for i, p := range passages {
		b.WriteString(fmt.Sprintf("[%d] (from %s, page %d)\n%s\n", i+1, p.DocumentName, p.SourcePage, strings.TrimSpace(p.Content)))
	}

	b.WriteString("\n## Response Rules\n")
	b.WriteString("1. Greetings: respond warmly in 1-2 sentences and briefly explain your capabilities (summarize documents, answer questions, extract information, find content). Do NOT provide a summary for a greeting.\n")
	b.WriteString("2. Summary requests, single document: produce a structured summary with a Headline (one sentence), a Summary (3-4 sentences), Key Points (4-6 bullets), Actionable Insights when relevant, and a brief Confidence Note if critical information is missing.\n")
	b.WriteString("3. Direct questions: answer concisely in 1-3 sentences, quoting with \"According to [document]...\" when helpful. Cite each source document when the answer spans several. Do NOT use the summary format.\n")
	b.WriteString("4. Comparison requests: structure the response as a brief introduction, side-by-side comparison points, key differences and similarities, and a conclusion.\n")
	b.WriteString("5. Extraction requests (find, list, show all): provide a formatted list or table with the source document for each item.\n")
	b.WriteString(fmt.Sprintf("6. Information not in the context: respond exactly: %q. You may then suggest what the documents DO cover.\n", NotAvailableReply))

	b.WriteString(fmt.Sprintf("\nThe current request was classified as a %s request; apply the matching rule above.\n", intent))
	b.WriteString("\nRemember: never invent, assume, or use external knowledge. Stay strictly within the provided context.")

	return b.String()
}
