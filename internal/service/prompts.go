package service

import (
	"fmt"
	"strings"

	"blograg/internal/domain"
)

// fence delimits quoted material so models (and the extractive fallback)
// can tell it apart from instructions.
const fence = `"""`

func quote(s string) string {
	return fence + "\n" + strings.TrimSpace(s) + "\n" + fence
}

func answerPrompt(context, question string) string {
	return fmt.Sprintf(`Use the following information to answer the question. If the information does not contain the answer, say that you don't know.

Information:
%s

Question: %s

Detailed answer:`, quote(context), question)
}

func smartSearchPrompt(query string, sources []Source) string {
	var list strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&list, "- %s (ID: %s)\n", src.Title, src.DocumentID)
	}
	return fmt.Sprintf(`Based on the question: %q

I found the following blogs:
%s

Write a short answer (2-3 sentences) introducing these blogs and explaining why they match the question.`, query, quote(list.String()))
}

func summarizePrompt(content string) string {
	return fmt.Sprintf(`Summarize the following content briefly and concisely:

%s

Summary:`, quote(content))
}

func documentSummaryText(doc domain.Document) string {
	return fmt.Sprintf("Title: %s\n\nContent: %s", doc.Title, doc.Body)
}

func corpusSummaryText(docs []domain.Document, excerpt int) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = fmt.Sprintf("Title: %s\nContent: %s", doc.Title, truncate(doc.Body, excerpt))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func analyzePrompt(doc domain.Document) string {
	return fmt.Sprintf(`Analyze the following post:

%s

Provide:
1. Sentiment (positive/negative/neutral)
2. Main topics
3. Important keywords
4. An assessment of the content quality

Analysis:`, quote(fmt.Sprintf("Title: %s\nContent: %s", doc.Title, doc.Body)))
}

func generatePrompt(topic, style string) string {
	return fmt.Sprintf(`Write a blog post about the topic:
%s

Style: %s
Length: about 300-500 words

Post:`, quote(topic), style)
}
