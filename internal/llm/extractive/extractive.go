// Package extractive is an offline stand-in for a generative model. It
// answers with the most representative sentences of the material quoted in
// the prompt, so the service can run end to end without network access.
package extractive

import (
	"context"
	"strings"

	"blograg/internal/summarizer"
)

// Fence delimits quoted material inside prompts.
const Fence = `"""`

const keywordCount = 5

type Generator struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

func New(maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Generator{summarizer: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

func (g *Generator) Name() string { return "extractive" }

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	material := quoted(prompt)
	if strings.TrimSpace(material) == "" {
		material = prompt
	}
	out := g.summarizer.Summarize(material, g.maxSentences)
	if strings.Contains(strings.ToLower(prompt), "keywords") {
		if kw := g.summarizer.Keywords(material, keywordCount); len(kw) > 0 {
			out += "\n\nKeywords: " + strings.Join(kw, ", ")
		}
	}
	return out, nil
}

// quoted joins every fenced block of prompt. Bare labels like "Content:"
// and metadata lines like "Author: x" are dropped; "Title: x" keeps x.
func quoted(prompt string) string {
	parts := strings.Split(prompt, Fence)
	var b strings.Builder
	for i := 1; i < len(parts); i += 2 {
		for _, line := range strings.Split(parts[i], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || isLabel(line) {
				continue
			}
			if label, rest, ok := strings.Cut(line, ": "); ok && isLabel(label+":") {
				if _, skip := metadataLabels[strings.ToLower(label)]; skip {
					continue
				}
				line = rest
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var metadataLabels = map[string]struct{}{"author": {}, "category": {}, "views": {}}

func isLabel(s string) bool {
	label, ok := strings.CutSuffix(s, ":")
	if !ok || label == "" || len(label) > 20 {
		return false
	}
	return !strings.ContainsAny(label, ".!?")
}
