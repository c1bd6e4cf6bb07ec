package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// Config configures the Ollama generator.
type Config struct {
	// BaseURL defaults to OLLAMA_HOST, then http://localhost:11434.
	BaseURL     string
	Model       string
	Temperature float32
}

// Generator completes prompts with a local Ollama model.
type Generator struct {
	client      *api.Client
	model       string
	temperature float32
}

func New(cfg Config) (*Generator, error) {
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	var (
		client *api.Client
		err    error
	)
	if cfg.BaseURL == "" {
		client, err = api.ClientFromEnvironment()
	} else {
		var u *url.URL
		u, err = url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
		if err == nil {
			client = api.NewClient(u, http.DefaultClient)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	return &Generator{client: client, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (g *Generator) Name() string { return "ollama:" + g.model }

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": g.temperature},
	}
	var out strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
