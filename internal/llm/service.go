package llm

import (
	"context"
	"fmt"
	"time"

	pkghttp "engineer-search/pkg/http"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

const embeddingModel = "text-embedding-3-small"

// Service is the external LLM interface: prose completions for the advisor's
// narrative explanations and vector embeddings for engineer profiles.
type Service struct {
	provider Provider
	apiKey   string
	model    string
	client   *pkghttp.Client
}

func NewService(provider, apiKey, model string) *Service {
	return &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		client:   pkghttp.NewClient(30 * time.Second),
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != ProviderNone && s.provider != ""
}

// EmbeddingModelName identifies the model whose vectors are stored on
// engineer nodes.
func (s *Service) EmbeddingModelName() string {
	return embeddingModel
}

// GenerateCompletion sends a prompt and returns the text response. Callers
// treat an error as "no explanation available", never as a request failure.
func (s *Service) GenerateCompletion(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	switch s.provider {
	case ProviderOpenAI:
		return s.chatCompletion(ctx, "https://api.openai.com/v1/chat/completions", prompt, systemPrompt, maxTokens)
	case ProviderGroq:
		return s.chatCompletion(ctx, "https://api.groq.com/openai/v1/chat/completions", prompt, systemPrompt, maxTokens)
	case ProviderOllama:
		return s.ollamaGenerate(ctx, prompt, systemPrompt)
	case ProviderNone, "":
		return "", fmt.Errorf("LLM provider not configured")
	}
	return "", fmt.Errorf("unknown provider: %s", s.provider)
}

// GenerateEmbedding creates a vector embedding for text. Embeddings always go
// through the OpenAI endpoint regardless of the completion provider.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("embedding API key not configured")
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := s.client.PostJSON(ctx, "https://api.openai.com/v1/embeddings",
		map[string]string{"Authorization": "Bearer " + s.apiKey},
		map[string]any{
			"input": text,
			"model": embeddingModel,
		}, &result)
	if err != nil {
		return nil, fmt.Errorf("embedding API: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Data[0].Embedding, nil
}

func (s *Service) chatCompletion(ctx context.Context, url, prompt, systemPrompt string, maxTokens int) (string, error) {
	reqBody := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	}
	if maxTokens > 0 {
		reqBody["max_tokens"] = maxTokens
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	err := s.client.PostJSON(ctx, url,
		map[string]string{"Authorization": "Bearer " + s.apiKey}, reqBody, &result)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", s.provider, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", s.provider, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", s.provider)
	}
	return result.Choices[0].Message.Content, nil
}

func (s *Service) ollamaGenerate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	err := s.client.PostJSON(ctx, "http://localhost:11434/api/generate", nil,
		map[string]any{
			"model":  s.model,
			"prompt": prompt,
			"system": systemPrompt,
			"stream": false,
		}, &result)
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}
	return result.Response, nil
}
