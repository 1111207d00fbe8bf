package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"docrag/internal/apperr"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIProvider talks to the OpenAI API or any service exposing the same
// chat-completions and embeddings endpoints.
type OpenAIProvider struct {
	base
	baseURL string
}

// NewOpenAIProvider creates an OpenAI-compatible provider.
func NewOpenAIProvider(opts Options) *OpenAIProvider {
	baseURL := opts.APIURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{base: newBase(opts), baseURL: baseURL}
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type openAIEmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// GenerateText sends the chat history plus the prompt as a user turn.
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxTokens int, temperature float32) (string, error) {
	if p.generationModel == "" {
		return "", apperr.Wrapf(apperr.ErrGeneration, "openai generation model was not set")
	}

	maxTokens, temperature = p.resolveGenerationParams(maxTokens, temperature)
	messages := append(append([]Message{}, chatHistory...), p.ConstructPrompt(prompt, RoleUser))

	payload := openAIChatRequest{
		Model:       p.generationModel,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp openAIChatResponse
	if err := p.postJSON(ctx, "/v1/chat/completions", payload, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.Wrapf(apperr.ErrGeneration, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// EmbedText embeds a single text. OpenAI does not distinguish document and
// query embeddings, so docType is ignored.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string, _ DocumentType) ([]float32, error) {
	if p.embeddingModel == "" {
		return nil, apperr.Wrapf(apperr.ErrEmbedding, "openai embedding model was not set")
	}

	payload := openAIEmbeddingsRequest{
		Model: p.embeddingModel,
		Input: []string{p.processText(text)},
	}

	var resp openAIEmbeddingsResponse
	if err := p.postJSON(ctx, "/v1/embeddings", payload, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, apperr.Wrapf(apperr.ErrEmbedding, "openai returned no embedding data")
	}

	vec := toFloat32(resp.Data[0].Embedding)
	if err := p.validateVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *OpenAIProvider) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
