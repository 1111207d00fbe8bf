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

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider talks to a local or remote Ollama server over its HTTP API.
// Ollama needs no API key.
type OllamaProvider struct {
	base
	baseURL string
}

// NewOllamaProvider creates an Ollama provider.
func NewOllamaProvider(opts Options) *OllamaProvider {
	baseURL := opts.APIURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaProvider{base: newBase(opts), baseURL: baseURL}
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
}

type ollamaEmbeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// GenerateText sends the chat history plus the prompt as a user turn.
func (p *OllamaProvider) GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxTokens int, temperature float32) (string, error) {
	if p.generationModel == "" {
		return "", apperr.Wrapf(apperr.ErrGeneration, "ollama generation model was not set")
	}

	maxTokens, temperature = p.resolveGenerationParams(maxTokens, temperature)
	messages := append(append([]Message{}, chatHistory...), p.ConstructPrompt(prompt, RoleUser))

	payload := ollamaChatRequest{
		Model:    p.generationModel,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	}

	var resp ollamaChatResponse
	if err := p.postJSON(ctx, "/api/chat", payload, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrGeneration, err)
	}
	if resp.Message.Content == "" {
		return "", apperr.Wrapf(apperr.ErrGeneration, "ollama returned an empty message")
	}
	return resp.Message.Content, nil
}

// EmbedText embeds a single text. Ollama does not distinguish document and
// query embeddings, so docType is ignored.
func (p *OllamaProvider) EmbedText(ctx context.Context, text string, _ DocumentType) ([]float32, error) {
	if p.embeddingModel == "" {
		return nil, apperr.Wrapf(apperr.ErrEmbedding, "ollama embedding model was not set")
	}

	payload := ollamaEmbeddingsRequest{
		Model:  p.embeddingModel,
		Prompt: p.processText(text),
	}

	var resp ollamaEmbeddingsResponse
	if err := p.postJSON(ctx, "/api/embeddings", payload, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrEmbedding, err)
	}

	vec := toFloat32(resp.Embedding)
	if err := p.validateVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *OllamaProvider) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
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
