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

const defaultCohereBaseURL = "https://api.cohere.com"

// Cohere distinguishes the purpose of an embedding via input_type.
const (
	cohereInputDocument = "search_document"
	cohereInputQuery    = "search_query"
)

// CohereProvider talks to the Cohere v2 API.
type CohereProvider struct {
	base
	baseURL string
}

// NewCohereProvider creates a Cohere provider.
func NewCohereProvider(opts Options) *CohereProvider {
	baseURL := opts.APIURL
	if baseURL == "" {
		baseURL = defaultCohereBaseURL
	}
	return &CohereProvider{base: newBase(opts), baseURL: baseURL}
}

type cohereChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type cohereChatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

type cohereEmbedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

type cohereEmbedResponse struct {
	Embeddings struct {
		Float [][]float64 `json:"float"`
	} `json:"embeddings"`
}

// GenerateText sends the chat history plus the prompt as a user turn.
func (p *CohereProvider) GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxTokens int, temperature float32) (string, error) {
	if p.generationModel == "" {
		return "", apperr.Wrapf(apperr.ErrGeneration, "cohere generation model was not set")
	}

	maxTokens, temperature = p.resolveGenerationParams(maxTokens, temperature)
	messages := append(append([]Message{}, chatHistory...), p.ConstructPrompt(prompt, RoleUser))

	payload := cohereChatRequest{
		Model:       p.generationModel,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp cohereChatResponse
	if err := p.postJSON(ctx, "/v2/chat", payload, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrGeneration, err)
	}
	for _, part := range resp.Message.Content {
		if part.Type == "text" && part.Text != "" {
			return part.Text, nil
		}
	}
	return "", apperr.Wrapf(apperr.ErrGeneration, "cohere returned no text content")
}

// EmbedText embeds a single text using the input type matching docType.
func (p *CohereProvider) EmbedText(ctx context.Context, text string, docType DocumentType) ([]float32, error) {
	if p.embeddingModel == "" {
		return nil, apperr.Wrapf(apperr.ErrEmbedding, "cohere embedding model was not set")
	}

	inputType := cohereInputDocument
	if docType == DocTypeQuery {
		inputType = cohereInputQuery
	}

	payload := cohereEmbedRequest{
		Model:          p.embeddingModel,
		Texts:          []string{p.processText(text)},
		InputType:      inputType,
		EmbeddingTypes: []string{"float"},
	}

	var resp cohereEmbedResponse
	if err := p.postJSON(ctx, "/v2/embed", payload, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrEmbedding, err)
	}
	if len(resp.Embeddings.Float) == 0 {
		return nil, apperr.Wrapf(apperr.ErrEmbedding, "cohere returned no embeddings")
	}

	vec := toFloat32(resp.Embeddings.Float[0])
	if err := p.validateVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *CohereProvider) postJSON(ctx context.Context, path string, payload, out any) error {
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
