// Package llm provides a uniform interface over interchangeable
// text-generation and text-embedding backends.
package llm

import "context"

// Chat roles shared by all backends.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DocumentType distinguishes document embeddings from query embeddings for
// backends that differentiate them.
type DocumentType string

const (
	DocTypeDocument DocumentType = "document"
	DocTypeQuery    DocumentType = "query"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the capability set every LLM backend implements. Providers
// keep no local state across calls beyond the configured model identifiers.
type Provider interface {
	// SetGenerationModel selects the model used for text generation.
	SetGenerationModel(modelID string)
	// SetEmbeddingModel selects the embedding model and its output size.
	SetEmbeddingModel(modelID string, embeddingSize int)
	// EmbeddingSize returns the configured embedding output size.
	EmbeddingSize() int
	// GenerateText appends the prompt as a user turn to chatHistory and
	// returns the assistant's reply. Zero maxTokens/temperature fall back
	// to the configured defaults.
	GenerateText(ctx context.Context, prompt string, chatHistory []Message, maxTokens int, temperature float32) (string, error)
	// EmbedText returns a fixed-length vector for the text.
	EmbedText(ctx context.Context, text string, docType DocumentType) ([]float32, error)
	// ConstructPrompt wraps processed text with a role tag.
	ConstructPrompt(text, role string) Message
}
