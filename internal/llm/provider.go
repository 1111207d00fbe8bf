package llm

import (
	"net/http"
	"strings"
	"time"

	"docrag/internal/apperr"
)

// Supported backend names for the provider factory.
const (
	BackendOpenAI = "OPENAI"
	BackendCohere = "COHERE"
	BackendOllama = "OLLAMA"
)

// Options carries the construction parameters shared by all providers.
type Options struct {
	APIKey                string
	APIURL                string
	InputMaxCharacters    int
	GenerationMaxTokens   int
	GenerationTemperature float32
	Timeout               time.Duration
}

// NewProvider creates the provider selected by backend name.
func NewProvider(backend string, opts Options) (Provider, error) {
	switch strings.ToUpper(backend) {
	case BackendOpenAI:
		return NewOpenAIProvider(opts), nil
	case BackendCohere:
		return NewCohereProvider(opts), nil
	case BackendOllama:
		return NewOllamaProvider(opts), nil
	default:
		return nil, apperr.Wrapf(apperr.ErrValidation, "unsupported LLM backend %q", backend)
	}
}

// base holds the configuration common to every provider implementation.
type base struct {
	apiKey                string
	inputMaxCharacters    int
	generationMaxTokens   int
	generationTemperature float32
	generationModel       string
	embeddingModel        string
	embeddingSize         int
	client                *http.Client
}

func newBase(opts Options) base {
	client := &http.Client{}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}
	return base{
		apiKey:                opts.APIKey,
		inputMaxCharacters:    opts.InputMaxCharacters,
		generationMaxTokens:   opts.GenerationMaxTokens,
		generationTemperature: opts.GenerationTemperature,
		client:                client,
	}
}

func (b *base) SetGenerationModel(modelID string) {
	b.generationModel = modelID
}

func (b *base) SetEmbeddingModel(modelID string, embeddingSize int) {
	b.embeddingModel = modelID
	b.embeddingSize = embeddingSize
}

func (b *base) EmbeddingSize() int {
	return b.embeddingSize
}

// processText trims the input and truncates anything beyond the configured
// maximum character count, keeping the leading window. (The observed
// upstream behavior kept the trailing window instead; that looks
// unintentional and is deliberately not reproduced.)
func (b *base) processText(text string) string {
	if b.inputMaxCharacters > 0 {
		runes := []rune(text)
		if len(runes) > b.inputMaxCharacters {
			text = string(runes[:b.inputMaxCharacters])
		}
	}
	return strings.TrimSpace(text)
}

func (b *base) resolveGenerationParams(maxTokens int, temperature float32) (int, float32) {
	if maxTokens <= 0 {
		maxTokens = b.generationMaxTokens
	}
	if temperature <= 0 {
		temperature = b.generationTemperature
	}
	return maxTokens, temperature
}

func (b *base) ConstructPrompt(text, role string) Message {
	return Message{Role: role, Content: b.processText(text)}
}

func (b *base) validateVector(vec []float32) error {
	if len(vec) == 0 {
		return apperr.Wrapf(apperr.ErrEmbedding, "backend returned an empty embedding")
	}
	if b.embeddingSize > 0 && len(vec) != b.embeddingSize {
		return apperr.Wrapf(apperr.ErrEmbedding, "embedding has size %d, expected %d", len(vec), b.embeddingSize)
	}
	return nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
