// Package rag implements the retrieval-augmented pipeline: pushing stored
// chunks into the vector index, semantic search, and answer generation.
package rag

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
	"docrag/internal/llm"
	"docrag/internal/templates"
	"docrag/internal/vectorstore"
)

// Default result limits for search and answer retrieval.
const (
	DefaultSearchLimit = 5
	DefaultAnswerLimit = 10
)

// CollectionName derives the vector collection name for a project.
func CollectionName(projectID string) string {
	return strings.TrimSpace("collection_" + projectID)
}

// Engine answers semantic queries against a project's indexed chunks.
type Engine struct {
	provider llm.Provider
	store    vectorstore.VectorStore
	parser   *templates.Parser
}

// NewEngine creates an Engine.
func NewEngine(provider llm.Provider, store vectorstore.VectorStore, parser *templates.Parser) *Engine {
	return &Engine{
		provider: provider,
		store:    store,
		parser:   parser,
	}
}

// Search embeds the query text and returns up to limit nearest documents.
// No matches is not an error; the result is simply empty.
func (e *Engine) Search(ctx context.Context, projectID, text string, limit int) ([]vectorstore.RetrievedDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Wrapf(apperr.ErrValidation, "search text is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vector, err := e.provider.EmbedText(ctx, text, llm.DocTypeQuery)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRetrieval, err)
	}

	results, err := e.store.SearchByVector(ctx, CollectionName(projectID), vector, limit)
	if err != nil {
		// A project that was never indexed, or whose collection was just
		// dropped, has no collection. That is empty retrieval, not a failure.
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.ErrRetrieval, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}

// Answer retrieves the documents nearest to query and asks the generation
// model to answer from them. When retrieval finds nothing the answer is
// empty and no generation call is made. It returns the answer, the full
// prompt sent to the model, and the chat history it was sent with.
func (e *Engine) Answer(ctx context.Context, projectID, query string, limit int) (string, string, []llm.Message, error) {
	if limit <= 0 {
		limit = DefaultAnswerLimit
	}

	documents, err := e.Search(ctx, projectID, query, limit)
	if err != nil {
		return "", "", nil, err
	}
	if len(documents) == 0 {
		return "", "", nil, nil
	}

	systemPrompt, err := e.parser.Get("rag", "system_prompt", nil)
	if err != nil {
		return "", "", nil, apperr.Wrap(apperr.ErrGeneration, err)
	}

	documentPrompts := make([]string, 0, len(documents))
	for i, doc := range documents {
		prompt, err := e.parser.Get("rag", "document_prompt", map[string]string{
			"doc_num":    strconv.Itoa(i + 1),
			"chunk_text": doc.Text,
		})
		if err != nil {
			return "", "", nil, apperr.Wrap(apperr.ErrGeneration, err)
		}
		documentPrompts = append(documentPrompts, prompt)
	}

	footerPrompt, err := e.parser.Get("rag", "footer_prompt", map[string]string{"query": query})
	if err != nil {
		return "", "", nil, apperr.Wrap(apperr.ErrGeneration, err)
	}

	chatHistory := []llm.Message{e.provider.ConstructPrompt(systemPrompt, llm.RoleSystem)}
	fullPrompt := strings.Join(documentPrompts, "\n") + "\n\n" + footerPrompt

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "generating answer",
		"project_id", projectID, "documents", len(documents), "limit", limit)

	answer, err := e.provider.GenerateText(ctx, fullPrompt, chatHistory, 0, 0)
	if err != nil {
		return "", fullPrompt, chatHistory, err
	}
	return answer, fullPrompt, chatHistory, nil
}

// CollectionInfo returns the project's vector collection configuration and
// point count.
func (e *Engine) CollectionInfo(ctx context.Context, projectID string) (*vectorstore.CollectionInfo, error) {
	return e.store.GetCollectionInfo(ctx, CollectionName(projectID))
}

// ResetCollection drops the project's vector collection.
func (e *Engine) ResetCollection(ctx context.Context, projectID string) error {
	return e.store.DeleteCollection(ctx, CollectionName(projectID))
}
