// Package templates holds the localized prompt templates used to compose
// retrieval-augmented generation prompts. Templates are addressed by
// language, group and key, and use $name placeholders.
package templates

import (
	"os"

	"docrag/internal/apperr"
)

// registry maps language -> group -> key -> template text. Locale files
// register their groups in init.
var registry = map[string]map[string]map[string]string{}

func register(language, group string, keys map[string]string) {
	groups, ok := registry[language]
	if !ok {
		groups = map[string]map[string]string{}
		registry[language] = groups
	}
	groups[group] = keys
}

// Parser resolves templates for a preferred language, falling back to the
// default language when the preferred one has no matching group.
type Parser struct {
	language        string
	defaultLanguage string
}

// NewParser creates a Parser. An empty or unknown language falls back to
// defaultLanguage; an empty defaultLanguage falls back to "en".
func NewParser(language, defaultLanguage string) *Parser {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	if language == "" {
		language = defaultLanguage
	}
	if _, ok := registry[language]; !ok {
		language = defaultLanguage
	}
	return &Parser{language: language, defaultLanguage: defaultLanguage}
}

// Language returns the resolved language.
func (p *Parser) Language() string {
	return p.language
}

// Get renders the template at group/key with $name placeholders substituted
// from variables. A placeholder with no matching variable is an error.
func (p *Parser) Get(group, key string, variables map[string]string) (string, error) {
	if group == "" || key == "" {
		return "", apperr.Wrapf(apperr.ErrValidation, "template group and key are required")
	}

	text, ok := p.lookup(p.language, group, key)
	if !ok {
		text, ok = p.lookup(p.defaultLanguage, group, key)
	}
	if !ok {
		return "", apperr.Wrapf(apperr.ErrNotFound, "template %s/%s not found", group, key)
	}

	var missing string
	rendered := os.Expand(text, func(name string) string {
		v, ok := variables[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", apperr.Wrapf(apperr.ErrValidation, "template %s/%s is missing variable %q", group, key, missing)
	}
	return rendered, nil
}

func (p *Parser) lookup(language, group, key string) (string, bool) {
	groups, ok := registry[language]
	if !ok {
		return "", false
	}
	keys, ok := groups[group]
	if !ok {
		return "", false
	}
	text, ok := keys[key]
	return text, ok
}
