// Package provider resolves caller-facing model names to backend models.
package provider

import (
	"errors"
	"strings"

	"github.com/mandalnilabja/vecway/internal/config"
)

// ErrModelNotFound is returned when a model slug cannot be resolved.
var ErrModelNotFound = errors.New("model not found")

// ModelNotAllowedError reports an unknown model together with the backend
// models that are available.
type ModelNotAllowedError struct {
	Model   string
	Allowed []string
}

func (e *ModelNotAllowedError) Error() string {
	return "Model " + e.Model + " is not allowed. Allowed models are: " + strings.Join(e.Allowed, ", ")
}

func (e *ModelNotAllowedError) Unwrap() error { return ErrModelNotFound }

// Router maps model aliases to backend model names. It is built once at
// startup and read-only afterwards, so it is safe for concurrent use.
type Router struct {
	slugMap map[string]string // Pre-resolved for O(1) lookup
	slugs   []string
	models  []string
}

// NewRouter builds the alias table. Later entries override earlier ones with
// the same slug.
func NewRouter(aliases []config.ModelAlias) *Router {
	r := &Router{slugMap: make(map[string]string, len(aliases))}

	for _, alias := range aliases {
		if _, seen := r.slugMap[alias.Slug]; !seen {
			r.slugs = append(r.slugs, alias.Slug)
		}
		r.slugMap[alias.Slug] = alias.Model
	}

	// Backend names in first-seen order, each once
	seen := make(map[string]struct{}, len(r.slugs))
	for _, slug := range r.slugs {
		model := r.slugMap[slug]
		if _, ok := seen[model]; ok {
			continue
		}
		seen[model] = struct{}{}
		r.models = append(r.models, model)
	}
	return r
}

// Resolve returns the backend model for a caller-facing name.
func (r *Router) Resolve(slug string) (string, error) {
	if model, ok := r.slugMap[slug]; ok {
		return model, nil
	}
	return "", &ModelNotAllowedError{Model: slug, Allowed: r.AllowedModels()}
}

// Aliases returns every caller-facing name once, in configuration order.
func (r *Router) Aliases() []string {
	return append([]string(nil), r.slugs...)
}

// AllowedModels returns every backend model name once.
func (r *Router) AllowedModels() []string {
	return append([]string(nil), r.models...)
}
