package config

// ModelAlias maps a caller-facing model name to the backend model name.
type ModelAlias struct {
	Slug  string `toml:"slug"`
	Model string `toml:"model"`
}

// DefaultModels returns the built-in alias table. Several OpenAI-style names
// map to the same backend model, and every backend name maps to itself.
func DefaultModels() []ModelAlias {
	return []ModelAlias{
		{Slug: "claude-3-opus", Model: "Claude3-Opus"},
		{Slug: "claude-3-haiku", Model: "Claude3-Haiku"},
		{Slug: "claude-3-sonnet-20240229", Model: "Claude3-Sonnet"},
		{Slug: "claude-3-opus-20240229", Model: "Claude3-Opus"},
		{Slug: "claude-3-haiku-20240307", Model: "Claude3-Haiku"},
		{Slug: "gpt-4o", Model: "GPT-4o"},
		{Slug: "gpt-4o-2024-05-13", Model: "GPT-4o"},
		{Slug: "gemini-1.5-flash-latest", Model: "gemini-1.5-flash"},
		{Slug: "gemini-1.5-pro-latest", Model: "gemini-1.5-pro"},
		{Slug: "claude-3-5-sonnet-20240620", Model: "Claude3.5-Sonnet"},
		{Slug: "gpt-3.5-turbo", Model: "GPT-3.5"},
		{Slug: "gpt-4", Model: "GPT-4"},
		{Slug: "Claude3-Sonnet", Model: "Claude3-Sonnet"},
		{Slug: "Claude3-Opus", Model: "Claude3-Opus"},
		{Slug: "Claude3-Haiku", Model: "Claude3-Haiku"},
		{Slug: "GPT-4o", Model: "GPT-4o"},
		{Slug: "gemini-1.5-flash", Model: "gemini-1.5-flash"},
		{Slug: "gemini-1.5-pro", Model: "gemini-1.5-pro"},
		{Slug: "Claude3.5-Sonnet", Model: "Claude3.5-Sonnet"},
		{Slug: "GPT-3.5", Model: "GPT-3.5"},
		{Slug: "GPT-4", Model: "GPT-4"},
	}
}

// MergeModels returns base with overrides applied: an override with an
// existing slug replaces that entry in place, new slugs are appended.
// Entries with an empty slug or model are ignored.
func MergeModels(base, overrides []ModelAlias) []ModelAlias {
	merged := make([]ModelAlias, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base)+len(overrides))

	for _, list := range [][]ModelAlias{base, overrides} {
		for _, alias := range list {
			if alias.Slug == "" || alias.Model == "" {
				continue
			}
			if i, ok := index[alias.Slug]; ok {
				merged[i] = alias
				continue
			}
			index[alias.Slug] = len(merged)
			merged = append(merged, alias)
		}
	}
	return merged
}
