package source

import (
	"strings"
)

// Filter decides whether free text (tags, product names) is on topic.
type Filter struct {
	include       []string
	exclude       []string
	caseSensitive bool
}

// FilterConfig holds filter configuration.
type FilterConfig struct {
	// Include lists terms of which at least one must appear. Empty accepts all.
	Include []string
	// Exclude lists terms that reject the text outright.
	Exclude []string
	// CaseSensitive disables lowercasing of text and terms.
	CaseSensitive bool
}

// NewFilter creates a new filter.
func NewFilter(cfg FilterConfig) *Filter {
	f := &Filter{
		include:       make([]string, 0, len(cfg.Include)),
		exclude:       make([]string, 0, len(cfg.Exclude)),
		caseSensitive: cfg.CaseSensitive,
	}
	for _, term := range cfg.Include {
		if term != "" {
			f.include = append(f.include, f.fold(term))
		}
	}
	for _, term := range cfg.Exclude {
		if term != "" {
			f.exclude = append(f.exclude, f.fold(term))
		}
	}
	return f
}

// FilterResult contains the filter decision.
type FilterResult struct {
	Pass   bool
	Reason string
}

// Check examines text and returns whether it should be used.
func (f *Filter) Check(text string) FilterResult {
	text = f.fold(text)

	for _, term := range f.exclude {
		if strings.Contains(text, term) {
			return FilterResult{
				Pass:   false,
				Reason: "contains excluded term: " + term,
			}
		}
	}

	if len(f.include) == 0 {
		return FilterResult{Pass: true}
	}

	for _, term := range f.include {
		if strings.Contains(text, term) {
			return FilterResult{Pass: true}
		}
	}

	return FilterResult{
		Pass:   false,
		Reason: "no required term present",
	}
}

// Match reports whether text passes the filter. A nil filter accepts everything.
func (f *Filter) Match(text string) bool {
	if f == nil {
		return true
	}
	return f.Check(text).Pass
}

func (f *Filter) fold(s string) string {
	if f.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}
