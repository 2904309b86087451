// Package external wraps third-party address taggers behind a small
// interface so the parser can run with or without libpostal.
package external

// Component is one labelled span produced by a tagger, e.g.
// {Value: "123", Label: "house_number"}.
type Component struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Tagger splits free text into labelled components. Implementations must be
// safe for concurrent use and must not fail: no components means no parse.
type Tagger interface {
	Tag(text string) []Component
}

// TaggerFunc adapts a plain function to Tagger.
type TaggerFunc func(text string) []Component

// Tag calls f(text).
func (f TaggerFunc) Tag(text string) []Component {
	return f(text)
}

// NullTagger never recognises anything.
type NullTagger struct{}

func (NullTagger) Tag(string) []Component { return nil }
