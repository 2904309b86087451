//go:build libpostal

package external

import (
	"strings"

	"github.com/openvenues/gopostal/parser"
)

// LibpostalAvailable reports whether the binary was built against libpostal.
const LibpostalAvailable = true

// LibpostalTagger tags addresses with libpostal's CRF parser.
type LibpostalTagger struct{}

// NewTagger returns the libpostal-backed tagger.
func NewTagger() Tagger {
	return LibpostalTagger{}
}

func (LibpostalTagger) Tag(text string) []Component {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parsed := parser.ParseAddress(text)
	out := make([]Component, 0, len(parsed))
	for _, c := range parsed {
		out = append(out, Component{Value: c.Value, Label: c.Label})
	}
	return out
}
