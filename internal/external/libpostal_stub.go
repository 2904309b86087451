//go:build !libpostal

package external

// LibpostalAvailable reports whether the binary was built against libpostal.
const LibpostalAvailable = false

// NewTagger returns the positional SegmentTagger. Build with -tags libpostal
// for the statistical tagger.
func NewTagger() Tagger {
	return SegmentTagger{}
}
