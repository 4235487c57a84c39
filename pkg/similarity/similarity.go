// Package similarity computes simhash fingerprints for near-duplicate
// detection of prompt templates.
package similarity

import (
	"strings"

	"github.com/go-dedup/simhash"
)

// DefaultThreshold is the hamming distance at or under which two
// fingerprints are considered near-duplicates.
const DefaultThreshold = 3

// promptFeatureSet implements simhash.FeatureSet over prompt text
// using word-level shingles.
type promptFeatureSet struct {
	text string
}

// GetFeatures extracts word bigram features. Single words are added
// for very short texts to keep some signal.
func (p promptFeatureSet) GetFeatures() []simhash.Feature {
	words := tokenize(p.text)
	if len(words) == 0 {
		return []simhash.Feature{}
	}

	features := make([]simhash.Feature, 0, len(words))
	for i := 0; i < len(words)-1; i++ {
		features = append(features, simhash.NewFeature([]byte(words[i]+" "+words[i+1])))
	}
	if len(words) < 4 {
		for _, w := range words {
			features = append(features, simhash.NewFeature([]byte(w)))
		}
	}
	return features
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		isWord := r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_'
		return !isWord
	})
}

// Fingerprint computes the 64-bit simhash of prompt text.
func Fingerprint(text string) uint64 {
	sh := simhash.NewSimhash()
	return sh.GetSimhash(promptFeatureSet{text: text})
}

// HammingDistance counts differing bits between two fingerprints.
func HammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}

// IsNearDuplicate reports whether two texts fingerprint within
// DefaultThreshold of each other.
func IsNearDuplicate(a, b string) bool {
	return HammingDistance(Fingerprint(a), Fingerprint(b)) <= DefaultThreshold
}
