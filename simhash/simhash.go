// Package simhash fingerprints short texts so that two snapshots of the
// detail panel can be compared cheaply. Places sharing a name (chain
// stores) still differ in address, phone and hours, which moves the
// fingerprint even when the title does not change.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash of text. Features are the
// lowercased words plus adjacent word pairs, so reordered panels (a
// rating that moved next to another address) also shift the hash.
// Empty text yields 0.
func Fingerprint(text string) uint64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var weights [64]int
	add := func(feature string) {
		h := fnv.New64a()
		h.Write([]byte(feature))
		sum := h.Sum64()
		for i := range weights {
			if sum>>i&1 == 1 {
				weights[i]++
			} else {
				weights[i]--
			}
		}
	}
	for i, w := range words {
		add(w)
		if i > 0 {
			add(words[i-1] + " " + w)
		}
	}

	var fp uint64
	for i, w := range weights {
		if w > 0 {
			fp |= 1 << i
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Changed reports whether b differs from a by more than threshold bits.
// An empty fingerprint never counts as a change: a blank panel that is
// still loading is not new content.
func Changed(a, b uint64, threshold int) bool {
	return b != 0 && Distance(a, b) > threshold
}
