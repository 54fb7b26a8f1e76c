package tabulate

// DecodeKey renders a stored table index (as returned by SequenceReader.Get
// or found as a KmerCounts slice position) back to the k-mer string it
// represents, over an alphabet of unmaskedCount bases. Index 0, the absent
// sentinel, has no k-mer and decodes to the empty string.
//
// Grounded on KeyIter (src/counts.rs): the original walks every table index
// in lockstep with counts, generating successive base-4 strings over
// "ACGT"; this computes the same string directly from one index instead,
// since Go callers want a single index at a time rather than a lockstep
// iterator.
func DecodeKey(idx uint32, unmaskedCount int) string {
	if idx == 0 {
		return ""
	}
	v := idx - 1
	const alphabet = "ACGT"
	key := make([]byte, unmaskedCount)
	for i := unmaskedCount - 1; i >= 0; i-- {
		key[i] = alphabet[v%4]
		v /= 4
	}
	return string(key)
}
