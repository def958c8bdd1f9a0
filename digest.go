package linesort

import "github.com/zeebo/xxh3"

// recordDigest is an order-independent fingerprint of a multiset of records.
// Each record contributes xxh3 of its formatted line; contributions are
// summed with wraparound, so the same records in any order and any run split
// produce the same digest.
type recordDigest struct {
	sum   uint64
	count uint64
}

// add folds one formatted record (without line terminator) into the digest.
func (d *recordDigest) add(formatted []byte) {
	d.sum += xxh3.Hash(formatted)
	d.count++
}

func (d recordDigest) equal(o recordDigest) bool {
	return d.sum == o.sum && d.count == o.count
}
