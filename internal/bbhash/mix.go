package bbhash

import "math/bits"

// WyHash v4 constants.
const (
	wyp0 = 0xa0761d6478bd642f
	wyp1 = 0xe7037ed1a0b428db
)

// wymix performs a 128-bit multiply and XOR fold.
func wymix(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return hi ^ lo
}

// levelHash derives the hash used at level from the key's base hash.
func levelHash(h uint64, level int) uint64 {
	return wymix(h^(uint64(level+1)*wyp0), wyp1)
}
