package random

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
)

// NewSeed returns a non-negative seed for math/rand drawn from crypto/rand.
func NewSeed() int64 {
	var b [8]byte
	_, err := crypto_rand.Read(b[:])
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
