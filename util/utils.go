package util

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomSubset returns k distinct values of [0, n) in random order.
func RandomSubset(n, k int) []uint64 {
	if k > n {
		k = n
	}
	perm := mrand.Perm(n)[:k]
	out := make([]uint64, k)
	for i, v := range perm {
		out[i] = uint64(v)
	}
	return out
}
