package dclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSieveFirstPrimes(t *testing.T) {
	primes := sieveFirstPrimes(100, 10)
	assert.Equal(t, []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes)
}

func TestHashPrimeTableSize(t *testing.T) {
	assert.Len(t, hashPrimes, numHashPrimes)
	assert.EqualValues(t, 104729, hashPrimes[numHashPrimes-1])
}

func TestHashGeneratorDeterministic(t *testing.T) {
	build := func() uint32 {
		h := NewHashGenerator()
		h.AddString("DistributedAvatar")
		h.AddInt(3)
		h.AddString("setPos")
		h.AddInt(int64(TypeFloat64))
		return h.GetHash()
	}
	assert.Equal(t, build(), build())
}

func TestHashGeneratorOrderSensitive(t *testing.T) {
	a := NewHashGenerator()
	a.AddString("x")
	a.AddInt(1)

	b := NewHashGenerator()
	b.AddInt(1)
	b.AddString("x")

	assert.NotEqual(t, a.GetHash(), b.GetHash())
}

func TestHashGeneratorWrapsUint32(t *testing.T) {
	h := NewHashGenerator()
	// Feed a value large enough that acc += prime*n overflows uint32
	// repeatedly; GetHash must still return a plain, non-panicking uint32.
	for i := 0; i < numHashPrimes*3; i++ {
		h.AddInt(1 << 40)
	}
	_ = h.GetHash()
}
