package dclass

// numHashPrimes is the size of the prime table a HashGenerator cycles
// through; maxPrimeSieveN is the smallest sieve bound that yields at least
// that many primes (the 10000th prime is 104729).
const (
	numHashPrimes = 10000
	maxPrimeSieveN = 104744
)

var hashPrimes = sieveFirstPrimes(maxPrimeSieveN, numHashPrimes)

// sieveFirstPrimes runs a sieve of Eratosthenes up to n and returns the
// first count primes found, in ascending order.
func sieveFirstPrimes(n, count int) []uint32 {
	composite := make([]bool, n+1)
	primes := make([]uint32, 0, count)

	for i := 2; i <= n && len(primes) < count; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, uint32(i))
		for j := i * i; j <= n; j += i {
			composite[j] = true
		}
	}

	return primes
}

// HashGenerator accumulates a stable 32-bit fingerprint from a sequence of
// integers and strings. Two generators fed the same sequence in the same
// order always produce the same hash, regardless of platform or language,
// because every step wraps modulo 2^32.
type HashGenerator struct {
	index int
	acc   uint32
}

// NewHashGenerator returns a HashGenerator ready to accumulate.
func NewHashGenerator() *HashGenerator {
	return &HashGenerator{}
}

// AddInt folds n into the accumulator as a 32-bit two's-complement value.
func (h *HashGenerator) AddInt(n int64) {
	h.acc += hashPrimes[h.index] * uint32(n)
	h.index = (h.index + 1) % numHashPrimes
}

// AddString folds a UTF-8 string's length, then each of its bytes.
func (h *HashGenerator) AddString(s string) {
	h.AddBytes([]byte(s))
}

// AddBytes folds a raw byte slice's length, then each byte.
func (h *HashGenerator) AddBytes(b []byte) {
	h.AddInt(int64(len(b)))
	for _, c := range b {
		h.AddInt(int64(c))
	}
}

// GetHash returns the low 32 bits of the accumulator.
func (h *HashGenerator) GetHash() uint32 {
	return h.acc
}
