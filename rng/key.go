// Package rng provides a splittable, stateless random key abstraction.
//
// Every sampling step of the motion generator consumes its own key, so
// independent draws never share mutable generator state and a trajectory is
// fully determined by the key it was built from. Keys derive children with
// splitmix64, whose output feeds golang.org/x/exp/rand sources so that gonum
// distuv distributions can consume them directly.
package rng

import (
	"math"

	"golang.org/x/exp/rand"
)

// Key is an immutable random seed. Derive fresh keys with Split; use each
// derived key for exactly one draw or one child computation.
type Key struct {
	state uint64
}

// NewKey returns the root key for a seed.
func NewKey(seed uint64) Key {
	return Key{state: splitmix64(seed)}
}

// splitmix64 is the 64-bit finalizer from Steele et al., "Fast Splittable
// Pseudorandom Number Generators".
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// child derives the i-th child state.
func (k Key) child(i uint64) Key {
	return Key{state: splitmix64(k.state ^ (0x9e3779b97f4a7c15 * (i + 1)))}
}

// Split returns n statistically independent child keys.
func (k Key) Split(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = k.child(uint64(i))
	}
	return keys
}

// Split2 is the common two-way split: the first key replaces the caller's
// key, the second is consumed by a draw.
func (k Key) Split2() (Key, Key) {
	return k.child(0), k.child(1)
}

// Source returns an x/exp/rand source seeded from this key, for handing to
// gonum distuv distributions.
func (k Key) Source() rand.Source {
	return rand.NewSource(k.state)
}

// Rand returns a full generator seeded from this key.
func (k Key) Rand() *rand.Rand {
	return rand.New(k.Source())
}

// Float64 consumes the key and returns a uniform draw in [0, 1).
func (k Key) Float64() float64 {
	return float64(splitmix64(k.state)>>11) / (1 << 53)
}

// Uniform consumes the key and returns a uniform draw in [min, max).
func (k Key) Uniform(min, max float64) float64 {
	return min + k.Float64()*(max-min)
}

// Normal consumes the key and returns a normal draw with the given standard
// deviation.
func (k Key) Normal(sigma float64) float64 {
	k1, k2 := k.Split2()
	u1 := k1.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	u2 := k2.Float64()
	return sigma * math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// IntBetween consumes the key and returns a uniform integer in [lo, hi].
func (k Key) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo + 1)
	return lo + int(splitmix64(k.state)%span)
}

// Sign consumes the key and returns +1 with probability p, else -1.
func (k Key) Sign(p float64) float64 {
	if k.Float64() < p {
		return 1
	}
	return -1
}
