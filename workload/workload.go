// Package workload provides the deterministic CPU-bound toy functions
// used by the demonstrations, benchmarks, and tests.
package workload

import "math/rand"

// LeibnizPi approximates pi as the n-th partial sum of the
// Madhava-Leibniz series. Deliberately unvectorised; the point is to
// burn CPU proportionally to n.
func LeibnizPi(n int) float64 {
	sum := 0.0
	sign := 1.0
	for i := 0; i < n; i++ {
		sum += sign * 4.0 / float64(2*i+1)
		sign = -sign
	}
	return sum
}

// MonteCarloPi approximates pi by drawing n points in the unit square
// from a seeded source, so equal seeds give equal results.
func MonteCarloPi(n int, seed int64) float64 {
	rng := rand.New(rand.NewSource(seed))
	inside := 0
	for i := 0; i < n; i++ {
		x := rng.Float64()
		y := rng.Float64()
		if x*x+y*y <= 1.0 {
			inside++
		}
	}
	return 4.0 * float64(inside) / float64(n)
}

// SumRandom sums n draws from a seeded uniform source.
func SumRandom(n int, seed int64) float64 {
	rng := rand.New(rand.NewSource(seed))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += rng.Float64()
	}
	return sum
}

// Double is the trivial deterministic function used by correctness
// tests: identical output for serial and parallel runs.
func Double(v int64) float64 {
	return float64(2 * v)
}

// NextLucas returns the next element of a Lucas sequence of the first
// kind with parameters p and q, given the last two elements.
func NextLucas(a, b, p, q int64) int64 {
	return p*b - q*a
}

// LucasUntil extends the sequence {0, 1, ...} with parameters p and q
// until the last element reaches limit, and returns the full sequence.
func LucasUntil(p, q, limit int64) []int64 {
	seq := []int64{0, 1}
	for seq[len(seq)-1] < limit {
		n := len(seq)
		seq = append(seq, NextLucas(seq[n-2], seq[n-1], p, q))
	}
	return seq
}
