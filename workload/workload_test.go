package workload

import (
	"math"
	"testing"
)

func TestLeibnizPi(t *testing.T) {
	t.Parallel()

	got := LeibnizPi(1_000_000)
	if math.Abs(got-math.Pi) > 1e-5 {
		t.Fatalf("LeibnizPi too far from pi: %v", got)
	}
	if LeibnizPi(1) != 4.0 {
		t.Fatalf("first partial sum should be 4")
	}
}

func TestMonteCarloPi_Deterministic(t *testing.T) {
	t.Parallel()

	a := MonteCarloPi(100_000, 42)
	b := MonteCarloPi(100_000, 42)
	if a != b {
		t.Fatalf("same seed should reproduce: %v vs %v", a, b)
	}
	if math.Abs(a-math.Pi) > 0.05 {
		t.Fatalf("estimate too far from pi: %v", a)
	}
}

func TestSumRandom_Deterministic(t *testing.T) {
	t.Parallel()

	if SumRandom(1000, 7) != SumRandom(1000, 7) {
		t.Fatalf("same seed should reproduce")
	}
	s := SumRandom(10_000, 1)
	// Mean of uniform(0,1) is 0.5, so the sum should hover near n/2.
	if s < 4500 || s > 5500 {
		t.Fatalf("sum outside plausible range: %v", s)
	}
}

func TestLucasUntil(t *testing.T) {
	t.Parallel()

	// p=1, q=-1 gives the Fibonacci sequence.
	seq := LucasUntil(1, -1, 10)
	want := []int64{0, 1, 1, 2, 3, 5, 8, 13}
	if len(seq) != len(want) {
		t.Fatalf("length mismatch: %v", seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("seq[%d] = %d, want %d", i, seq[i], want[i])
		}
	}
}
