package optimizer

import "iter"

// Pair is the number of capacitors and chargers fitted in one tier.
type Pair struct {
	Capacitors int
	Chargers   int
}

// Total returns the number of components the pair uses from its tier cap.
func (p Pair) Total() int {
	return p.Capacitors + p.Chargers
}

// Candidate is one point of the search lattice: a pair per searched tier,
// indexed basic, improved, advanced.
type Candidate [3]Pair

// TierPairs yields every pair with Capacitors+Chargers <= tierCap,
// capacitor count outer and charger count inner, both ascending.
func TierPairs(tierCap int) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for c := 0; c <= tierCap; c++ {
			for h := 0; h <= tierCap-c; h++ {
				if !yield(Pair{Capacitors: c, Chargers: h}) {
					return
				}
			}
		}
	}
}

// Candidates yields the Cartesian product of the per-tier pair sequences with
// the basic tier outermost and the advanced tier innermost. The sequence is
// restartable and its order fixes the tie-break between equal capacities.
func Candidates(caps [3]int) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for basic := range TierPairs(caps[0]) {
			for improved := range TierPairs(caps[1]) {
				for advanced := range TierPairs(caps[2]) {
					if !yield(Candidate{basic, improved, advanced}) {
						return
					}
				}
			}
		}
	}
}

// PairCount is the number of pairs TierPairs yields: the triangular number
// (cap+1)(cap+2)/2.
func PairCount(tierCap int) int {
	if tierCap < 0 {
		return 0
	}
	return (tierCap + 1) * (tierCap + 2) / 2
}

// CandidateCount is the number of candidates Candidates yields.
func CandidateCount(caps [3]int) int {
	return PairCount(caps[0]) * PairCount(caps[1]) * PairCount(caps[2])
}
