package committee

// OneThirdQuorum returns the minimum number of matching signals needed for a
// bridge decision over a committee of n members. Committees smaller than 3
// cannot absorb any faulty member, so every signal is required; otherwise
// floor(n/3)+1 signals guarantee at least one honest member behind any
// decision while tolerating up to a third of the committee being faulty.
func OneThirdQuorum(n uint32) uint32 {
	if n < 3 {
		return n
	}
	return n/3 + 1
}

// TwoThirdsQuorum returns the supermajority threshold used for decisions
// that must be backed by a majority of honest members, such as proofs
// exported for external verification.
func TwoThirdsQuorum(n uint32) uint32 {
	if n < 3 {
		return n
	}
	return 2*n/3 + 1
}
