package domain

// ComparisonStatus is the outcome of cross-checking the two registries.
type ComparisonStatus string

const (
	ComparisonMatch       ComparisonStatus = "match"
	ComparisonMismatch    ComparisonStatus = "mismatch"
	ComparisonUnavailable ComparisonStatus = "unavailable"
)

// ComparisonKey is the value compared across registries: the region label,
// falling back to location and then district.
func (r Result) ComparisonKey() string {
	switch {
	case r.Region != "":
		return r.Region
	case r.Location != "":
		return r.Location
	default:
		return r.District
	}
}

// Compare cross-checks two results. A nil side means that registry failed.
func Compare(a, b *Result) ComparisonStatus {
	if a == nil || b == nil {
		return ComparisonUnavailable
	}
	if a.ComparisonKey() == b.ComparisonKey() {
		return ComparisonMatch
	}
	return ComparisonMismatch
}

// AnyEarlyVoted reports whether either side recorded an early vote.
func AnyEarlyVoted(a, b *Result) bool {
	return (a != nil && a.HasEarlyVoted) || (b != nil && b.HasEarlyVoted)
}
