package domain

import (
	dErrors "votecheck/pkg/domain-errors"
)

// NationalIDLength is the number of digits in a Thai national identity number.
const NationalIDLength = 13

// NationalID is a 13-digit identity number whose last digit is a checksum over
// the first twelve. Values are only produced by ParseNationalID.
type NationalID string

// ParseNationalID validates s and returns it as a NationalID.
func ParseNationalID(s string) (NationalID, error) {
	if !IsValidNationalID(s) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid Thai ID")
	}
	return NationalID(s), nil
}

// String returns the raw digits.
func (n NationalID) String() string {
	return string(n)
}

// IsNil reports whether the ID is empty.
func (n NationalID) IsNil() bool {
	return n == ""
}

// IsValidNationalID reports whether id is exactly 13 ASCII digits and its last
// digit matches the weighted mod-11 checksum of the first twelve:
//
//	S = Σ d[i] × (13 − i), i = 1..12
//	C = (11 − S mod 11) mod 10
//
// It never panics; any malformed input is simply invalid.
func IsValidNationalID(id string) bool {
	if len(id) != NationalIDLength {
		return false
	}
	for i := 0; i < NationalIDLength; i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return CheckDigit(id[:NationalIDLength-1]) == int(id[NationalIDLength-1]-'0')
}

// CheckDigit computes the check digit for a 12-digit prefix. It returns -1 if
// prefix is not exactly 12 ASCII digits.
func CheckDigit(prefix string) int {
	if len(prefix) != NationalIDLength-1 {
		return -1
	}
	sum := 0
	for i := 0; i < len(prefix); i++ {
		d := prefix[i]
		if d < '0' || d > '9' {
			return -1
		}
		sum += int(d-'0') * (NationalIDLength - i)
	}
	return (11 - sum%11) % 10
}
