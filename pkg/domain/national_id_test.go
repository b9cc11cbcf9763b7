package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "votecheck/pkg/domain-errors"
)

func TestIsValidNationalID_Checksum(t *testing.T) {
	// S = 13+24+33+40+45+48+49+48+45+0+3+4 = 352 = 11*32, so C = 11 mod 10 = 1.
	assert.Equal(t, 1, CheckDigit("123456789012"))
	assert.True(t, IsValidNationalID("1234567890121"))
	assert.False(t, IsValidNationalID("1234567890120"))
}

func TestIsValidNationalID_Format(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "123456789012"},
		{"too long", "12345678901210"},
		{"letters", "12345678901a1"},
		{"whitespace padded", " 123456789012"},
		{"dash separated", "1-2345-67890-12"},
		{"thai digits", "๑๒๓๔๕๖๗๘๙๐๑๒๑"},
		{"fullwidth digits", "１２３４５６７８９０１２１"},
		{"null byte", "123456789012\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsValidNationalID(tt.input))
		})
	}
}

func TestIsValidNationalID_EveryPrefixHasExactlyOneCheckDigit(t *testing.T) {
	prefixes := []string{
		"000000000000",
		"000000000001",
		"110170020345",
		"310100123456",
		"999999999999",
		"012345678901",
	}
	for _, p := range prefixes {
		t.Run(p, func(t *testing.T) {
			want := CheckDigit(p)
			require.GreaterOrEqual(t, want, 0)
			for d := 0; d <= 9; d++ {
				id := p + strconv.Itoa(d)
				assert.Equal(t, d == want, IsValidNationalID(id), id)
			}
		})
	}
}

func TestIsValidNationalID_AllZeros(t *testing.T) {
	// S = 0 → C = 11 mod 10 = 1
	assert.False(t, IsValidNationalID(strings.Repeat("0", 13)))
	assert.True(t, IsValidNationalID(strings.Repeat("0", 12)+"1"))
}

func TestCheckDigit_RejectsMalformedPrefix(t *testing.T) {
	assert.Equal(t, -1, CheckDigit(""))
	assert.Equal(t, -1, CheckDigit("12345678901"))
	assert.Equal(t, -1, CheckDigit("12345678901x"))
}

func TestParseNationalID(t *testing.T) {
	t.Run("accepts valid id", func(t *testing.T) {
		id, err := ParseNationalID("1234567890121")
		require.NoError(t, err)
		assert.Equal(t, "1234567890121", id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("rejects invalid id with validation code", func(t *testing.T) {
		id, err := ParseNationalID("1234567890120")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.True(t, id.IsNil())
	})
}
