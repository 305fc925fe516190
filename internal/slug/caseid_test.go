package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCaseID(t *testing.T) {
	assert.Equal(t, "L001", FormatCaseID(1))
	assert.Equal(t, "L042", FormatCaseID(42))
	assert.Equal(t, "L999", FormatCaseID(999))
	assert.Equal(t, "L1234", FormatCaseID(1234))
}

func TestParseCaseID(t *testing.T) {
	n, err := ParseCaseID("L042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"", "L", "042", "L-1", "L+1", "LABC", "l001", "L 1"} {
		_, err := ParseCaseID(bad)
		assert.ErrorIs(t, err, ErrMalformedCaseID, bad)
	}
}

func TestNextCaseID(t *testing.T) {
	tests := []struct {
		max  string
		want string
	}{
		{"", "L001"},
		{"L001", "L002"},
		{"L009", "L010"},
		{"L999", "L1000"},
		{"L1234", "L1235"},
	}

	for _, tt := range tests {
		t.Run(tt.max, func(t *testing.T) {
			assert.Equal(t, tt.want, NextCaseID(tt.max, nil))
		})
	}
}

func TestNextCaseID_MalformedFallsBackToRandomRange(t *testing.T) {
	assert.Equal(t, "L900", NextCaseID("garbage", fixedRand(0)))
	assert.Equal(t, "L9999", NextCaseID("garbage", fixedRand(9099)))

	for range 100 {
		got := NextCaseID("Lxyz", nil)
		n, err := ParseCaseID(got)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 900)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestCaseIDRoundTrip(t *testing.T) {
	for _, n := range []int{1, 7, 99, 100, 1000, 12345} {
		got, err := ParseCaseID(FormatCaseID(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}
