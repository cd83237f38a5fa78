package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAddress(t *testing.T) {
	cases := map[string]bool{
		"0x1111111111111111111111111111111111111111":  true,
		"0xAbCdEf0123456789abcdef0123456789ABCDEF01":  true,
		"1111111111111111111111111111111111111111":    false,
		"0x111111111111111111111111111111111111111":   false,
		"0x11111111111111111111111111111111111111111": false,
		"0xg111111111111111111111111111111111111111":  false,
		" 0x1111111111111111111111111111111111111111": false,
		"": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsAddress(in), in)
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01",
		NormalizeAddress(" 0xAbCdEf0123456789abcdef0123456789ABCDEF01 "))
}

func TestChallengeMessage(t *testing.T) {
	msg := ChallengeMessage("0xAbCdEf0123456789abcdef0123456789ABCDEF01", "deadbeef")
	assert.Equal(t,
		"Sign in to Siggy Profile\nAddress: 0xAbCdEf0123456789abcdef0123456789ABCDEF01\nNonce: deadbeef",
		msg)
	assert.True(t, strings.Contains(msg, NonceLine("deadbeef")))
}

func TestClampRecentLimit(t *testing.T) {
	assert.Equal(t, 1, ClampRecentLimit(0))
	assert.Equal(t, 20, ClampRecentLimit(20))
	assert.Equal(t, MaxRecentLimit, ClampRecentLimit(1000))
}
