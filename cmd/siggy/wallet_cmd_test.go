package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/internal/eth"
)

// Well-known throwaway key; never holds funds.
const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestWalletSignProducesRecoverableSignature(t *testing.T) {
	for _, extra := range [][]string{nil, {"--compact"}} {
		address, signature := runWalletSign(t, extra...)
		assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", address)

		recovered, err := eth.RecoverAddress(testMessage, signature)
		require.NoError(t, err)
		assert.Equal(t, address, recovered.Hex())
	}

	_, compact := runWalletSign(t, "--compact")
	assert.Len(t, compact, 2+128)
}

var testMessage = core.ChallengeMessage("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", "abc123")

func runWalletSign(t *testing.T, extra ...string) (string, string) {
	t.Helper()
	cmd := walletCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"sign", "--key", testKey, "--message", testMessage}, extra...))
	require.NoError(t, cmd.Execute())

	var address, signature string
	for _, line := range strings.Split(out.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		switch fields[0] {
		case "address:":
			address = fields[1]
		case "signature:":
			signature = fields[1]
		}
	}
	return address, signature
}

func TestWalletSignRejectsBadKey(t *testing.T) {
	cmd := walletCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sign", "--key", "0xnothex", "--message", "hi"})
	assert.Error(t, cmd.Execute())
}
