package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	msg := "Sign in to Siggy Profile\nAddress: x\nNonce: 00ff"
	sig, err := SignMessage(key, msg)
	require.NoError(t, err)

	addr, err := RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, AddressOf(key), addr)
}

func TestRecoverAcceptsRawRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := SignMessage(key, "hello")
	require.NoError(t, err)

	raw, err := hexutil.Decode(sig)
	require.NoError(t, err)
	raw[64] -= 27

	addr, err := RecoverAddress("hello", hexutil.Encode(raw))
	require.NoError(t, err)
	assert.Equal(t, AddressOf(key), addr)
}

func TestRecoverAcceptsCompactSignature(t *testing.T) {
	parities := map[byte]bool{}
	for i := 0; i < 64 && len(parities) < 2; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)

		sig, err := SignMessage(key, "hello")
		require.NoError(t, err)
		full, err := hexutil.Decode(sig)
		require.NoError(t, err)
		parities[full[64]] = true

		compact, err := CompactSignature(sig)
		require.NoError(t, err)
		require.Len(t, compact, 2+2*compactSignatureLength)

		addr, err := RecoverAddress("hello", compact)
		require.NoError(t, err)
		assert.Equal(t, AddressOf(key), addr)
	}
	assert.Len(t, parities, 2)
}

func TestCompactSignatureRejectsShortInput(t *testing.T) {
	_, err := CompactSignature("0x1234")
	assert.ErrorIs(t, err, ErrMalformedSignature)
}

func TestRecoverDifferentMessageYieldsDifferentAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := SignMessage(key, "hello")
	require.NoError(t, err)

	addr, err := RecoverAddress("goodbye", sig)
	if err == nil {
		assert.NotEqual(t, AddressOf(key), addr)
	}
}

func TestRecoverRejectsMalformed(t *testing.T) {
	for _, sig := range []string{"", "0x", "not-hex", "0x1234"} {
		_, err := RecoverAddress("hello", sig)
		assert.ErrorIs(t, err, ErrMalformedSignature, sig)
	}

	bad := make([]byte, 65)
	bad[64] = 30
	_, err := RecoverAddress("hello", hexutil.Encode(bad))
	assert.ErrorIs(t, err, ErrMalformedSignature)
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	h := hexutil.Encode(crypto.FromECDSA(key))

	parsed, err := ParsePrivateKey(h)
	require.NoError(t, err)
	assert.Equal(t, AddressOf(key), AddressOf(parsed))

	parsed, err = ParsePrivateKey(h[2:])
	require.NoError(t, err)
	assert.Equal(t, AddressOf(key), AddressOf(parsed))

	_, err = ParsePrivateKey("zz")
	assert.Error(t, err)
}
