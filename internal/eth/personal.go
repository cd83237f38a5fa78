// Package eth implements EIP-191 personal message signing and recovery.
package eth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	signatureLength        = 65
	compactSignatureLength = 64
)

var ErrMalformedSignature = errors.New("malformed signature")

// RecoverAddress returns the address whose key produced signature over message
// under the "\x19Ethereum Signed Message:\n" prefix. signature is 0x-prefixed hex
// of R || S || V with V in {0, 1, 27, 28}, or the EIP-2098 compact R || yParityAndS.
func RecoverAddress(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(sig) == compactSignatureLength {
		sig = expandCompact(sig)
	}
	if len(sig) != signatureLength {
		return common.Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedSignature, signatureLength, len(sig))
	}

	// crypto expects the recovery id, not the legacy 27/28 form
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id", ErrMalformedSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// expandCompact turns R || yParityAndS into R || S || V.
// The top bit of the second word is the y parity.
func expandCompact(compact []byte) []byte {
	sig := make([]byte, signatureLength)
	copy(sig, compact)
	sig[32] &= 0x7f
	sig[64] = compact[32] >> 7
	return sig
}

// CompactSignature converts a 65-byte signature to its EIP-2098 form
func CompactSignature(signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(sig) != signatureLength {
		return "", fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedSignature, signatureLength, len(sig))
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	compact := sig[:compactSignatureLength]
	if v == 1 {
		compact[32] |= 0x80
	}
	return hexutil.Encode(compact), nil
}

// SignMessage produces the signature a wallet returns for personal_sign(message)
func SignMessage(key *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	// Wallets report V as 27/28
	sig[64] += 27

	return hexutil.Encode(sig), nil
}

// ParsePrivateKey accepts a hex private key with or without the 0x prefix
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// AddressOf returns the address controlled by key
func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
