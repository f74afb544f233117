// Package crypto wraps the Ed25519 primitives used to derive Pi Network /
// Stellar-compatible keypairs, sign transaction envelopes, and wipe secrets
// from memory once a wallet is no longer tracked.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
)

const (
	// SeedSize is the size, in bytes, of the seed a SecretKey is derived from.
	SeedSize = ed25519.SeedSize
	// PublicKeySize is the size, in bytes, of a PublicKey.
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize is the size, in bytes, of a Signature.
	SignatureSize = ed25519.SignatureSize
)

// ErrInvalidSeed reports a seed of the wrong length. KeyPairFromSeed takes
// a fixed-size array and so never returns it; no function in this package
// returns it.
var ErrInvalidSeed = errors.New("crypto: seed must be exactly SeedSize bytes")

type (
	// PublicKey identifies an account on the ledger.
	PublicKey [PublicKeySize]byte
	// SecretKey signs transactions on behalf of a PublicKey. It is never
	// logged or returned from a public API; the bolt-backed wallet store
	// persists it alongside the rest of the wallet record.
	SecretKey [ed25519.PrivateKeySize]byte
	// Signature is a detached Ed25519 signature.
	Signature [SignatureSize]byte
)

// GenerateKeyPair creates a new random keypair.
func GenerateKeyPair() (SecretKey, PublicKey, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return SecretKey{}, PublicKey{}, err
	}
	return KeyPairFromSeed(seed)
}

// KeyPairFromSeed deterministically derives a keypair from a 32-byte seed.
// This is the operation used to check that a user-supplied secret actually
// derives to the address it is claimed to belong to.
func KeyPairFromSeed(seed [SeedSize]byte) (SecretKey, PublicKey, error) {
	priv := ed25519.NewKeyFromSeed(seed[:])
	var sk SecretKey
	var pk PublicKey
	copy(sk[:], priv)
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	return sk, pk, nil
}

// PublicKey derives the public half of sk.
func (sk SecretKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], ed25519.PrivateKey(sk[:]).Public().(ed25519.PublicKey))
	return pk
}

// Sign signs data with sk, returning a detached signature.
func Sign(data []byte, sk SecretKey) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(sk[:]), data))
	return sig
}

// Verify reports whether sig is a valid signature of data under pk.
func Verify(pk PublicKey, data []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), data, sig[:])
}

// SecureWipe zeroes a secret key in place. Called when a wallet is removed
// from the registry, so that its signing key does not linger in memory
// longer than necessary.
func SecureWipe(sk *SecretKey) {
	for i := range sk {
		sk[i] = 0
	}
}
