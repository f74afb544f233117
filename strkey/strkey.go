// Package strkey encodes and decodes the checksummed, base32 account
// addresses used by Pi Network / Stellar-compatible ledgers ("G..."
// strings). The scheme generalizes the teacher codebase's checksummed
// address pattern (types.UnlockHash: version byte + hash + partial
// checksum, hex-rendered) to the real StrKey alphabet: version byte +
// Ed25519 public key + CRC16-XModem checksum, base32-rendered.
package strkey

import (
	"encoding/base32"
	"errors"
)

// versionByteAccountID is the StrKey version byte identifying an ed25519
// account public key ("G..." addresses).
const versionByteAccountID byte = 6 << 3

var (
	// ErrInvalidChecksum is returned when a decoded address's checksum does
	// not match its payload.
	ErrInvalidChecksum = errors.New("strkey: invalid checksum")
	// ErrInvalidVersion is returned when a decoded address does not carry
	// the expected account-ID version byte.
	ErrInvalidVersion = errors.New("strkey: invalid version byte")
	// ErrInvalidLength is returned when a decoded address is not the
	// expected length.
	ErrInvalidLength = errors.New("strkey: invalid length")
)

// Encode renders a 32-byte Ed25519 public key as a checksummed StrKey
// address string.
func Encode(pk [32]byte) string {
	payload := make([]byte, 0, 1+32+2)
	payload = append(payload, versionByteAccountID)
	payload = append(payload, pk[:]...)
	sum := crc16XModem(payload)
	payload = append(payload, byte(sum), byte(sum>>8))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(payload)
}

// Decode parses a StrKey address string back into its raw public key bytes.
func Decode(address string) ([32]byte, error) {
	var out [32]byte
	payload, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(address)
	if err != nil {
		return out, err
	}
	if len(payload) != 1+32+2 {
		return out, ErrInvalidLength
	}
	if payload[0] != versionByteAccountID {
		return out, ErrInvalidVersion
	}
	body, sum := payload[:len(payload)-2], payload[len(payload)-2:]
	want := crc16XModem(body)
	if byte(want) != sum[0] || byte(want>>8) != sum[1] {
		return out, ErrInvalidChecksum
	}
	copy(out[:], body[1:])
	return out, nil
}

// Mask renders an address with only its first 6 and last 4 characters
// visible, for inclusion in log messages. Never log a full address or
// secret; this is the only form that may appear in a LogRecord's message.
func Mask(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

// crc16XModem computes the CRC16/XMODEM checksum used by the StrKey
// encoding. The standard library has no CRC16 implementation, so this
// mirrors the teacher's convention of hand-rolling small checksum helpers
// (types.UnlockHash does the same for its own, simpler checksum).
func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
