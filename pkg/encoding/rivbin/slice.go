package rivbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// encodeSliceLength writes length as a variable-width prefix: 1 byte for
// values up to 2^7-1, 2 bytes up to 2^14-1, 3 bytes up to 2^21-1, and 4
// bytes up to 2^29-1. The low bits of the first byte identify the width
// (0b0, 0b01, 0b011, 0b111), leaving the rest of that byte and any
// following bytes for the value itself, shifted down accordingly.
func encodeSliceLength(w io.Writer, length int) error {
	const (
		max1Byte  = math.MaxUint8 >> 1
		max2Bytes = math.MaxUint16 >> 2
		max3Bytes = math.MaxUint32 >> 11
		max4Bytes = math.MaxUint32 >> 3
	)
	switch {
	case length <= max1Byte:
		return MarshalUint8(w, uint8(length<<1))
	case length <= max2Bytes:
		return MarshalUint16(w, uint16(1)|uint16(length<<2))
	case length <= max3Bytes:
		return MarshalUint24(w, uint32(3)|uint32(length<<3))
	case length <= max4Bytes:
		return MarshalUint32(w, uint32(7)|uint32(length<<3))
	default:
		return fmt.Errorf("rivbin: slice length %d exceeds the maximum supported length %d", length, max4Bytes)
	}
}

// decodeSliceLength reads back a length prefix written by encodeSliceLength.
func decodeSliceLength(r io.Reader) (int, error) {
	var head [1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, err
	}
	b := head[0]

	switch {
	case b&0b1 == 0:
		return int(b >> 1), nil
	case b&0b11 == 0b01:
		rest, err := readTail(r, 1)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(append([]byte{b}, rest...)) >> 2), nil
	case b&0b111 == 0b011:
		rest, err := readTail(r, 2)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint32(append([]byte{b}, append(rest, 0)...)) >> 3), nil
	case b&0b111 == 0b111:
		rest, err := readTail(r, 3)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint32(append([]byte{b}, rest...)) >> 3), nil
	default:
		return 0, fmt.Errorf("rivbin: invalid slice length prefix byte 0x%02x", b)
	}
}

// readTail reads the n bytes following a length prefix's first byte.
func readTail(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
