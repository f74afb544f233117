package rivbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MarshalBool writes b as a single 0x00/0x01 byte.
func MarshalBool(w io.Writer, b bool) error {
	if b {
		return MarshalUint8(w, 1)
	}
	return MarshalUint8(w, 0)
}

// UnmarshalBool reads a single 0x00/0x01 byte as a bool.
func UnmarshalBool(r io.Reader) (bool, error) {
	x, err := UnmarshalUint8(r)
	if err != nil {
		return false, fmt.Errorf("rivbin: UnmarshalBool: %w", err)
	}
	switch x {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("rivbin: UnmarshalBool: byte %d is not a valid bool", x)
	}
}

// MarshalUint8 writes x as a single byte.
func MarshalUint8(w io.Writer, x uint8) error {
	return writeExactly(w, []byte{x})
}

// UnmarshalUint8 reads a single byte as a uint8.
func UnmarshalUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if err := readExactlyFrom(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// MarshalUint16 writes x little-endian in 2 bytes.
func MarshalUint16(w io.Writer, x uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], x)
	return writeExactly(w, b[:])
}

// UnmarshalUint16 reads a little-endian 2-byte uint16.
func UnmarshalUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if err := readExactlyFrom(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// MarshalUint24 writes the low 24 bits of x little-endian in 3 bytes. Used
// only by the variable-length slice-length prefix; x must fit in 24 bits.
func MarshalUint24(w io.Writer, x uint32) error {
	const max24 = math.MaxUint32 >> 8
	if x > max24 {
		return fmt.Errorf("rivbin: MarshalUint24: %d overflows 24 bits", x)
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	return writeExactly(w, b[:3])
}

// UnmarshalUint24 reads a little-endian 3-byte value, widened to uint32.
func UnmarshalUint24(r io.Reader) (uint32, error) {
	var b [4]byte
	if err := readExactlyFrom(r, b[:3]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// MarshalUint32 writes x little-endian in 4 bytes.
func MarshalUint32(w io.Writer, x uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	return writeExactly(w, b[:])
}

// UnmarshalUint32 reads a little-endian 4-byte uint32.
func UnmarshalUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if err := readExactlyFrom(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// MarshalUint64 writes x little-endian in 8 bytes.
func MarshalUint64(w io.Writer, x uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return writeExactly(w, b[:])
}

// UnmarshalUint64 reads a little-endian 8-byte uint64.
func UnmarshalUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if err := readExactlyFrom(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// writeExactly writes p and turns a silent short write into io.ErrShortWrite.
func writeExactly(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err == nil && n != len(p) {
		return io.ErrShortWrite
	}
	return err
}

// readExactlyFrom fills p completely or returns an error, unlike a bare
// Read which is allowed to return fewer bytes than requested.
func readExactlyFrom(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	return err
}
