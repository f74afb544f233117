package rivbin

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeSliceLengthWidths(t *testing.T) {
	cases := []struct {
		value      int
		byteLength int
	}{
		{0, 1}, {1, 1}, {42, 1}, {1 << 2, 1}, {1 << 5, 1}, {1 << 6, 1},
		{1 << 7, 2}, {1 << 8, 2}, {15999, 2}, {1 << 12, 2}, {(1 << 14) - 1, 2},
		{1 << 14, 3}, {1 << 15, 3}, {1 << 18, 3}, {2000000, 3}, {(1 << 21) - 1, 3},
		{1 << 21, 4}, {1 << 22, 4}, {1 << 24, 4}, {1 << 25, 4}, {(1 << 29) - 1, 4},
	}
	for idx, tc := range cases {
		var buf bytes.Buffer
		if err := encodeSliceLength(&buf, tc.value); err != nil {
			t.Fatalf("case %d: encode %d: %v", idx, tc.value, err)
		}
		if buf.Len() != tc.byteLength {
			t.Errorf("case %d: %d encoded to %d bytes, want %d", idx, tc.value, buf.Len(), tc.byteLength)
		}
		got, err := decodeSliceLength(&buf)
		if err != nil {
			t.Fatalf("case %d: decode: %v", idx, err)
		}
		if got != tc.value {
			t.Errorf("case %d: decoded %d, want %d", idx, got, tc.value)
		}
	}
}

func TestEncodeSliceLengthRejectsOverflow(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeSliceLength(&buf, 1<<30); err == nil {
		t.Fatal("expected a length beyond the 4-byte prefix's range to be rejected")
	}
}
