package rivbin

import (
	"bytes"
	"math"
	"reflect"
	"testing"
)

// Named aliases of the builtin integer kinds, to confirm the reflection
// path dispatches on Kind() rather than requiring an exact builtin type.
type (
	aliasUint   uint
	aliasUint8  uint8
	aliasUint16 uint16
	aliasUint32 uint32
	aliasUint64 uint64
	aliasInt    int
	aliasInt8   int8
	aliasInt16  int16
	aliasInt32  int32
	aliasInt64  int64
)

func TestMarshalUnmarshalIntegerWidths(t *testing.T) {
	cases := []struct {
		value      interface{}
		byteLength int
	}{
		{uint8(0), 1}, {uint8(math.MaxUint8), 1}, {aliasUint8(1), 1},
		{uint16(0), 2}, {uint16(math.MaxUint16), 2}, {aliasUint16(1), 2},
		{uint32(0), 4}, {uint32(math.MaxUint32), 4}, {aliasUint32(1), 4},
		{uint64(0), 8}, {uint64(math.MaxUint64), 8}, {aliasUint64(1), 8},
		{uint(0), 8}, {uint(math.MaxUint64), 8}, {aliasUint(1), 8},
		{int8(0), 1}, {int8(math.MaxInt8), 1}, {aliasInt8(1), 1},
		{int16(0), 2}, {int16(math.MaxInt16), 2}, {aliasInt16(1), 2},
		{int32(0), 4}, {int32(math.MaxInt32), 4}, {aliasInt32(1), 4},
		{int64(0), 8}, {int64(math.MaxInt64), 8}, {aliasInt64(1), 8},
		{int(0), 8}, {int(math.MaxInt64), 8}, {aliasInt(1), 8},
	}
	for idx, tc := range cases {
		var buf bytes.Buffer
		if err := NewEncoder(&buf).Encode(tc.value); err != nil {
			t.Fatalf("case %d: encode %v: %v", idx, tc.value, err)
		}
		if buf.Len() != tc.byteLength {
			t.Errorf("case %d: %v encoded to %d bytes, want %d", idx, tc.value, buf.Len(), tc.byteLength)
		}
		buf.WriteString("trailing")

		dst := reflect.New(reflect.TypeOf(tc.value))
		if err := NewDecoder(&buf).Decode(dst.Interface()); err != nil {
			t.Fatalf("case %d: decode: %v", idx, err)
		}
		if got := dst.Elem().Interface(); !reflect.DeepEqual(tc.value, got) {
			t.Errorf("case %d: decoded %v, want %v", idx, got, tc.value)
		}
		if buf.String() != "trailing" {
			t.Errorf("case %d: decode consumed past the encoded value, leftover %q", idx, buf.String())
		}
	}
}

func TestUnmarshalIntegerTruncatedInputIsError(t *testing.T) {
	cases := []struct {
		input []byte
		zero  interface{}
	}{
		{nil, uint8(0)},
		{[]byte{}, uint16(0)},
		{[]byte{1}, uint32(0)},
		{[]byte{1, 1, 1}, uint64(0)},
		{[]byte{1, 1, 1}, uint(0)},
		{nil, int8(0)},
		{[]byte{0}, int16(0)},
		{[]byte{1, 0, 1}, int32(0)},
		{[]byte{1, 1, 1, 1, 1}, int64(0)},
		{[]byte{1, 1, 1, 1, 1}, int(0)},
	}
	for idx, tc := range cases {
		dst := reflect.New(reflect.TypeOf(tc.zero))
		if err := Unmarshal(tc.input, dst.Interface()); err == nil {
			t.Errorf("case %d: expected truncated input %v to fail decoding into %s", idx, tc.input, dst.Type())
		}
	}
}

func TestMarshalUnmarshalStructSkipsUnexportedFields(t *testing.T) {
	type record struct {
		Name    string
		secret  uint64
		Balance uint32
		_       bool
	}
	in := record{Name: "wallet-1", secret: 0xdeadbeef, Balance: 42}
	b, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out record
	if err := Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != in.Name || out.Balance != in.Balance {
		t.Fatalf("unexpected roundtrip: %+v != %+v", out, in)
	}
	if out.secret != 0 {
		t.Fatalf("expected the unexported field to stay zero, got %d", out.secret)
	}
}

func TestMarshalUnmarshalSliceAndStringRoundTrip(t *testing.T) {
	type record struct {
		Label string
		Data  []byte
		Nums  []uint32
	}
	in := record{
		Label: "读万卷书不如行万里路",
		Data:  []byte{0, 1, 2, 'a', 'b'},
		Nums:  []uint32{0, math.MaxUint32, 42, 1000},
	}
	b, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out record
	if err := Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("unexpected roundtrip: %+v != %+v", out, in)
	}
}

func TestMarshalUnmarshalEmptySliceResetsDestination(t *testing.T) {
	v := []int{4, 2}
	b, err := Marshal([]int{})
	if err != nil {
		t.Fatal(err)
	}
	if err := Unmarshal(b, &v); err != nil {
		t.Fatal(err)
	}
	if len(v) != 0 {
		t.Fatalf("expected an empty encoded slice to reset the destination, got %v", v)
	}
}

func TestMarshalUnmarshalNilPointerRoundTrips(t *testing.T) {
	var in *uint64
	b, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	out := new(uint64)
	*out = 7
	if err := Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Fatalf("expected a nil pointer to decode back to nil, got %v", *out)
	}
}

func TestMarshalAllConcatenatesInOrder(t *testing.T) {
	b, err := MarshalAll(uint8(1), uint16(2), "three")
	if err != nil {
		t.Fatal(err)
	}
	var a uint8
	var c uint16
	var d string
	if err := UnmarshalAll(b, &a, &c, &d); err != nil {
		t.Fatal(err)
	}
	if a != 1 || c != 2 || d != "three" {
		t.Fatalf("unexpected MarshalAll/UnmarshalAll roundtrip: %d %d %q", a, c, d)
	}
}
