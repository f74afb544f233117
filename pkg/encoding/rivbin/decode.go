package rivbin

import (
	"bytes"
	"errors"
	"io"
	"reflect"
)

// WireUnmarshaler lets a type take over its own decoding instead of going
// through the reflection-driven default.
type WireUnmarshaler interface {
	UnmarshalWire(io.Reader) error
}

// errNilDestination is returned when Decode is asked to decode into
// something other than a non-nil pointer.
var errNilDestination = errors.New("rivbin: decode destination must be a non-nil pointer")

// Unmarshal decodes b into v, which must be a pointer.
func Unmarshal(b []byte, v interface{}) error {
	return NewDecoder(bytes.NewReader(b)).Decode(v)
}

// UnmarshalAll decodes successive values out of b into each of vs, which
// must all be pointers.
func UnmarshalAll(b []byte, vs ...interface{}) error {
	return NewDecoder(bytes.NewReader(b)).DecodeAll(vs...)
}

// Decoder reads a stream of values from an underlying io.Reader.
type Decoder struct {
	r io.Reader
}

// NewDecoder wraps r in a Decoder.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the next wire-encoded value into v, which must be a pointer.
func (d *Decoder) Decode(v interface{}) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return errNilDestination
	}
	return d.decodeValue(ptr.Elem())
}

// DecodeAll decodes one value per entry of vs, in order, stopping at the
// first error.
func (d *Decoder) DecodeAll(vs ...interface{}) error {
	for _, v := range vs {
		if err := d.Decode(v); err != nil {
			return err
		}
	}
	return nil
}

// decodeValue dispatches on val's reflect.Kind, recursing into composite
// types. Any addressable type implementing WireUnmarshaler bypasses this
// entirely.
func (d *Decoder) decodeValue(val reflect.Value) error {
	if val.CanAddr() && val.Addr().CanInterface() {
		if u, ok := val.Addr().Interface().(WireUnmarshaler); ok {
			return u.UnmarshalWire(d.r)
		}
	}

	switch val.Kind() {
	case reflect.Ptr:
		present, err := UnmarshalBool(d.r)
		if err != nil {
			return err
		}
		if !present {
			val.Set(reflect.Zero(val.Type()))
			return nil
		}
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		return d.decodeValue(val.Elem())

	case reflect.Bool:
		b, err := UnmarshalBool(d.r)
		if err != nil {
			return err
		}
		val.SetBool(b)
		return nil

	case reflect.Uint8:
		x, err := UnmarshalUint8(d.r)
		if err != nil {
			return err
		}
		val.SetUint(uint64(x))
		return nil
	case reflect.Uint16:
		x, err := UnmarshalUint16(d.r)
		if err != nil {
			return err
		}
		val.SetUint(uint64(x))
		return nil
	case reflect.Uint32:
		x, err := UnmarshalUint32(d.r)
		if err != nil {
			return err
		}
		val.SetUint(uint64(x))
		return nil
	case reflect.Uint, reflect.Uint64:
		x, err := UnmarshalUint64(d.r)
		if err != nil {
			return err
		}
		val.SetUint(x)
		return nil

	case reflect.Int8:
		x, err := UnmarshalUint8(d.r)
		if err != nil {
			return err
		}
		val.SetInt(int64(int8(x)))
		return nil
	case reflect.Int16:
		x, err := UnmarshalUint16(d.r)
		if err != nil {
			return err
		}
		val.SetInt(int64(int16(x)))
		return nil
	case reflect.Int32:
		x, err := UnmarshalUint32(d.r)
		if err != nil {
			return err
		}
		val.SetInt(int64(int32(x)))
		return nil
	case reflect.Int, reflect.Int64:
		x, err := UnmarshalUint64(d.r)
		if err != nil {
			return err
		}
		val.SetInt(int64(x))
		return nil

	case reflect.String:
		n, err := decodeSliceLength(d.r)
		if err != nil {
			return err
		}
		raw, err := d.readExactly(n)
		if err != nil {
			return err
		}
		val.SetString(string(raw))
		return nil

	case reflect.Slice:
		n, err := decodeSliceLength(d.r)
		if err != nil {
			return err
		}
		if n == 0 {
			val.Set(reflect.Zero(val.Type()))
			return nil
		}
		val.Set(reflect.MakeSlice(val.Type(), n, n))
		return d.decodeSequence(val)

	case reflect.Array:
		return d.decodeSequence(val)

	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if isFieldHidden(val, i) {
				continue
			}
			if err := d.decodeValue(val.Field(i)); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.New("rivbin: cannot unmarshal into kind " + val.Kind().String())
	}
}

// decodeSequence fills an already-sized slice or array, special-casing
// byte sequences so they're read in one call rather than element by
// element.
func (d *Decoder) decodeSequence(val reflect.Value) error {
	if val.Type().Elem().Kind() == reflect.Uint8 {
		_, err := io.ReadFull(d.r, val.Slice(0, val.Len()).Bytes())
		return err
	}
	for i := 0; i < val.Len(); i++ {
		if err := d.decodeValue(val.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// readExactly reads exactly n bytes into a freshly allocated slice,
// reporting io.ErrUnexpectedEOF (or the reader's own error) on a short read.
func (d *Decoder) readExactly(n int) ([]byte, error) {
	if buf, ok := d.r.(*bytes.Reader); ok {
		raw := make([]byte, n)
		read, err := buf.Read(raw)
		if err != nil {
			return nil, err
		}
		if read != n {
			return nil, io.ErrUnexpectedEOF
		}
		return raw, nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
