package rivbin

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/threefoldtech/piclaim/build"
)

// WireMarshaler lets a type take over its own encoding instead of going
// through the reflection-driven default.
type WireMarshaler interface {
	MarshalWire(io.Writer) error
}

// Marshal encodes v into its wire representation.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalAll encodes each of vs in order and returns the concatenation.
func MarshalAll(vs ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).EncodeAll(vs...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes a stream of values to an underlying io.Writer.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w in an Encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the wire encoding of v.
func (e *Encoder) Encode(v interface{}) error {
	return e.encodeValue(reflect.ValueOf(v))
}

// EncodeAll encodes every value in vs, in order, stopping at the first error.
func (e *Encoder) EncodeAll(vs ...interface{}) error {
	for _, v := range vs {
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// writeFull writes p in full or reports io.ErrShortWrite, since a short
// write with a nil error would otherwise go unnoticed.
func (e *Encoder) writeFull(p []byte) error {
	n, err := e.w.Write(p)
	if err == nil && n != len(p) {
		return io.ErrShortWrite
	}
	return err
}

// encodeValue dispatches on val's reflect.Kind, recursing into composite
// types. Any type implementing WireMarshaler bypasses this entirely.
func (e *Encoder) encodeValue(val reflect.Value) error {
	if val.CanInterface() {
		if m, ok := val.Interface().(WireMarshaler); ok {
			return m.MarshalWire(e.w)
		}
	}

	switch val.Kind() {
	case reflect.Ptr:
		present := !val.IsNil()
		if err := MarshalBool(e.w, present); err != nil || !present {
			return err
		}
		return e.encodeValue(val.Elem())

	case reflect.Bool:
		return MarshalBool(e.w, val.Bool())
	case reflect.Uint8:
		return MarshalUint8(e.w, uint8(val.Uint()))
	case reflect.Uint16:
		return MarshalUint16(e.w, uint16(val.Uint()))
	case reflect.Uint32:
		return MarshalUint32(e.w, uint32(val.Uint()))
	case reflect.Uint, reflect.Uint64:
		return MarshalUint64(e.w, val.Uint())
	case reflect.Int8:
		return MarshalUint8(e.w, uint8(val.Int()))
	case reflect.Int16:
		return MarshalUint16(e.w, uint16(val.Int()))
	case reflect.Int32:
		return MarshalUint32(e.w, uint32(val.Int()))
	case reflect.Int, reflect.Int64:
		return MarshalUint64(e.w, uint64(val.Int()))

	case reflect.String:
		return e.encodeVariableLength(val.Len(), func() error {
			return e.writeFull([]byte(val.String()))
		})

	case reflect.Slice:
		return e.encodeVariableLength(val.Len(), func() error {
			return e.encodeSequence(val)
		})

	case reflect.Array:
		return e.encodeSequence(val)

	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if isFieldHidden(val, i) {
				continue
			}
			if err := e.encodeValue(val.Field(i)); err != nil {
				return err
			}
		}
		return nil

	default:
		err := fmt.Errorf("rivbin: cannot marshal value of kind %s (type %s)", val.Kind(), val.Type())
		build.Critical(err)
		return err
	}
}

// encodeVariableLength writes the length prefix for a string or slice and,
// if the length is non-zero, runs body to write the payload.
func (e *Encoder) encodeVariableLength(length int, body func() error) error {
	if err := encodeSliceLength(e.w, length); err != nil || length == 0 {
		return err
	}
	return body()
}

// encodeSequence writes the elements of a slice or array, special-casing
// byte sequences so they're copied in one write rather than element by
// element.
func (e *Encoder) encodeSequence(val reflect.Value) error {
	if val.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < val.Len(); i++ {
			if err := e.encodeValue(val.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	if val.CanAddr() {
		return e.writeFull(val.Slice(0, val.Len()).Bytes())
	}
	raw := reflect.MakeSlice(reflect.SliceOf(val.Type().Elem()), val.Len(), val.Len())
	reflect.Copy(raw, val)
	return e.writeFull(raw.Bytes())
}
