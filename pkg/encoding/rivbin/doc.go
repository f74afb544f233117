// Package rivbin implements the compact little-endian binary codec piclaimd
// uses for two unrelated jobs: framing the claim-and-payment transaction
// envelopes handed to the ledger (see the txbuilder package) and serializing
// wallet/balance records into the bolt stores (see persist/store.go). Both
// consumers need a format that is deterministic byte-for-byte — stored bolt
// records and transaction signing hashes both depend on it — and compact, since
// every claimed balance carries its own envelope and record.
//
// Encoding is driven entirely by reflection: fixed-width integers are
// written little-endian at their natural width, bools as a single byte,
// and strings/slices/arrays recursively, with variable-length values
// (strings, slices) preceded by a length prefix. The length prefix itself
// is variable-width (1, 2, 3 or 4 bytes depending on magnitude) so that the
// common case of small slices doesn't pay for a fixed 4- or 8-byte header;
// see encodeSliceLength/decodeSliceLength in slice.go for the exact bit
// layout. Struct fields are encoded in declaration order, skipping
// unexported and anonymous fields — a type opts out of the default
// behavior entirely by implementing WireMarshaler/WireUnmarshaler.
//
// There is no varint-style integer packing for fixed-width ints (unlike,
// say, protobuf): every uintN/intN costs exactly N/8 bytes. That trade
// favors decode simplicity over a few saved bytes, which is the right
// trade for records this small.
package rivbin
