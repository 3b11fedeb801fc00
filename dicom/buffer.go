package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type transferSyntaxStackEntry struct {
	bo       binary.ByteOrder
	implicit IsImplicitVR
}

// Encoder is a helper class for encoding low-level DICOM data types.
// Errors are sticky: the first one is reported by Error() and Finish().
type Encoder struct {
	err error

	buf *bytes.Buffer
	bo  binary.ByteOrder
	// "implicit" isn't used by Encoder internally. It's there for the user
	// of Encoder to see the current transfer syntax.
	implicit IsImplicitVR
	// Stack of old transfer syntaxes. Used by {Push,Pop}TransferSyntax.
	oldTransferSyntaxes []transferSyntaxStackEntry

	cs CodingSystem
}

// NewEncoder creates a new encoder that emits bytes in the given byte order.
func NewEncoder(bo binary.ByteOrder, implicit IsImplicitVR) *Encoder {
	return &Encoder{
		buf:      &bytes.Buffer{},
		bo:       bo,
		implicit: implicit,
	}
}

// TransferSyntax returns the current transfer syntax.
func (e *Encoder) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return e.bo, e.implicit
}

// PushTransferSyntax temporarily changes the encoding format. PopTrasnferSyntax
// will restore the old format.
func (e *Encoder) PushTransferSyntax(bo binary.ByteOrder, implicit IsImplicitVR) {
	e.oldTransferSyntaxes = append(e.oldTransferSyntaxes,
		transferSyntaxStackEntry{e.bo, e.implicit})
	e.bo = bo
	e.implicit = implicit
}

// PopTransferSyntax restores the encoding format active before the last call
// to PushTransferSyntax.
func (e *Encoder) PopTransferSyntax() {
	ts := e.oldTransferSyntaxes[len(e.oldTransferSyntaxes)-1]
	e.bo = ts.bo
	e.implicit = ts.implicit
	e.oldTransferSyntaxes = e.oldTransferSyntaxes[:len(e.oldTransferSyntaxes)-1]
}

// SetCodingSystem sets the character set used by WriteText.
func (e *Encoder) SetCodingSystem(cs CodingSystem) {
	e.cs = cs
}

// SetError sets the error to be reported by future Error() or Finish() calls.
//
// REQUIRES: err != nil
func (e *Encoder) SetError(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Error returns an error set by SetError(), if any. Returns nil if SetError()
// has never been called.
func (e *Encoder) Error() error { return e.err }

// Finish is called after all the data is encoded. It returns the serialized
// bytes, or an error.
func (e *Encoder) Finish() ([]byte, error) {
	return e.buf.Bytes(), e.err
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

func (e *Encoder) WriteUInt8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) WriteUInt16(v uint16) {
	var b [2]byte
	e.bo.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteUInt32(v uint32) {
	var b [4]byte
	e.bo.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteInt16(v int16) {
	e.WriteUInt16(uint16(v))
}

func (e *Encoder) WriteInt32(v int32) {
	e.WriteUInt32(uint32(v))
}

func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUInt32(math.Float32bits(v))
}

func (e *Encoder) WriteFloat64(v float64) {
	var b [8]byte
	e.bo.PutUint64(b[:], math.Float64bits(v))
	e.buf.Write(b[:])
}

// WriteString writes the string as is, without a length prefix or padding.
func (e *Encoder) WriteString(v string) {
	e.buf.WriteString(v)
}

// WriteText writes the string converted into the current character set.
func (e *Encoder) WriteText(v string) {
	e.buf.Write(e.cs.Encode(v))
}

// WriteZeros encodes an array of zero bytes.
func (e *Encoder) WriteZeros(len int) {
	e.buf.Write(make([]byte, len))
}

// WriteBytes copies the given data to the output.
func (e *Encoder) WriteBytes(v []byte) {
	e.buf.Write(v)
}

// Decoder is a helper class for decoding low-level DICOM data types. Errors
// are sticky: once set, every read returns a zero value.
type Decoder struct {
	in  io.Reader
	err error
	bo  binary.ByteOrder
	// "implicit" isn't used by Decoder internally. It's there for the user
	// of Decoder to see the current transfer syntax.
	implicit IsImplicitVR
	// Cumulative # bytes read.
	pos int64
	// Max bytes to read. PushLimit() will add a new limit, and PopLimit()
	// will restore the old limit. The newest limit is at the end.
	//
	// INVARIANT: limits[] store values in decreasing order.
	limits []int64
	// Cache of the last transfer syntaxes. Used by {Push,Pop}TransferSyntax.
	stateStack []transferSyntaxStackEntry

	cs      CodingSystem
	scratch [8]byte
}

// NewDecoder creates a decoder object that reads up to "limit" bytes from "in".
// Don't pass just an arbitrary large number as the "limit". The underlying
// code assumes that "limit" accurately bounds the end of the data.
func NewDecoder(in io.Reader, limit int64, bo binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	return &Decoder{
		in:       in,
		bo:       bo,
		implicit: implicit,
		limits:   []int64{limit},
	}
}

// NewBytesDecoder creates a decoder that reads from a sequence of bytes. See
// NewDecoder() for explanation of other parameters.
func NewBytesDecoder(data []byte, bo binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	return NewDecoder(bytes.NewReader(data), int64(len(data)), bo, implicit)
}

// SetError sets the error to be reported by future Error() or Finish() calls.
//
// REQUIRES: err != nil
func (d *Decoder) SetError(err error) {
	if d.err == nil {
		d.err = err
	}
}

// TransferSyntax returns the current transfer syntax.
func (d *Decoder) TransferSyntax() (bo binary.ByteOrder, implicit IsImplicitVR) {
	return d.bo, d.implicit
}

// PushTransferSyntax temporarily changes the encoding format. PopTrasnferSyntax
// will restore the old format.
func (d *Decoder) PushTransferSyntax(bo binary.ByteOrder, implicit IsImplicitVR) {
	d.stateStack = append(d.stateStack, transferSyntaxStackEntry{d.bo, d.implicit})
	d.bo = bo
	d.implicit = implicit
}

// PopTransferSyntax restores the encoding format active before the last call
// to PushTransferSyntax.
func (d *Decoder) PopTransferSyntax() {
	e := d.stateStack[len(d.stateStack)-1]
	d.bo = e.bo
	d.implicit = e.implicit
	d.stateStack = d.stateStack[:len(d.stateStack)-1]
}

// SetCodingSystem overrides the default (7bit ASCII) decoder used when
// converting a byte[] to a string.
func (d *Decoder) SetCodingSystem(cs CodingSystem) {
	d.cs = cs
}

// CodingSystem returns the character set currently in effect.
func (d *Decoder) CodingSystem() CodingSystem { return d.cs }

// PushLimit temporarily overrides the end of the buffer. PopLimit() will
// restore the old limit.
//
// REQUIRES: limit must be smaller than the current limit
func (d *Decoder) PushLimit(bytes int64) {
	newLimit := d.pos + bytes
	if len(d.limits) > 0 && newLimit > d.limits[len(d.limits)-1] {
		d.SetError(fmt.Errorf("trying to read %d bytes beyond buffer end", newLimit-d.limits[len(d.limits)-1]))
		newLimit = d.pos
	}
	d.limits = append(d.limits, newLimit)
}

// PopLimit restores the old limit overridden by PushLimit.
func (d *Decoder) PopLimit() {
	if d.pos < d.limits[len(d.limits)-1] {
		// Skip the rest of the bytes in the limited region.
		d.Skip(int(d.limits[len(d.limits)-1] - d.pos))
	}
	d.limits = d.limits[:len(d.limits)-1]
}

// Error returns an error encountered so far.
func (d *Decoder) Error() error { return d.err }

// Finish must be called after using the decoder. It returns any error
// encountered during decoding. It returns an error if the decoder has not
// consumed the whole buffer.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if !d.EOF() {
		return fmt.Errorf("decoder found junk (%d bytes remaining)", d.Len())
	}
	return nil
}

// Pos returns the cumulative number of bytes consumed.
func (d *Decoder) Pos() int64 { return d.pos }

// Len returns the number of bytes that can be consumed before hitting the
// current limit.
func (d *Decoder) Len() int64 {
	return d.limits[len(d.limits)-1] - d.pos
}

// EOF checks if there is no more data to read.
func (d *Decoder) EOF() bool {
	return d.err != nil || d.Len() <= 0
}

// io.Reader implementation
func (d *Decoder) Read(p []byte) (int, error) {
	desired := d.Len()
	if desired <= 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	if desired < int64(len(p)) {
		p = p[:desired]
	}
	n, err := d.in.Read(p)
	if n >= 0 {
		d.pos += int64(n)
	}
	return n, err
}

func (d *Decoder) fill(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := d.scratch[:n]
	if _, err := io.ReadFull(d, b); err != nil {
		d.SetError(err)
		return nil
	}
	return b
}

func (d *Decoder) ReadUInt8() uint8 {
	b := d.fill(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) ReadUInt16() uint16 {
	b := d.fill(2)
	if b == nil {
		return 0
	}
	return d.bo.Uint16(b)
}

func (d *Decoder) ReadUInt32() uint32 {
	b := d.fill(4)
	if b == nil {
		return 0
	}
	return d.bo.Uint32(b)
}

func (d *Decoder) ReadInt16() int16 {
	return int16(d.ReadUInt16())
}

func (d *Decoder) ReadInt32() int32 {
	return int32(d.ReadUInt32())
}

func (d *Decoder) ReadFloat32() float32 {
	return math.Float32frombits(d.ReadUInt32())
}

func (d *Decoder) ReadFloat64() float64 {
	b := d.fill(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(d.bo.Uint64(b))
}

// ReadString reads a string of the given length without character set
// conversion.
func (d *Decoder) ReadString(length int) string {
	return string(d.ReadBytes(length))
}

// ReadStringWithCodingSystem reads a string and converts it to utf8 using
// the selected decoder of the current coding system.
func (d *Decoder) ReadStringWithCodingSystem(csType CodingSystemType, length int) string {
	return d.cs.Decode(csType, d.ReadBytes(length))
}

// ReadBytes reads exactly length bytes. On a short read the error is set and
// nil is returned.
func (d *Decoder) ReadBytes(length int) []byte {
	if d.err != nil {
		return nil
	}
	if length < 0 || int64(length) > d.Len() {
		d.SetError(fmt.Errorf("ReadBytes: requested %d, available %d", length, d.Len()))
		return nil
	}
	v := make([]byte, length)
	if _, err := io.ReadFull(d, v); err != nil {
		d.SetError(err)
		return nil
	}
	return v
}

// Skip consumes the given number of bytes.
func (d *Decoder) Skip(bytes int) {
	if d.err != nil {
		return
	}
	if bytes < 0 || int64(bytes) > d.Len() {
		d.SetError(fmt.Errorf("failed to skip %d bytes (available %d)", bytes, d.Len()))
		return
	}
	n, err := io.CopyN(io.Discard, d, int64(bytes))
	if err != nil {
		d.SetError(err)
		return
	}
	if n != int64(bytes) {
		d.SetError(fmt.Errorf("failed to skip %d bytes (read %d bytes instead)", bytes, n))
	}
}
