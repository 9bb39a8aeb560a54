package dclass

import (
	"math"
	"math/bits"
)

// Datagram is a resizable, little-endian byte buffer with a write cursor
// independent of its length: writes past the current length extend the
// buffer, writes at a prior position overwrite it in place.
type Datagram struct {
	buf []byte
	pos int
}

// NewDatagram returns an empty Datagram.
func NewDatagram() *Datagram {
	return &Datagram{}
}

// NewDatagramFromBytes returns a Datagram preloaded with a copy of b, with
// the write cursor positioned at its end.
func NewDatagramFromBytes(b []byte) *Datagram {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Datagram{buf: buf, pos: len(buf)}
}

// Len returns the number of bytes currently in the datagram.
func (d *Datagram) Len() int { return len(d.buf) }

// Tell returns the current write cursor.
func (d *Datagram) Tell() int { return d.pos }

// Seek moves the write cursor. It does not truncate or extend the buffer by
// itself; the next write does that.
func (d *Datagram) Seek(pos int) { d.pos = pos }

// Bytes returns an independent copy of the datagram's contents.
func (d *Datagram) Bytes() []byte {
	out := make([]byte, len(d.buf))
	copy(out, d.buf)
	return out
}

// write places b at the current cursor, extending the buffer if needed, and
// advances the cursor past it.
func (d *Datagram) write(b []byte) {
	end := d.pos + len(b)
	if end > len(d.buf) {
		d.buf = append(d.buf, make([]byte, end-len(d.buf))...)
	}
	copy(d.buf[d.pos:end], b)
	d.pos = end
}

// reserve writes n zero bytes at the cursor, returning the position they
// start at so the caller can come back and overwrite them later.
func (d *Datagram) reserve(n int) int {
	at := d.pos
	d.write(make([]byte, n))
	return at
}

func (d *Datagram) AddUint8(v uint64) error {
	if v > math.MaxUint8 {
		return overflowErrorf("uint8 value %d out of range", v)
	}
	d.write([]byte{byte(v)})
	return nil
}

func (d *Datagram) AddInt8(v int64) error {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return overflowErrorf("int8 value %d out of range", v)
	}
	d.write([]byte{byte(int8(v))})
	return nil
}

func (d *Datagram) AddUint16(v uint64) error {
	if v > math.MaxUint16 {
		return overflowErrorf("uint16 value %d out of range", v)
	}
	d.write([]byte{byte(v), byte(v >> 8)})
	return nil
}

func (d *Datagram) AddInt16(v int64) error {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return overflowErrorf("int16 value %d out of range", v)
	}
	u := uint16(int16(v))
	d.write([]byte{byte(u), byte(u >> 8)})
	return nil
}

func (d *Datagram) AddUint32(v uint64) error {
	if v > math.MaxUint32 {
		return overflowErrorf("uint32 value %d out of range", v)
	}
	var b [4]byte
	u := uint32(v)
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	d.write(b[:])
	return nil
}

func (d *Datagram) AddInt32(v int64) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return overflowErrorf("int32 value %d out of range", v)
	}
	var b [4]byte
	u := uint32(int32(v))
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	d.write(b[:])
	return nil
}

func (d *Datagram) AddUint64(v uint64) error {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	d.write(b[:])
	return nil
}

func (d *Datagram) AddInt64(v int64) error {
	u := uint64(v)
	var b [8]byte
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	d.write(b[:])
	return nil
}

func (d *Datagram) AddFloat64(v float64) error {
	u := math.Float64bits(v)
	var b [8]byte
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	d.write(b[:])
	return nil
}

// AddChannel writes a 64-bit routing channel identifier.
func (d *Datagram) AddChannel(v uint64) error {
	return d.AddUint64(v)
}

// AddBytes writes raw bytes with no length prefix.
func (d *Datagram) AddBytes(b []byte) error {
	d.write(b)
	return nil
}

// AddString16 writes a u16 byte-length prefix followed by the raw bytes.
func (d *Datagram) AddString16(b []byte) error {
	if len(b) > math.MaxUint16 {
		return overflowErrorf("string16 payload of %d bytes exceeds u16 length prefix", len(b))
	}
	if err := d.AddUint16(uint64(len(b))); err != nil {
		return err
	}
	d.write(b)
	return nil
}

// AddString32 writes a u32 byte-length prefix followed by the raw bytes.
func (d *Datagram) AddString32(b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return overflowErrorf("string32 payload of %d bytes exceeds u32 length prefix", len(b))
	}
	if err := d.AddUint32(uint64(len(b))); err != nil {
		return err
	}
	d.write(b)
	return nil
}

// AddDatagram appends a copy of other's current bytes with no length
// prefix; later mutation of other never affects this datagram.
func (d *Datagram) AddDatagram(other *Datagram) {
	d.write(other.Bytes())
}

// AddServerHeader writes the common server-message envelope prefix: a u8
// target count, each target channel, the sender channel, and a u16 message
// type.
func (d *Datagram) AddServerHeader(targets []uint64, from uint64, msgType uint16) error {
	if bits.Len(uint(len(targets))) > 8 {
		return overflowErrorf("too many targets (%d) for u8 count", len(targets))
	}
	if err := d.AddUint8(uint64(len(targets))); err != nil {
		return err
	}
	for _, t := range targets {
		if err := d.AddChannel(t); err != nil {
			return err
		}
	}
	if err := d.AddChannel(from); err != nil {
		return err
	}
	return d.AddUint16(uint64(msgType))
}

// Copy returns a deep, independent copy of this datagram.
func (d *Datagram) Copy() *Datagram {
	return &Datagram{buf: d.Bytes(), pos: d.pos}
}

// Iterator returns a read cursor over a snapshot of the datagram's current
// bytes, positioned at the start.
func (d *Datagram) Iterator() *DatagramIterator {
	return &DatagramIterator{data: d.Bytes()}
}

// DatagramIterator is a read-only forward cursor over a byte buffer.
type DatagramIterator struct {
	data []byte
	pos  int
}

// NewDatagramIterator wraps data (not copied) for reading from the start.
func NewDatagramIterator(data []byte) *DatagramIterator {
	return &DatagramIterator{data: data}
}

func (it *DatagramIterator) Tell() int { return it.pos }

// Seek moves the read cursor. Seeking past the end is allowed; the next read
// will fail with a decode error instead.
func (it *DatagramIterator) Seek(pos int) { it.pos = pos }

// Remaining returns max(0, len-cursor).
func (it *DatagramIterator) Remaining() int {
	r := len(it.data) - it.pos
	if r < 0 {
		return 0
	}
	return r
}

func (it *DatagramIterator) take(n int) ([]byte, error) {
	if n < 0 || it.pos+n > len(it.data) || it.pos < 0 {
		return nil, decodeErrorf("read past end of datagram (cursor %d, want %d bytes, have %d)", it.pos, n, len(it.data))
	}
	b := it.data[it.pos : it.pos+n]
	it.pos += n
	return b, nil
}

func (it *DatagramIterator) GetUint8() (uint8, error) {
	b, err := it.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (it *DatagramIterator) GetInt8() (int8, error) {
	v, err := it.GetUint8()
	return int8(v), err
}

func (it *DatagramIterator) GetUint16() (uint16, error) {
	b, err := it.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (it *DatagramIterator) GetInt16() (int16, error) {
	v, err := it.GetUint16()
	return int16(v), err
}

func (it *DatagramIterator) GetUint32() (uint32, error) {
	b, err := it.take(4)
	if err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(b[i]) << (8 * i)
	}
	return v, nil
}

func (it *DatagramIterator) GetInt32() (int32, error) {
	v, err := it.GetUint32()
	return int32(v), err
}

func (it *DatagramIterator) GetUint64() (uint64, error) {
	b, err := it.take(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v, nil
}

func (it *DatagramIterator) GetInt64() (int64, error) {
	v, err := it.GetUint64()
	return int64(v), err
}

func (it *DatagramIterator) GetFloat64() (float64, error) {
	v, err := it.GetUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (it *DatagramIterator) GetChannel() (uint64, error) {
	return it.GetUint64()
}

// GetBytes reads exactly n raw bytes.
func (it *DatagramIterator) GetBytes(n int) ([]byte, error) {
	b, err := it.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// GetString16 reads a u16 byte-length prefix followed by that many bytes.
func (it *DatagramIterator) GetString16() (string, error) {
	n, err := it.GetUint16()
	if err != nil {
		return "", err
	}
	b, err := it.GetBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetString32 reads a u32 byte-length prefix followed by that many bytes.
func (it *DatagramIterator) GetString32() (string, error) {
	n, err := it.GetUint32()
	if err != nil {
		return "", err
	}
	b, err := it.GetBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetRemaining returns a copy of every byte from the cursor to the end.
func (it *DatagramIterator) GetRemaining() []byte {
	out := make([]byte, len(it.data)-it.pos)
	copy(out, it.data[it.pos:])
	return out
}
