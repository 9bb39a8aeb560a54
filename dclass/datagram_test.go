package dclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatagramIntRoundTrip(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddInt8(-12))
	require.NoError(t, dg.AddUint8(250))
	require.NoError(t, dg.AddInt16(-1000))
	require.NoError(t, dg.AddUint16(60000))
	require.NoError(t, dg.AddInt32(-70000))
	require.NoError(t, dg.AddUint32(4000000000))
	require.NoError(t, dg.AddInt64(-9000000000000000000))
	require.NoError(t, dg.AddUint64(18000000000000000000))
	require.NoError(t, dg.AddFloat64(3.25))

	it := dg.Iterator()
	i8, err := it.GetInt8()
	require.NoError(t, err)
	assert.EqualValues(t, -12, i8)

	u8, err := it.GetUint8()
	require.NoError(t, err)
	assert.EqualValues(t, 250, u8)

	i16, err := it.GetInt16()
	require.NoError(t, err)
	assert.EqualValues(t, -1000, i16)

	u16, err := it.GetUint16()
	require.NoError(t, err)
	assert.EqualValues(t, 60000, u16)

	i32, err := it.GetInt32()
	require.NoError(t, err)
	assert.EqualValues(t, -70000, i32)

	u32, err := it.GetUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 4000000000, u32)

	i64, err := it.GetInt64()
	require.NoError(t, err)
	assert.EqualValues(t, -9000000000000000000, i64)

	u64, err := it.GetUint64()
	require.NoError(t, err)
	assert.EqualValues(t, uint64(18000000000000000000), u64)

	f64, err := it.GetFloat64()
	require.NoError(t, err)
	assert.InDelta(t, 3.25, f64, 0.0001)

	assert.Equal(t, 0, it.Remaining())
}

func TestDatagramOverflow(t *testing.T) {
	dg := NewDatagram()
	assert.Error(t, dg.AddUint8(300))
	assert.Error(t, dg.AddInt8(200))
	assert.Error(t, dg.AddUint16(70000))
	assert.Error(t, dg.AddInt16(40000))
	assert.Error(t, dg.AddUint32(5000000000))
	assert.Error(t, dg.AddInt32(3000000000))
}

func TestDatagramSizedStrings(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddString16([]byte("hello")))
	require.NoError(t, dg.AddString32([]byte("a bigger payload")))

	it := dg.Iterator()
	s16, err := it.GetString16()
	require.NoError(t, err)
	assert.Equal(t, "hello", s16)

	s32, err := it.GetString32()
	require.NoError(t, err)
	assert.Equal(t, "a bigger payload", s32)
}

func TestDatagramSeekOverwrite(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddUint16(0)) // placeholder
	bodyStart := dg.Tell()
	require.NoError(t, dg.AddString16([]byte("payload")))
	bodyLen := dg.Tell() - bodyStart

	dg.Seek(0)
	require.NoError(t, dg.AddUint16(uint64(bodyLen)))

	it := dg.Iterator()
	n, err := it.GetUint16()
	require.NoError(t, err)
	assert.EqualValues(t, bodyLen, n)
}

func TestDatagramServerHeader(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddServerHeader([]uint64{100, 200}, 7, 2001))

	it := dg.Iterator()
	count, err := it.GetUint8()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	a, err := it.GetChannel()
	require.NoError(t, err)
	assert.EqualValues(t, 100, a)

	b, err := it.GetChannel()
	require.NoError(t, err)
	assert.EqualValues(t, 200, b)

	sender, err := it.GetChannel()
	require.NoError(t, err)
	assert.EqualValues(t, 7, sender)

	msgType, err := it.GetUint16()
	require.NoError(t, err)
	assert.EqualValues(t, 2001, msgType)
}

func TestDatagramIteratorReadPastEnd(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddUint8(1))
	it := dg.Iterator()
	_, err := it.GetUint32()
	assert.Error(t, err)
}

func TestDatagramCopyIsIndependent(t *testing.T) {
	dg := NewDatagram()
	require.NoError(t, dg.AddUint8(1))
	cp := dg.Copy()
	require.NoError(t, dg.AddUint8(2))
	assert.Equal(t, 1, cp.Len())
	assert.Equal(t, 2, dg.Len())
}
