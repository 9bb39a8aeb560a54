package dclass

import (
	"math"
)

// Parameter is a single typed value slot: a struct/dclass member, or one
// argument of an atomic field. Every concrete type below implements pack,
// unpack, and hash the same way the wire format and fingerprint scheme
// require, but each has its own notion of "value" (int64, float64, string,
// []byte, or a nested []interface{} for arrays and structs).
type Parameter interface {
	Hashable

	// TypeName returns the dc-source spelling of this parameter's type,
	// e.g. "uint32" or "int8[4]".
	TypeName() string

	// DCType returns the wire-level primitive tag, or TypeInvalid for a
	// struct/switch parameter that has no single primitive tag.
	DCType() DCType

	// FixedByteSize returns the constant wire width of this parameter and
	// true, or (0, false) if its width varies with its value.
	FixedByteSize() (int, bool)

	// HasDefault reports whether a default literal was given in source.
	HasDefault() bool

	// DefaultValue returns the parsed default, valid only if HasDefault.
	DefaultValue() interface{}

	// PackValue encodes value (in the Go shape this Parameter expects) onto
	// dg in wire order.
	PackValue(dg *Datagram, value interface{}) error

	// UnpackValue decodes one value of this Parameter's shape from dgi.
	UnpackValue(dgi *DatagramIterator) (interface{}, error)
}

// skipBytes advances dgi past one value of p without allocating the
// decoded value's full Go representation, returning exactly the wire
// bytes that made it up. Used for "pass the field through untouched"
// operations (e.g. re-sending a received update without re-encoding it).
func skipBytes(p Parameter, dgi *DatagramIterator) ([]byte, error) {
	start := dgi.Tell()
	if _, err := p.UnpackValue(dgi); err != nil {
		return nil, err
	}
	end := dgi.Tell()
	dgi.Seek(start)
	return dgi.GetBytes(end - start)
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case byte:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, encodeErrorf("cannot pack %T as an integer value", value)
	}
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, encodeErrorf("cannot pack %T as a floating point value", value)
	}
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, encodeErrorf("cannot pack %T as sized bytes", value)
	}
}

// IntParameter is any of the eight fixed-width signed/unsigned integer
// types, plus the divisor/range constraints legal on them. Constraints are
// folded into the hash but never enforced while packing, matching the
// "hash-only" validation rule.
type IntParameter struct {
	Typ        DCType
	Divisor    uint32
	Ranges     []IRange
	ModulusSet bool
	Modulus    float64
	defaultSet bool
	Default    int64
}

func NewIntParameter(typ DCType) *IntParameter {
	return &IntParameter{Typ: typ, Divisor: 1}
}

func (p *IntParameter) TypeName() string {
	for name, t := range typeNames {
		if t == p.Typ {
			return name
		}
	}
	return "int8"
}

func (p *IntParameter) DCType() DCType { return p.Typ }

func (p *IntParameter) FixedByteSize() (int, bool) {
	size, ok := fixedByteSizes[p.Typ]
	return size, ok
}

func (p *IntParameter) HasDefault() bool        { return p.defaultSet }
func (p *IntParameter) DefaultValue() interface{} { return p.Default }

func (p *IntParameter) SetDefault(v int64) {
	p.Default = v
	p.defaultSet = true
}

func (p *IntParameter) PackValue(dg *Datagram, value interface{}) error {
	var n int64
	switch v := value.(type) {
	case float64:
		n = int64(math.Floor(v * float64(p.Divisor)))
	case float32:
		n = int64(math.Floor(float64(v) * float64(p.Divisor)))
	default:
		var err error
		n, err = toInt64(value)
		if err != nil {
			return err
		}
	}
	switch p.Typ {
	case TypeInt8:
		return dg.AddInt8(n)
	case TypeInt16:
		return dg.AddInt16(n)
	case TypeInt32:
		return dg.AddInt32(n)
	case TypeInt64:
		return dg.AddInt64(n)
	case TypeUint8:
		return dg.AddUint8(uint64(n))
	case TypeUint16:
		return dg.AddUint16(uint64(n))
	case TypeUint32:
		return dg.AddUint32(uint64(n))
	case TypeUint64:
		return dg.AddUint64(uint64(n))
	default:
		return runtimeError("IntParameter holds a non-integer DCType")
	}
}

func (p *IntParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	switch p.Typ {
	case TypeInt8:
		v, err := dgi.GetInt8()
		return int64(v), err
	case TypeInt16:
		v, err := dgi.GetInt16()
		return int64(v), err
	case TypeInt32:
		v, err := dgi.GetInt32()
		return int64(v), err
	case TypeInt64:
		v, err := dgi.GetInt64()
		return int64(v), err
	case TypeUint8:
		v, err := dgi.GetUint8()
		return int64(v), err
	case TypeUint16:
		v, err := dgi.GetUint16()
		return int64(v), err
	case TypeUint32:
		v, err := dgi.GetUint32()
		return int64(v), err
	case TypeUint64:
		v, err := dgi.GetUint64()
		return int64(v), err
	default:
		return nil, runtimeError("IntParameter holds a non-integer DCType")
	}
}

func (p *IntParameter) GenerateHash(h *HashGenerator) {
	h.AddInt(int64(p.Typ))
	h.AddInt(int64(p.Divisor))
	if p.ModulusSet {
		h.AddInt(int64(float64(p.Divisor) * p.Modulus))
	}
	if len(p.Ranges) > 0 {
		h.AddInt(int64(len(p.Ranges)))
		for _, r := range p.Ranges {
			h.AddInt(r.Min * int64(p.Divisor))
			h.AddInt(r.Max * int64(p.Divisor))
		}
	}
}

// FloatParameter is the single 64-bit floating point type.
type FloatParameter struct {
	Divisor    uint32
	Ranges     []FRange
	ModulusSet bool
	Modulus    float64
	defaultSet bool
	Default    float64
}

func NewFloatParameter() *FloatParameter { return &FloatParameter{Divisor: 1} }

func (p *FloatParameter) TypeName() string        { return "float64" }
func (p *FloatParameter) DCType() DCType          { return TypeFloat64 }
func (p *FloatParameter) FixedByteSize() (int, bool) { return 8, true }
func (p *FloatParameter) HasDefault() bool        { return p.defaultSet }
func (p *FloatParameter) DefaultValue() interface{} { return p.Default }

func (p *FloatParameter) SetDefault(v float64) {
	p.Default = v
	p.defaultSet = true
}

func (p *FloatParameter) PackValue(dg *Datagram, value interface{}) error {
	f, err := toFloat64(value)
	if err != nil {
		return err
	}
	return dg.AddFloat64(f)
}

func (p *FloatParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	return dgi.GetFloat64()
}

func (p *FloatParameter) GenerateHash(h *HashGenerator) {
	h.AddInt(int64(TypeFloat64))
	h.AddInt(int64(p.Divisor))
	if p.ModulusSet {
		h.AddInt(int64(float64(p.Divisor) * p.Modulus))
	}
	if len(p.Ranges) > 0 {
		h.AddInt(int64(len(p.Ranges)))
		for _, r := range p.Ranges {
			h.AddInt(int64(math.Floor(r.Min*float64(p.Divisor) + 0.5)))
			h.AddInt(int64(math.Floor(r.Max*float64(p.Divisor) + 0.5)))
		}
	}
}

// CharParameter is the single-byte "char" type, distinguished from int8/
// uint8 only by how its default/range literals are spelled in source
// ('a' instead of 97) and by FormatData/ParseString rendering.
type CharParameter struct {
	Ranges     []IRange
	defaultSet bool
	Default    byte
}

func NewCharParameter() *CharParameter { return &CharParameter{} }

func (p *CharParameter) TypeName() string           { return "char" }
func (p *CharParameter) DCType() DCType             { return TypeChar }
func (p *CharParameter) FixedByteSize() (int, bool) { return 1, true }
func (p *CharParameter) HasDefault() bool           { return p.defaultSet }
func (p *CharParameter) DefaultValue() interface{}  { return p.Default }

func (p *CharParameter) SetDefault(v byte) {
	p.Default = v
	p.defaultSet = true
}

func (p *CharParameter) PackValue(dg *Datagram, value interface{}) error {
	switch v := value.(type) {
	case byte:
		return dg.AddUint8(uint64(v))
	case rune:
		return dg.AddUint8(uint64(v))
	case int64:
		return dg.AddUint8(uint64(v))
	default:
		return encodeErrorf("cannot pack %T as a char value", value)
	}
}

func (p *CharParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	return dgi.GetUint8()
}

func (p *CharParameter) GenerateHash(h *HashGenerator) {
	h.AddInt(int64(TypeChar))
	h.AddInt(1) // divisor is always 1 for char
	if len(p.Ranges) > 0 {
		h.AddInt(int64(len(p.Ranges)))
		for _, r := range p.Ranges {
			h.AddInt(r.Min)
			h.AddInt(r.Max)
		}
	}
}

// SizedParameter is string, blob, or blob32: a length-prefixed byte run.
// string/blob use a u16 byte-length prefix; blob32 uses a u32 prefix. This
// is the resolution of the swapped get_string16/get_string32 dispatch
// found in the original implementation: the prefix width follows the type
// name, not the other way around.
type SizedParameter struct {
	Typ          DCType // TypeString, TypeBlob, or TypeBlob32
	LengthRanges []IRange
	defaultSet   bool
	Default      []byte
}

func NewSizedParameter(typ DCType) *SizedParameter { return &SizedParameter{Typ: typ} }

func (p *SizedParameter) TypeName() string {
	switch p.Typ {
	case TypeBlob32:
		return "blob32"
	case TypeBlob:
		return "blob"
	default:
		return "string"
	}
}

func (p *SizedParameter) DCType() DCType             { return p.Typ }
func (p *SizedParameter) FixedByteSize() (int, bool) { return 0, false }
func (p *SizedParameter) HasDefault() bool           { return p.defaultSet }
func (p *SizedParameter) DefaultValue() interface{}  { return p.Default }

func (p *SizedParameter) SetDefault(v []byte) {
	p.Default = v
	p.defaultSet = true
}

func (p *SizedParameter) PackValue(dg *Datagram, value interface{}) error {
	b, err := toBytes(value)
	if err != nil {
		return err
	}
	if p.Typ == TypeBlob32 {
		return dg.AddString32(b)
	}
	return dg.AddString16(b)
}

func (p *SizedParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	if p.Typ == TypeBlob32 {
		s, err := dgi.GetString32()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	s, err := dgi.GetString16()
	if err != nil {
		return nil, err
	}
	if p.Typ == TypeString {
		return s, nil
	}
	return []byte(s), nil
}

func (p *SizedParameter) GenerateHash(h *HashGenerator) {
	h.AddInt(int64(p.Typ))
	h.AddInt(1) // divisor is always 1 for sized types
	if len(p.LengthRanges) > 0 {
		h.AddInt(int64(len(p.LengthRanges)))
		for _, r := range p.LengthRanges {
			h.AddInt(r.Min)
			h.AddInt(r.Max)
		}
	}
}

// pairParameter packs a fixed (uint32, uint8) pair as one 5-byte element.
// It exists only to give the legacy "uint32uint8array" type an Element for
// ArrayParameter, matching the wire shape the original lexer/parser
// carries forward from Panda3D's historic DC files.
type pairParameter struct{}

func (pairParameter) TypeName() string { return "uint32uint8" }
func (pairParameter) DCType() DCType   { return TypeInvalid }
func (pairParameter) FixedByteSize() (int, bool) { return 5, true }
func (pairParameter) HasDefault() bool          { return false }
func (pairParameter) DefaultValue() interface{} { return nil }

func (pairParameter) PackValue(dg *Datagram, value interface{}) error {
	pair, ok := value.([2]uint64)
	if !ok {
		return encodeErrorf("cannot pack %T as a uint32uint8 pair", value)
	}
	if err := dg.AddUint32(pair[0]); err != nil {
		return err
	}
	return dg.AddUint8(pair[1])
}

func (pairParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	a, err := dgi.GetUint32()
	if err != nil {
		return nil, err
	}
	b, err := dgi.GetUint8()
	if err != nil {
		return nil, err
	}
	return [2]uint64{uint64(a), uint64(b)}, nil
}

func (pairParameter) GenerateHash(h *HashGenerator) {
	h.AddInt(int64(TypeUint32))
	h.AddInt(int64(TypeUint8))
}

// ArrayParameter is a fixed- or variable-length, possibly multi-dimensional
// array of some Element parameter. Dims holds one entry per dimension;
// -1 marks a variable-length dimension. A variable array (any dim -1, or
// an Element with no fixed size) is written with a u16 total-byte-length
// prefix, exactly like SizedParameter; a fully fixed array has no prefix
// at all, since its size is derivable from the schema alone.
type ArrayParameter struct {
	Element    Parameter
	Dims       []int
	defaultSet bool
	Default    []interface{}
}

func NewArrayParameter(element Parameter, dims []int) *ArrayParameter {
	return &ArrayParameter{Element: element, Dims: dims}
}

func (p *ArrayParameter) TypeName() string {
	name := p.Element.TypeName()
	for _, d := range p.Dims {
		if d < 0 {
			name += "[]"
		} else {
			name += "[" + itoa(d) + "]"
		}
	}
	return name
}

func (p *ArrayParameter) DCType() DCType { return TypeInvalid }

func (p *ArrayParameter) isFixed() bool {
	if _, ok := p.Element.FixedByteSize(); !ok {
		return false
	}
	for _, d := range p.Dims {
		if d < 0 {
			return false
		}
	}
	return true
}

func (p *ArrayParameter) FixedByteSize() (int, bool) {
	if !p.isFixed() {
		return 0, false
	}
	elemSize, _ := p.Element.FixedByteSize()
	total := elemSize
	for _, d := range p.Dims {
		total *= d
	}
	return total, true
}

func (p *ArrayParameter) HasDefault() bool          { return p.defaultSet }
func (p *ArrayParameter) DefaultValue() interface{} { return p.Default }

func (p *ArrayParameter) SetDefault(v []interface{}) {
	p.Default = v
	p.defaultSet = true
}

func (p *ArrayParameter) PackValue(dg *Datagram, value interface{}) error {
	if p.isFixed() {
		return p.packDim(dg, 0, value)
	}
	inner := NewDatagram()
	if err := p.packDim(inner, 0, value); err != nil {
		return err
	}
	return dg.AddString16(inner.Bytes())
}

func (p *ArrayParameter) packDim(dg *Datagram, dim int, value interface{}) error {
	elems, ok := value.([]interface{})
	if !ok {
		return encodeErrorf("cannot pack %T as an array value", value)
	}
	want := -1
	if dim < len(p.Dims) {
		want = p.Dims[dim]
	}
	if want >= 0 && len(elems) != want {
		return encodeErrorf("array dimension %d expects %d elements, got %d", dim, want, len(elems))
	}
	if dim == len(p.Dims)-1 {
		for _, e := range elems {
			if err := p.Element.PackValue(dg, e); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range elems {
		if err := p.packDim(dg, dim+1, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *ArrayParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	if p.isFixed() {
		return p.unpackDim(dgi, 0)
	}
	s, err := dgi.GetString16()
	if err != nil {
		return nil, err
	}
	inner := NewDatagramIterator([]byte(s))
	return p.unpackDim(inner, 0)
}

func (p *ArrayParameter) unpackDim(dgi *DatagramIterator, dim int) (interface{}, error) {
	if dim == len(p.Dims)-1 {
		count := p.Dims[dim]
		var out []interface{}
		if count >= 0 {
			out = make([]interface{}, 0, count)
			for i := 0; i < count; i++ {
				v, err := p.Element.UnpackValue(dgi)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		}
		for dgi.Remaining() > 0 {
			v, err := p.Element.UnpackValue(dgi)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	count := p.Dims[dim]
	var out []interface{}
	if count < 0 {
		for dgi.Remaining() > 0 {
			v, err := p.unpackDim(dgi, dim+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	out = make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		v, err := p.unpackDim(dgi, dim+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *ArrayParameter) GenerateHash(h *HashGenerator) {
	p.Element.GenerateHash(h)
	for i := len(p.Dims) - 1; i >= 0; i-- {
		d := p.Dims[i]
		if d < 0 {
			continue // variable-length dimension: no range to fold in
		}
		h.AddInt(1)
		h.AddInt(int64(d))
		h.AddInt(int64(d))
	}
}

// StructParameter references a named struct type used as a field or
// parameter type. Its own hash/pack/unpack delegate to the Struct it
// names, so nested structs and structs-of-structs fold in naturally.
type StructParameter struct {
	Struct *Struct
}

func NewStructParameter(s *Struct) *StructParameter { return &StructParameter{Struct: s} }

func (p *StructParameter) TypeName() string { return p.Struct.Name() }
func (p *StructParameter) DCType() DCType   { return TypeInvalid }

func (p *StructParameter) FixedByteSize() (int, bool) {
	return p.Struct.FixedByteSize()
}

func (p *StructParameter) HasDefault() bool          { return false }
func (p *StructParameter) DefaultValue() interface{} { return nil }

func (p *StructParameter) PackValue(dg *Datagram, value interface{}) error {
	fields, ok := value.(map[string]interface{})
	if !ok {
		return encodeErrorf("cannot pack %T as a %s struct value", value, p.Struct.Name())
	}
	return p.Struct.PackFields(dg, fields)
}

func (p *StructParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	return p.Struct.UnpackFields(dgi)
}

func (p *StructParameter) GenerateHash(h *HashGenerator) {
	p.Struct.GenerateHash(h)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
