package dclass

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is a member (ParameterField), function (AtomicField), or composite
// function (MolecularField) of a struct or dclass. Field folds into a
// HashGenerator the same way a Parameter does, since a struct/dclass hash
// recurses through every field it owns.
type Field interface {
	Hashable

	// Name returns the name parsed from source.
	Name() string

	// Number returns this field's index, unique within its dclass File.
	Number() int

	// File returns the File this field is associated with.
	File() *File

	// NumArgs returns how many positional values this field packs: 1 for a
	// ParameterField, the argument count for an AtomicField, and the sum
	// across components for a MolecularField.
	NumArgs() int

	// PackArgs encodes args (one value per NumArgs slot) onto dg.
	PackArgs(dg *Datagram, args []interface{}) error

	// UnpackArgs decodes NumArgs values from dgi.
	UnpackArgs(dgi *DatagramIterator) ([]interface{}, error)

	// HasDefaultValue reports whether every argument has a usable default.
	HasDefaultValue() bool

	// DefaultValue returns the packed bytes of the default argument list,
	// or nil if HasDefaultValue is false.
	DefaultValue() []byte

	// The IsFoo methods report whether this field carries the named
	// historic keyword, exactly as declared in source.
	IsRequired() bool
	IsRam() bool
	IsBroadcast() bool
	IsClrecv() bool
	IsClsend() bool
	IsOwnrecv() bool
	IsOwnsend() bool
	IsAirecv() bool
	IsDb() bool

	KeywordList

	// FormatData renders a field's packed value for human consumption.
	FormatData(data []byte, showFieldNames bool) string

	// ParseString parses FormatData's output back into packed bytes.
	ParseString(s string) ([]byte, error)
}

// fieldBase carries the state common to every Field implementation.
type fieldBase struct {
	dcf   *File
	name  string
	index int
	// isStructField is true when this field was declared directly inside a
	// struct body rather than a dclass body. Only ParameterField.GenerateHash
	// reads it.
	isStructField bool
	keywords
}

func (f *fieldBase) Name() string  { return f.name }
func (f *fieldBase) Number() int   { return f.index }
func (f *fieldBase) File() *File   { return f.dcf }
func (f *fieldBase) IsRequired() bool  { return f.HasKeyword("required") }
func (f *fieldBase) IsRam() bool       { return f.HasKeyword("ram") }
func (f *fieldBase) IsBroadcast() bool { return f.HasKeyword("broadcast") }
func (f *fieldBase) IsClrecv() bool    { return f.HasKeyword("clrecv") }
func (f *fieldBase) IsClsend() bool    { return f.HasKeyword("clsend") }
func (f *fieldBase) IsOwnrecv() bool   { return f.HasKeyword("ownrecv") }
func (f *fieldBase) IsOwnsend() bool   { return f.HasKeyword("ownsend") }
func (f *fieldBase) IsAirecv() bool    { return f.HasKeyword("airecv") }
func (f *fieldBase) IsDb() bool        { return f.HasKeyword("db") }

// hashNameNumber folds in this field's name and its file-wide number, the
// "DCField base" hash that AtomicField and MolecularField share.
// ParameterField does not call this: it has no name/number of its own in
// the fingerprint.
func (f *fieldBase) hashNameNumber(h *HashGenerator) {
	h.AddString(f.name)
	h.AddInt(int64(f.index))
}

// ParameterField is a plain struct/dclass member variable.
type ParameterField struct {
	fieldBase
	Param Parameter
}

func NewParameterField(dcf *File, name string, param Parameter, isStructField bool) *ParameterField {
	return &ParameterField{fieldBase: fieldBase{dcf: dcf, name: name, isStructField: isStructField}, Param: param}
}

func (f *ParameterField) NumArgs() int { return 1 }

func (f *ParameterField) PackArgs(dg *Datagram, args []interface{}) error {
	if len(args) != 1 {
		return encodeErrorf("field %s expects 1 argument, got %d", f.name, len(args))
	}
	return f.Param.PackValue(dg, args[0])
}

func (f *ParameterField) UnpackArgs(dgi *DatagramIterator) ([]interface{}, error) {
	v, err := f.Param.UnpackValue(dgi)
	if err != nil {
		return nil, err
	}
	return []interface{}{v}, nil
}

func (f *ParameterField) HasDefaultValue() bool {
	return f.Param.HasDefault()
}

func (f *ParameterField) DefaultValue() []byte {
	if !f.Param.HasDefault() {
		return nil
	}
	dg := NewDatagram()
	if err := f.Param.PackValue(dg, f.Param.DefaultValue()); err != nil {
		return nil
	}
	return dg.Bytes()
}

func (f *ParameterField) GenerateHash(h *HashGenerator) {
	if !f.isStructField && f.NumKeywords() > 0 {
		flags := calcFlags(f.Keywords())
		if flags != omitFlagsSentinel {
			h.AddInt(int64(flags))
		}
	}
	f.Param.GenerateHash(h)
}

func (f *ParameterField) FormatData(data []byte, showFieldNames bool) string {
	dgi := NewDatagramIterator(data)
	v, err := f.Param.UnpackValue(dgi)
	if err != nil {
		return fmt.Sprintf("<unparsable: %v>", err)
	}
	s := formatValue(v)
	if showFieldNames {
		return f.name + " = " + s
	}
	return s
}

func (f *ParameterField) ParseString(s string) ([]byte, error) {
	v, err := parseScalar(s)
	if err != nil {
		return nil, err
	}
	dg := NewDatagram()
	if err := f.Param.PackValue(dg, v); err != nil {
		return nil, err
	}
	return dg.Bytes(), nil
}

// AtomicField is a remote-procedure-call-shaped field: a name plus an
// ordered argument list, each argument a Parameter.
type AtomicField struct {
	fieldBase
	Params []Parameter
}

func NewAtomicField(dcf *File, name string, params []Parameter) *AtomicField {
	return &AtomicField{fieldBase: fieldBase{dcf: dcf, name: name}, Params: params}
}

func (f *AtomicField) NumArgs() int { return len(f.Params) }

func (f *AtomicField) PackArgs(dg *Datagram, args []interface{}) error {
	if len(args) != len(f.Params) {
		return encodeErrorf("field %s expects %d arguments, got %d", f.name, len(f.Params), len(args))
	}
	for i, p := range f.Params {
		if err := p.PackValue(dg, args[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *AtomicField) UnpackArgs(dgi *DatagramIterator) ([]interface{}, error) {
	out := make([]interface{}, 0, len(f.Params))
	for _, p := range f.Params {
		v, err := p.UnpackValue(dgi)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *AtomicField) HasDefaultValue() bool {
	for _, p := range f.Params {
		if !p.HasDefault() {
			return false
		}
	}
	return len(f.Params) > 0
}

func (f *AtomicField) DefaultValue() []byte {
	if !f.HasDefaultValue() {
		return nil
	}
	dg := NewDatagram()
	for _, p := range f.Params {
		if err := p.PackValue(dg, p.DefaultValue()); err != nil {
			return nil
		}
	}
	return dg.Bytes()
}

func (f *AtomicField) GenerateHash(h *HashGenerator) {
	f.hashNameNumber(h)
	h.AddInt(int64(len(f.Params)))
	for _, p := range f.Params {
		p.GenerateHash(h)
	}
	flags := calcFlags(f.Keywords())
	if flags != omitFlagsSentinel {
		h.AddInt(int64(flags))
	}
}

func (f *AtomicField) FormatData(data []byte, showFieldNames bool) string {
	dgi := NewDatagramIterator(data)
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		v, err := p.UnpackValue(dgi)
		if err != nil {
			return fmt.Sprintf("<unparsable: %v>", err)
		}
		parts = append(parts, formatValue(v))
	}
	body := strings.Join(parts, ", ")
	if showFieldNames {
		return fmt.Sprintf("%s(%s)", f.name, body)
	}
	return body
}

func (f *AtomicField) ParseString(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, f.name+"(")
	s = strings.TrimSuffix(s, ")")
	parts := splitArgs(s)
	if len(parts) != len(f.Params) {
		return nil, parseErrorf(0, "field %s expects %d arguments, got %d", f.name, len(f.Params), len(parts))
	}
	dg := NewDatagram()
	for i, part := range parts {
		v, err := parseScalar(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if err := f.Params[i].PackValue(dg, v); err != nil {
			return nil, err
		}
	}
	return dg.Bytes(), nil
}

// MolecularField is a named alias for a list of existing fields; packing
// or unpacking it packs/unpacks each component field in turn.
type MolecularField struct {
	fieldBase
	Components []Field
}

func NewMolecularField(dcf *File, name string, components []Field) *MolecularField {
	return &MolecularField{fieldBase: fieldBase{dcf: dcf, name: name}, Components: components}
}

func (f *MolecularField) NumArgs() int {
	n := 0
	for _, c := range f.Components {
		n += c.NumArgs()
	}
	return n
}

func (f *MolecularField) PackArgs(dg *Datagram, args []interface{}) error {
	if len(args) != f.NumArgs() {
		return encodeErrorf("molecular field %s expects %d arguments, got %d", f.name, f.NumArgs(), len(args))
	}
	i := 0
	for _, c := range f.Components {
		n := c.NumArgs()
		if err := c.PackArgs(dg, args[i:i+n]); err != nil {
			return err
		}
		i += n
	}
	return nil
}

func (f *MolecularField) UnpackArgs(dgi *DatagramIterator) ([]interface{}, error) {
	out := make([]interface{}, 0, f.NumArgs())
	for _, c := range f.Components {
		vs, err := c.UnpackArgs(dgi)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

func (f *MolecularField) HasDefaultValue() bool { return false }
func (f *MolecularField) DefaultValue() []byte  { return nil }

func (f *MolecularField) GenerateHash(h *HashGenerator) {
	f.hashNameNumber(h)
	h.AddInt(int64(len(f.Components)))
	for _, c := range f.Components {
		c.GenerateHash(h)
	}
}

func (f *MolecularField) FormatData(data []byte, showFieldNames bool) string {
	dgi := NewDatagramIterator(data)
	parts := make([]string, 0, len(f.Components))
	for _, c := range f.Components {
		n := c.NumArgs()
		_ = n
		vs, err := c.UnpackArgs(dgi)
		if err != nil {
			return fmt.Sprintf("<unparsable: %v>", err)
		}
		for _, v := range vs {
			parts = append(parts, formatValue(v))
		}
	}
	body := strings.Join(parts, ", ")
	if showFieldNames {
		return fmt.Sprintf("%s(%s)", f.name, body)
	}
	return body
}

func (f *MolecularField) ParseString(s string) ([]byte, error) {
	return nil, parseErrorf(0, "molecular field %s cannot be parsed directly; parse its components", f.name)
}

// formatValue renders a decoded Go value the way FormatData should show it.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case []byte:
		return strconv.Quote(string(x))
	case string:
		return strconv.Quote(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// parseScalar parses a single ParseString token: a quoted string, or a
// decimal/float/hex number.
func parseScalar(s string) (interface{}, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil, parseErrorf(0, "bad quoted string %q: %v", s, err)
		}
		return unquoted, nil
	}
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, parseErrorf(0, "bad float literal %q: %v", s, err)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return nil, parseErrorf(0, "bad integer literal %q: %v", s, err)
	}
	return n, nil
}

// splitArgs splits a comma-separated argument list, respecting quotes.
func splitArgs(s string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i, r := range s {
		switch r {
		case '"':
			inQuote = !inQuote
		case '[':
			if !inQuote {
				depth++
			}
		case ']':
			if !inQuote {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	if len(parts) == 1 && strings.TrimSpace(parts[0]) == "" {
		return nil
	}
	return parts
}
