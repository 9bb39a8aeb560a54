package dclass

// SwitchValue is the Go-side representation of a value packed or unpacked
// through a SwitchParameter: the discriminant that selects a case, plus
// the named field values declared under whichever case matched.
type SwitchValue struct {
	Discriminant interface{}
	Fields       map[string]interface{}
}

// SwitchCase is one `case value:` (or the trailing `default:`) arm of a
// switch parameter. Values holds every literal this arm matches; a
// non-break case at parse time has its Fields concatenated onto the next
// arm's, so at runtime each SwitchCase already owns its complete,
// flattened field list.
type SwitchCase struct {
	Values    []interface{}
	IsDefault bool
	Fields    []Field
}

// SwitchParameter is a tagged union: a discriminant parameter selects
// which of several named field lists follows it on the wire. Name is
// empty for an unnamed switch (`switch (uint16) { ... }`).
type SwitchParameter struct {
	SwitchName   string
	Discriminant Parameter
	Cases        []*SwitchCase
	Default      *SwitchCase
}

func NewSwitchParameter(name string, discriminant Parameter) *SwitchParameter {
	return &SwitchParameter{SwitchName: name, Discriminant: discriminant}
}

func (p *SwitchParameter) TypeName() string {
	if p.SwitchName != "" {
		return "switch " + p.SwitchName
	}
	return "switch"
}

func (p *SwitchParameter) DCType() DCType { return TypeInvalid }

func (p *SwitchParameter) FixedByteSize() (int, bool) { return 0, false }

func (p *SwitchParameter) HasDefault() bool          { return false }
func (p *SwitchParameter) DefaultValue() interface{} { return nil }

func (p *SwitchParameter) caseFor(discriminant interface{}) *SwitchCase {
	for _, c := range p.Cases {
		for _, v := range c.Values {
			if v == discriminant {
				return c
			}
		}
	}
	return p.Default
}

func (p *SwitchParameter) PackValue(dg *Datagram, value interface{}) error {
	sv, ok := value.(SwitchValue)
	if !ok {
		return encodeErrorf("cannot pack %T as a switch value", value)
	}
	if err := p.Discriminant.PackValue(dg, sv.Discriminant); err != nil {
		return err
	}
	c := p.caseFor(sv.Discriminant)
	if c == nil {
		return encodeErrorf("switch %s: no case (and no default) matches discriminant %v", p.SwitchName, sv.Discriminant)
	}
	for _, f := range c.Fields {
		v, ok := sv.Fields[f.Name()]
		if !ok {
			return encodeErrorf("switch %s: missing value for field %s", p.SwitchName, f.Name())
		}
		if err := f.PackArgs(dg, []interface{}{v}); err != nil {
			return err
		}
	}
	return nil
}

func (p *SwitchParameter) UnpackValue(dgi *DatagramIterator) (interface{}, error) {
	discriminant, err := p.Discriminant.UnpackValue(dgi)
	if err != nil {
		return nil, err
	}
	c := p.caseFor(discriminant)
	if c == nil {
		return nil, decodeErrorf("switch %s: no case (and no default) matches discriminant %v", p.SwitchName, discriminant)
	}
	fields := make(map[string]interface{}, len(c.Fields))
	for _, f := range c.Fields {
		vs, err := f.UnpackArgs(dgi)
		if err != nil {
			return nil, err
		}
		if len(vs) == 1 {
			fields[f.Name()] = vs[0]
		} else {
			fields[f.Name()] = vs
		}
	}
	return SwitchValue{Discriminant: discriminant, Fields: fields}, nil
}

// GenerateHash folds in the switch name, the discriminant type, then one
// hash "case" per case label: a fallthrough case sharing one field list
// across several labels (`case 0: case 1: ...`) contributes one case hash
// per label, each re-hashing the same field list, exactly as if it had
// been written out as separate cases.
func (p *SwitchParameter) GenerateHash(h *HashGenerator) {
	h.AddString(p.SwitchName)
	p.Discriminant.GenerateHash(h)

	total := 0
	for _, c := range p.Cases {
		total += len(c.Values)
	}
	h.AddInt(int64(total))

	for _, c := range p.Cases {
		for _, v := range c.Values {
			dg := NewDatagram()
			if err := p.Discriminant.PackValue(dg, v); err == nil {
				h.AddBytes(dg.Bytes())
			}
			h.AddInt(int64(len(c.Fields) + 1))
			p.Discriminant.GenerateHash(h)
			for _, f := range c.Fields {
				f.GenerateHash(h)
			}
		}
	}

	if p.Default != nil {
		h.AddInt(int64(len(p.Default.Fields) + 1))
		p.Discriminant.GenerateHash(h)
		for _, f := range p.Default.Fields {
			f.GenerateHash(h)
		}
	}
}
