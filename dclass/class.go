package dclass

// Struct is a plain composite type: a named, ordered list of member
// fields with no inheritance and no remote-object semantics. Structs are
// used as the element type of StructParameter.
type Struct struct {
	dcf          *File
	name         string
	index        int
	fields       []Field
	fieldsByName map[string]Field
}

func newStruct(dcf *File, name string, index int) *Struct {
	return &Struct{dcf: dcf, name: name, index: index, fieldsByName: make(map[string]Field)}
}

func (s *Struct) Name() string  { return s.name }
func (s *Struct) Index() int    { return s.index }
func (s *Struct) File() *File   { return s.dcf }
func (s *Struct) Fields() []Field { return s.fields }

func (s *Struct) FieldByName(name string) (Field, bool) {
	f, ok := s.fieldsByName[name]
	return f, ok
}

// AddField registers f as the next member of this struct. It returns an
// error if a field with the same name already exists.
func (s *Struct) AddField(f Field) error {
	if _, dup := s.fieldsByName[f.Name()]; dup {
		return parseErrorf(0, "struct %s already has a field named %s", s.name, f.Name())
	}
	s.fields = append(s.fields, f)
	s.fieldsByName[f.Name()] = f
	return nil
}

// FixedByteSize returns the struct's total wire width if every member
// field has a fixed size, or (0, false) if any member varies.
func (s *Struct) FixedByteSize() (int, bool) {
	total := 0
	for _, f := range s.fields {
		pf, ok := f.(*ParameterField)
		if !ok {
			return 0, false
		}
		size, ok := pf.Param.FixedByteSize()
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

// PackFields packs values (keyed by field name) in field declaration
// order.
func (s *Struct) PackFields(dg *Datagram, values map[string]interface{}) error {
	for _, f := range s.fields {
		v, ok := values[f.Name()]
		if !ok {
			if f.HasDefaultValue() {
				dg.AddBytes(f.DefaultValue())
				continue
			}
			return encodeErrorf("struct %s: missing value for field %s", s.name, f.Name())
		}
		if err := f.PackArgs(dg, []interface{}{v}); err != nil {
			return err
		}
	}
	return nil
}

// UnpackFields unpacks every member field in declaration order, returning
// a map keyed by field name.
func (s *Struct) UnpackFields(dgi *DatagramIterator) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.fields))
	for _, f := range s.fields {
		vs, err := f.UnpackArgs(dgi)
		if err != nil {
			return nil, err
		}
		if len(vs) == 1 {
			out[f.Name()] = vs[0]
		} else {
			out[f.Name()] = vs
		}
	}
	return out, nil
}

// GenerateHash follows the same DClass routine as Class.GenerateHash, with
// the is-struct marker set and no parents or constructor (structs have
// neither in this model).
func (s *Struct) GenerateHash(h *HashGenerator) {
	h.AddString(s.name)
	h.AddInt(1)
	h.AddInt(0) // len(parents): structs never have parents
	h.AddInt(int64(len(s.fields)))
	for _, f := range s.fields {
		f.GenerateHash(h)
	}
}

// Class (a "dclass" in source) is a networked object type: an ordered,
// flattened field list inherited from zero or more parent classes, plus
// its own declared fields. Field numbers are assigned globally across the
// owning File, not per-class.
type Class struct {
	dcf     *File
	name    string
	index   int
	parents []*Class

	ownFields    []Field
	fieldsByName map[string]Field

	constructor Field // the field named identically to the class, if any

	inherited     []Field // cached result of BuildInheritedFields
	inheritedBuilt bool
}

func newClass(dcf *File, name string, index int) *Class {
	return &Class{dcf: dcf, name: name, index: index, fieldsByName: make(map[string]Field)}
}

func (c *Class) Name() string    { return c.name }
func (c *Class) Index() int      { return c.index }
func (c *Class) File() *File     { return c.dcf }
func (c *Class) Parents() []*Class { return c.parents }

// AddParent registers a base class to inherit fields from, in declared
// order; later parents shadow earlier ones on a name collision, and the
// class's own fields shadow every parent.
func (c *Class) AddParent(p *Class) {
	c.parents = append(c.parents, p)
	c.inheritedBuilt = false
}

// AddField registers f as one of this class's own (non-inherited) fields.
// A field whose name matches the class's own name is treated as the
// class's constructor rather than an ordinary field.
func (c *Class) AddField(f Field) error {
	if _, dup := c.fieldsByName[f.Name()]; dup {
		return parseErrorf(0, "class %s already has a field named %s", c.name, f.Name())
	}
	if f.Name() == c.name {
		c.constructor = f
		return nil
	}
	c.ownFields = append(c.ownFields, f)
	c.fieldsByName[f.Name()] = f
	c.inheritedBuilt = false
	return nil
}

func (c *Class) Constructor() (Field, bool) { return c.constructor, c.constructor != nil }

func (c *Class) OwnFields() []Field { return c.ownFields }

// BuildInheritedFields computes this class's full, flattened field list:
// every parent's inherited fields (in parent-declaration order, de-duped
// by name, a later parent's field replacing an earlier parent's in place
// on a name collision), then this class's own fields, with an own field
// of the same name as an inherited one replacing it in place rather than
// appending a duplicate.
func (c *Class) BuildInheritedFields() []Field {
	if c.inheritedBuilt {
		return c.inherited
	}

	var flat []Field
	index := make(map[string]int)
	for _, p := range c.parents {
		for _, f := range p.BuildInheritedFields() {
			if i, dup := index[f.Name()]; dup {
				flat[i] = f
				continue
			}
			index[f.Name()] = len(flat)
			flat = append(flat, f)
		}
	}
	for _, f := range c.ownFields {
		if i, dup := index[f.Name()]; dup {
			flat[i] = f
			continue
		}
		index[f.Name()] = len(flat)
		flat = append(flat, f)
	}

	c.inherited = flat
	c.inheritedBuilt = true
	return flat
}

func (c *Class) FieldByName(name string) (Field, bool) {
	for _, f := range c.BuildInheritedFields() {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// GenerateHash folds in the class name, each parent's declaration number
// (inheritance order matters to the fingerprint), the constructor if one
// was declared, and the class's own (non-inherited) fields in declaration
// order.
func (c *Class) GenerateHash(h *HashGenerator) {
	h.AddString(c.name)
	h.AddInt(int64(len(c.parents)))
	for _, p := range c.parents {
		h.AddInt(int64(p.Index()))
	}
	if c.constructor != nil {
		c.constructor.GenerateHash(h)
	}
	h.AddInt(int64(len(c.ownFields)))
	for _, f := range c.ownFields {
		f.GenerateHash(h)
	}
}
