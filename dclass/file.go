package dclass

// Import records a top-level `import`/`from ... import` declaration. This
// module parses and retains imports but does not itself resolve or load
// the files they name; a caller that wants that behavior walks Imports
// and parses each named module itself.
type Import struct {
	Module  string   // e.g. "foo" or "foo/bar"
	Suffix  string    // module-extension suffix, e.g. "/AI", "/OV" (empty if none)
	Symbols []string // symbols named after "import"; ["*"] for "from foo import *"
}

// namespaceEntry is exactly one of Typedef, Struct, or Class: every name a
// File declares (besides custom keywords) lives in one shared namespace,
// so a name collision between a typedef and a struct is caught eagerly.
type namespaceEntry struct {
	Typedef *TypeDef
	Struct  *Struct
	Class   *Class
}

// File (a "DCFile" in the source language's own vocabulary) is the result
// of parsing one or more .dc sources into a single type model: every
// struct, class, typedef, custom keyword, and import declaration, plus
// the flat, File-wide field list each field's Number() indexes into.
type File struct {
	Structs  []*Struct
	Classes  []*Class
	Typedefs []*TypeDef
	Imports  []Import
	Fields   []Field

	namespace      map[string]namespaceEntry
	classByName    map[string]*Class
	customKeywords keywords

	// decls holds every struct and class in the order each was declared,
	// combined into one list; this is the order File.Hash walks them in,
	// and a class's parent number is its position in this list.
	decls []Hashable
}

// NewFile returns an empty File ready to be populated by a parser.
func NewFile() *File {
	return &File{
		namespace:   make(map[string]namespaceEntry),
		classByName: make(map[string]*Class),
	}
}

// AddStruct declares a new, empty struct and registers it in the
// namespace. It fails if name is already taken.
func (f *File) AddStruct(name string) (*Struct, error) {
	if _, dup := f.namespace[name]; dup {
		return nil, parseErrorf(0, "%s is already defined", name)
	}
	s := newStruct(f, name, len(f.Structs)+len(f.Classes))
	f.Structs = append(f.Structs, s)
	f.namespace[name] = namespaceEntry{Struct: s}
	f.decls = append(f.decls, s)
	return s, nil
}

// AddClass declares a new, empty class and registers it in the namespace.
// It fails if name is already taken.
func (f *File) AddClass(name string) (*Class, error) {
	if _, dup := f.namespace[name]; dup {
		return nil, parseErrorf(0, "%s is already defined", name)
	}
	c := newClass(f, name, len(f.Structs)+len(f.Classes))
	f.Classes = append(f.Classes, c)
	f.namespace[name] = namespaceEntry{Class: c}
	f.classByName[name] = c
	f.decls = append(f.decls, c)
	return c, nil
}

// ClassByName looks up a previously declared class.
func (f *File) ClassByName(name string) (*Class, bool) {
	c, ok := f.classByName[name]
	return c, ok
}

// AddTypedef declares a new typedef and registers it in the namespace. It
// fails if name is already taken.
func (f *File) AddTypedef(td *TypeDef) error {
	if _, dup := f.namespace[td.Name]; dup {
		return parseErrorf(0, "%s is already defined", td.Name)
	}
	f.Typedefs = append(f.Typedefs, td)
	f.namespace[td.Name] = namespaceEntry{Typedef: td}
	return nil
}

// AddKeyword registers a custom (non-historic) keyword name, making it
// legal to use as a field keyword thereafter.
func (f *File) AddKeyword(name string) {
	f.customKeywords.AddKeyword(name)
}

// HasKeyword reports whether name is either one of the nine historic
// keywords or a custom keyword declared with AddKeyword.
func (f *File) HasKeyword(name string) bool {
	if _, ok := historicKeywords[name]; ok {
		return true
	}
	return f.customKeywords.HasKeyword(name)
}

// AddImport registers a parsed import declaration.
func (f *File) AddImport(imp Import) {
	f.Imports = append(f.Imports, imp)
}

// addField appends field to the File-wide field list and stamps its
// Number() with that position. Only ParameterField, AtomicField, and
// MolecularField are accepted, since they're the only Field
// implementations this package produces.
func (f *File) addField(field Field) {
	n := len(f.Fields)
	switch x := field.(type) {
	case *ParameterField:
		x.index = n
	case *AtomicField:
		x.index = n
	case *MolecularField:
		x.index = n
	}
	f.Fields = append(f.Fields, field)
}

// FieldByNumber looks up a field by its File-wide number.
func (f *File) FieldByNumber(n int) (Field, bool) {
	if n < 0 || n >= len(f.Fields) {
		return nil, false
	}
	return f.Fields[n], true
}

// ResolvedType is the result of walking a typedef chain to its underlying
// builtin type or struct/class, accumulating every constraint found along
// the way (spec.md §4.6).
type ResolvedType struct {
	Base       string
	DCType     DCType
	Struct     *Struct
	Class      *Class
	Divisor    uint32
	ModulusSet bool
	Modulus    float64
	Ranges     []IRange
	FRanges    []FRange
	ArrayDims  []int
}

// ResolveType follows name through any typedef chain to the builtin type
// or struct/class it ultimately names, accumulating ranges, divisor,
// modulus, and array dimensions declared anywhere in the chain.
func (f *File) ResolveType(name string) (*ResolvedType, error) {
	visited := make(map[string]bool)
	divisor := uint32(1)
	modulusSet := false
	modulus := 0.0
	var ranges []IRange
	var franges []FRange
	var dims []int
	cur := name

	for {
		if t := dcTypeOf(cur); t != TypeInvalid {
			return &ResolvedType{Base: cur, DCType: t, Divisor: divisor, ModulusSet: modulusSet, Modulus: modulus, Ranges: ranges, FRanges: franges, ArrayDims: dims}, nil
		}
		if visited[cur] {
			return nil, parseErrorf(0, "circular typedef chain involving %s", cur)
		}
		visited[cur] = true

		entry, ok := f.namespace[cur]
		if !ok {
			return nil, parseErrorf(0, "unknown type %s", cur)
		}
		switch {
		case entry.Struct != nil:
			return &ResolvedType{Base: cur, DCType: TypeInvalid, Struct: entry.Struct, Divisor: divisor, ModulusSet: modulusSet, Modulus: modulus, Ranges: ranges, FRanges: franges, ArrayDims: dims}, nil
		case entry.Class != nil:
			return &ResolvedType{Base: cur, DCType: TypeInvalid, Class: entry.Class, Divisor: divisor, ModulusSet: modulusSet, Modulus: modulus, Ranges: ranges, FRanges: franges, ArrayDims: dims}, nil
		case entry.Typedef != nil:
			td := entry.Typedef
			if td.Divisor != 1 {
				divisor = td.Divisor
			}
			if td.ModulusSet {
				modulusSet = true
				modulus = td.Modulus
			}
			ranges = append(ranges, td.Ranges...)
			franges = append(franges, td.FRanges...)
			dims = append(dims, td.ArrayDims...)
			cur = td.OldType
		default:
			return nil, runtimeError("namespace entry has no payload")
		}
	}
}

// Hash computes this File's stable 32-bit schema fingerprint: a version
// word, the combined struct+class count, then every struct and class in
// declaration order, each folding in its own fields (flattened, for
// classes). Custom keyword names are never folded into the hash; only the
// historic-keyword bitmask each field carries is.
func (f *File) Hash() uint32 {
	h := NewHashGenerator()
	h.AddInt(1)
	h.AddInt(int64(len(f.decls)))
	for _, d := range f.decls {
		d.GenerateHash(h)
	}
	return h.GetHash()
}
