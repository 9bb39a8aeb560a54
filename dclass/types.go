package dclass

// DCType is the wire-level primitive type tag a parameter ultimately
// carries. The numeric order matters: it is hashed directly by
// GenerateHash, so it must never be reordered once schemas depend on it.
type DCType int

const (
	TypeInt8 DCType = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat64
	TypeString
	TypeBlob
	TypeBlob32
	TypeInt16Array
	TypeInt32Array
	TypeUint16Array
	TypeUint32Array
	TypeInt8Array
	TypeUint8Array
	TypeUint32Uint8Array
	TypeChar
	TypeInvalid
)

var typeNames = map[string]DCType{
	"int8":             TypeInt8,
	"int16":            TypeInt16,
	"int32":            TypeInt32,
	"int64":            TypeInt64,
	"uint8":            TypeUint8,
	"uint16":           TypeUint16,
	"uint32":           TypeUint32,
	"uint64":           TypeUint64,
	"float64":          TypeFloat64,
	"string":           TypeString,
	"blob":             TypeBlob,
	"blob32":           TypeBlob32,
	"int16array":       TypeInt16Array,
	"int32array":       TypeInt32Array,
	"uint16array":      TypeUint16Array,
	"uint32array":      TypeUint32Array,
	"int8array":        TypeInt8Array,
	"uint8array":       TypeUint8Array,
	"uint32uint8array": TypeUint32Uint8Array,
	"char":             TypeChar,
}

// dcTypeOf looks up the DCType tag for a builtin type name, or TypeInvalid
// if name isn't a recognized builtin (e.g. it names a struct/dclass).
func dcTypeOf(name string) DCType {
	if t, ok := typeNames[name]; ok {
		return t
	}
	return TypeInvalid
}

// fixedByteSizes holds the constant wire width of every primitive whose
// encoding never varies with content. Sized types (string/blob/blob32) and
// the legacy array tags are intentionally absent.
var fixedByteSizes = map[DCType]int{
	TypeInt8:    1,
	TypeInt16:   2,
	TypeInt32:   4,
	TypeInt64:   8,
	TypeUint8:   1,
	TypeUint16:  2,
	TypeUint32:  4,
	TypeUint64:  8,
	TypeFloat64: 8,
	TypeChar:    1,
}

// historicKeywords maps the nine keywords with fixed hash bit positions to
// their flag value.
var historicKeywords = map[string]uint32{
	"required":  0x0001,
	"broadcast": 0x0002,
	"ownrecv":   0x0004,
	"ram":       0x0008,
	"db":        0x0010,
	"clsend":    0x0020,
	"clrecv":    0x0040,
	"ownsend":   0x0080,
	"airecv":    0x0100,
}

// omitFlagsSentinel marks "no flags to hash" and can never equal a real
// flag set, since only nine historic bits are defined.
const omitFlagsSentinel = ^uint32(0)

// IRange is an inclusive integer range. A single literal n expands to
// IRange{n, n}.
type IRange struct {
	Min, Max int64
}

// FRange is an inclusive floating-point range.
type FRange struct {
	Min, Max float64
}

// Hashable is satisfied by anything that folds itself into a
// HashGenerator: a Parameter, a Field, a DClass, or a whole DCFile.
type Hashable interface {
	GenerateHash(h *HashGenerator)
}

// KeywordList is satisfied by anything that carries a set of named
// keywords: a File's declared custom keywords, or a Field's enabled ones.
type KeywordList interface {
	AddKeyword(keyword string)
	AddKeywords(list KeywordList)
	CompareKeywords(list KeywordList) bool
	HasKeyword(keyword string) bool
	Keywords() []string
	NumKeywords() int
}

// keywords is a []string satisfying KeywordList. It is always used through
// a pointer so that AddKeyword's append is visible to the caller; a
// value-receiver version of this (as in early drafts) silently drops
// keywords added after the first allocation.
type keywords []string

func (k *keywords) AddKeyword(keyword string) {
	if !k.HasKeyword(keyword) {
		*k = append(*k, keyword)
	}
}

func (k *keywords) AddKeywords(list KeywordList) {
	for _, keyword := range list.Keywords() {
		k.AddKeyword(keyword)
	}
}

func (k *keywords) CompareKeywords(list KeywordList) bool {
	if len(*k) != len(list.Keywords()) {
		return false
	}
	for _, keyword := range *k {
		if !list.HasKeyword(keyword) {
			return false
		}
	}
	return true
}

func (k *keywords) HasKeyword(keyword string) bool {
	for _, word := range *k {
		if keyword == word {
			return true
		}
	}
	return false
}

func (k *keywords) Keywords() []string {
	return []string(*k)
}

func (k *keywords) NumKeywords() int {
	return len(*k)
}

// calcFlags computes the historic-keyword bitmask for a keyword set. A
// custom (non-historic) keyword contributes no bits: only the nine fixed
// names are ever hashed this way.
func calcFlags(kws []string) uint32 {
	var flags uint32
	for _, kw := range kws {
		if bit, ok := historicKeywords[kw]; ok {
			flags |= bit
		}
	}
	return flags
}
