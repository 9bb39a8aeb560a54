package dclass

// TypeDef is a named alias for another type, optionally narrowing it with
// ranges/modulus/divisor/array dimensions. Resolving a typedef means
// walking its OldType chain, accumulating every constraint along the way,
// until a builtin DCType or a Struct/Class is reached.
type TypeDef struct {
	Name    string
	OldType string // the name this typedef expands to: a builtin, another typedef, or a struct/class

	Ranges     []IRange
	FRanges    []FRange
	ModulusSet bool
	Modulus    float64
	Divisor    uint32

	// ArrayDims is non-nil when this typedef adds array dimensions on top
	// of OldType, e.g. `typedef uint8 Buffer[256];`.
	ArrayDims []int
}

func NewTypeDef(name, oldType string) *TypeDef {
	return &TypeDef{Name: name, OldType: oldType, Divisor: 1}
}
