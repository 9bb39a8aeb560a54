package dclass

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads a complete .dc source from r and returns the File it
// describes. If any parse errors were encountered, a non-nil File is
// still returned (as much of it as could be built) alongside a
// ParseErrors listing every problem found; parsing never stops at the
// first error.
func Parse(r io.Reader) (*File, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	p := &parser{
		dcf: NewFile(),
		lex: lex(buf.String()),
	}
	p.run()

	if len(p.errors) > 0 {
		return p.dcf, p.errors
	}
	return p.dcf, nil
}

// ParseFile opens path and parses it as a single .dc source.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseFiles parses several .dc sources as one logical schema: their
// contents are concatenated in argument order before parsing, so later
// files may reference structs/classes/typedefs declared in earlier ones.
func ParseFiles(paths ...string) (*File, error) {
	var buf bytes.Buffer
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteString("\n")
	}
	return Parse(&buf)
}

// fieldHost is satisfied by Struct and Class: anything parseField can add
// a parsed field to.
type fieldHost interface {
	AddField(f Field) error
}

// isStructHost reports whether host is a struct body rather than a dclass
// body; this is the "is_struct_field" flag a ParameterField's hash reads.
func isStructHost(host fieldHost) bool {
	_, ok := host.(*Struct)
	return ok
}

// parser turns a token stream into a populated File. It accumulates
// errors rather than stopping at the first one, so a caller sees as much
// of the file's problems as possible in one pass.
type parser struct {
	dcf      *File
	lex      *lexer
	errors   ParseErrors
	foundEOF bool
}

func (p *parser) run() {
	for p.parseDeclaration() {
	}
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, parseErrorf(p.lex.lineNumber(), format, args...))
}

func (p *parser) lexErrorf(t token) {
	p.errors = append(p.errors, parseErrorf(p.lex.lineNumber(), "lex error: %s", t.val))
}

// addErr records err, which is always a *Error in practice but is accepted
// as a plain error so a stray runtimeError can't panic the parser.
func (p *parser) addErr(err error) {
	if de, ok := err.(*Error); ok {
		p.errors = append(p.errors, de)
		return
	}
	p.errorf("%v", err)
}

func (p *parser) next() token {
	if p.foundEOF {
		panic(runtimeError("eof not handled by parser, this is a bug in dclass"))
	}
	t := p.lex.nextToken()
	if t.typ == tokenEOF {
		p.foundEOF = true
	}
	return t
}

func (p *parser) peek() token {
	return p.lex.peekToken()
}

// parseDeclaration parses one top-level declaration. Returns false upon
// reaching tokenEOF or tokenError.
func (p *parser) parseDeclaration() bool {
	t := p.peek()
	switch t.typ {
	case tokenEOF:
		return false
	case tokenError:
		p.next()
		p.lexErrorf(t)
		return false
	case tokenKeyword:
		return p.parseKeyword()
	case tokenStruct:
		return p.parseStruct()
	case tokenDClass:
		return p.parseClass()
	case tokenTypedef:
		return p.parseTypedef()
	case tokenImport:
		return p.parseImport()
	case tokenFrom:
		return p.parseFrom()
	default:
		p.next()
		p.errorf("expected a declaration but got '%s'", t.String())
		return true
	}
}

// parseKeyword parses `keyword foo;`.
func (p *parser) parseKeyword() bool {
	p.next() // consume "keyword"
	t := p.next()
	switch t.typ {
	case tokenEOF:
		p.errorf("incomplete 'keyword' declaration, found EOF")
		return false
	case tokenError:
		p.lexErrorf(t)
		return false
	case tokenIdentifier:
		p.dcf.AddKeyword(t.val)
		return p.expectEndline()
	default:
		p.errorf("unexpected '%s' in 'keyword' declaration", t.String())
		return p.expectEndline()
	}
}

// parseImport parses `import foo[/Suffix] [symbol, ...];`.
func (p *parser) parseImport() bool {
	p.next() // consume "import"
	return p.finishImport("")
}

// parseFrom parses `from foo[/Suffix] import symbol, ... | *;`.
func (p *parser) parseFrom() bool {
	p.next() // consume "from"
	t := p.next()
	if t.typ != tokenIdentifier {
		p.errorf("expected a module name after 'from', found '%s'", t.String())
		return p.expectEndline()
	}
	module, suffix := splitModuleSuffix(t.val)
	next := p.next()
	if next.typ != tokenImport {
		p.errorf("expected 'import' after 'from %s', found '%s'", t.val, next.String())
		return p.expectEndline()
	}
	return p.finishImport2(module, suffix)
}

func (p *parser) finishImport(_ string) bool {
	t := p.next()
	if t.typ != tokenIdentifier {
		p.errorf("expected a module name after 'import', found '%s'", t.String())
		return p.expectEndline()
	}
	module, suffix := splitModuleSuffix(t.val)
	return p.finishImport2(module, suffix)
}

// finishImport2 parses the optional symbol list of an import/from
// statement: nothing (whole-module import), "*", or a comma-separated
// identifier list.
func (p *parser) finishImport2(module, suffix string) bool {
	imp := Import{Module: module, Suffix: suffix}
	t := p.peek()
	if t.typ == tokenOperator && t.val == "*" {
		p.next()
		imp.Symbols = []string{"*"}
	} else if t.typ == tokenIdentifier {
		for {
			sym := p.next()
			if sym.typ != tokenIdentifier {
				p.errorf("expected an imported symbol name, found '%s'", sym.String())
				break
			}
			imp.Symbols = append(imp.Symbols, sym.val)
			if p.peek().typ != tokenSeperator {
				break
			}
			p.next()
		}
	}
	p.dcf.AddImport(imp)
	return p.expectEndline()
}

// splitModuleSuffix splits "foo/AI" into ("foo", "/AI").
func splitModuleSuffix(s string) (module, suffix string) {
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// parseTypedef parses `typedef type name [array-dims];`.
func (p *parser) parseTypedef() bool {
	p.next() // consume "typedef"
	typTok := p.next()
	base, ok := p.resolveTypeToken(typTok, false)
	if !ok {
		return p.expectEndline()
	}
	base, ok = p.parseConstraints(base)
	if !ok {
		return p.expectEndline()
	}

	nameTok := p.next()
	if nameTok.typ != tokenIdentifier {
		p.errorf("expected a typedef name, found '%s'", nameTok.String())
		return p.expectEndline()
	}

	param, ok := p.parseArraySuffix(base)
	if !ok {
		return false
	}

	td := NewTypeDef(nameTok.val, typTok.val)
	switch x := param.(type) {
	case *IntParameter:
		td.Divisor = x.Divisor
		td.Ranges = x.Ranges
		td.ModulusSet = x.ModulusSet
		td.Modulus = x.Modulus
	case *FloatParameter:
		td.Divisor = x.Divisor
		td.FRanges = x.Ranges
		td.ModulusSet = x.ModulusSet
		td.Modulus = x.Modulus
	case *CharParameter:
		td.Ranges = x.Ranges
	case *SizedParameter:
		td.Ranges = x.LengthRanges
	case *ArrayParameter:
		td.ArrayDims = x.Dims
		td.OldType = x.Element.TypeName()
	}

	if err := p.dcf.AddTypedef(td); err != nil {
		p.addErr(err)
	}
	return p.expectEndline()
}

// parseStruct parses `struct foo {...};`.
func (p *parser) parseStruct() bool {
	p.next() // consume "struct"
	t := p.next()
	switch t.typ {
	case tokenEOF:
		p.errorf("incomplete 'struct' declaration, found EOF")
		return false
	case tokenError:
		p.lexErrorf(t)
		return false
	case tokenIdentifier:
		s, err := p.dcf.AddStruct(t.val)
		if err != nil {
			p.addErr(err)
			return p.expectRightCurly(p.lex.lineNumber())
		}
		return p.parseBody(s)
	default:
		p.errorf("unexpected '%s' in 'struct' declaration", t.String())
		return true
	}
}

// parseClass parses `dclass foo [: Parent, ...] {...};`.
func (p *parser) parseClass() bool {
	p.next() // consume "dclass"
	t := p.next()
	switch t.typ {
	case tokenEOF:
		p.errorf("incomplete 'dclass' declaration, found EOF")
		return false
	case tokenError:
		p.lexErrorf(t)
		return false
	case tokenIdentifier:
		c, err := p.dcf.AddClass(t.val)
		if err != nil {
			p.addErr(err)
			return p.expectRightCurly(p.lex.lineNumber())
		}
		if p.peek().typ == tokenComposition {
			p.next()
			for {
				parentTok := p.next()
				if parentTok.typ != tokenIdentifier {
					p.errorf("expected a parent class name, found '%s'", parentTok.String())
					break
				}
				parent, ok := p.dcf.ClassByName(parentTok.val)
				if !ok {
					p.errorf("%s inherits from undefined class %s", t.val, parentTok.val)
				} else {
					c.AddParent(parent)
				}
				if p.peek().typ != tokenSeperator {
					break
				}
				p.next()
			}
		}
		return p.parseBody(c)
	default:
		p.errorf("unexpected '%s' in 'dclass' declaration", t.String())
		return true
	}
}

// parseBody parses the `{ field; field; ... }` block shared by struct and
// dclass declarations.
func (p *parser) parseBody(host fieldHost) bool {
	t := p.next()
	switch t.typ {
	case tokenEOF:
		p.errorf("incomplete declaration, found EOF")
		return false
	case tokenError:
		p.lexErrorf(t)
		return false
	case tokenLeftCurly:
	default:
		p.errorf("missing '{' after declaration, found '%s'", t.String())
		return true
	}

	for {
		pt := p.peek()
		if pt.typ == tokenRightCurly || pt.typ == tokenEOF || pt.typ == tokenError {
			break
		}
		if !p.parseField(host) {
			return false
		}
	}

	t = p.next() // consume '}', EOF, or error
	switch t.typ {
	case tokenEOF:
		p.errorf("incomplete definition, found EOF")
		return false
	case tokenError:
		p.lexErrorf(t)
		return false
	}
	return p.expectEndline()
}

// parseField parses one field: a parameter, an atomic (function-shaped),
// or a molecular (composite) field.
func (p *parser) parseField(host fieldHost) bool {
	t := p.next()
	switch {
	case t.typ == tokenIdentifier:
		switch p.peek().typ {
		case tokenLeftParen:
			return p.parseAtomic(t.val, host)
		case tokenComposition:
			return p.parseMolecular(t.val, host)
		default:
			return p.parseParameterMember(t, host)
		}
	case t.typ == tokenSwitch:
		return p.parseSwitchFieldMember(host)
	case isDataTypeToken(t):
		return p.parseParameterMember(t, host)
	default:
		p.errorf("expecting a field, found %s", t.String())
		return p.expectEndline()
	}
}

// parseSwitchFieldMember parses a switch used directly as a struct/dclass
// member: `switch [name] (discriminantType) { cases };`. Unlike an ordinary
// parameter member, a switch member supplies its own field name (the
// switch's own name, if any) rather than taking one after its type.
func (p *parser) parseSwitchFieldMember(host fieldHost) bool {
	isStructField := isStructHost(host)
	param, ok := p.parseSwitchType(isStructField)
	if !ok {
		return p.expectEndline()
	}
	sp := param.(*SwitchParameter)

	field := NewParameterField(p.dcf, sp.SwitchName, sp, isStructField)
	if err := host.AddField(field); err != nil {
		p.addErr(err)
		return p.expectEndline()
	}
	p.dcf.addField(field)
	return p.expectEndline()
}

// parseParameterMember parses `type name [array-dims] [= default] [keywords...];`.
func (p *parser) parseParameterMember(typTok token, host fieldHost) bool {
	isStructField := isStructHost(host)
	base, ok := p.resolveTypeToken(typTok, isStructField)
	if !ok {
		return p.expectEndline()
	}
	base, ok = p.parseConstraints(base)
	if !ok {
		return p.expectEndline()
	}

	nameTok := p.next()
	if nameTok.typ != tokenIdentifier {
		p.errorf("expected a field name, found '%s'", nameTok.String())
		return p.expectEndline()
	}

	param, ok := p.parseArraySuffix(base)
	if !ok {
		return false
	}

	if p.peek().typ == tokenAssignment {
		p.next()
		if !p.parseDefault(param) {
			return false
		}
	}

	field := NewParameterField(p.dcf, nameTok.val, param, isStructField)
	if !p.parseKeywordList(&field.keywords) {
		return false
	}
	if err := host.AddField(field); err != nil {
		p.addErr(err)
		return true
	}
	p.dcf.addField(field)
	return true
}

// parseAtomic parses `name(args...) keywords...;`, with the identifier
// already consumed.
func (p *parser) parseAtomic(name string, host fieldHost) bool {
	p.next() // consume '('

	isStructField := isStructHost(host)
	var params []Parameter
	for p.peek().typ != tokenRightParen {
		typTok := p.next()
		base, ok := p.resolveTypeToken(typTok, isStructField)
		if !ok {
			return p.expectEndline()
		}
		base, ok = p.parseConstraints(base)
		if !ok {
			return p.expectEndline()
		}
		// An argument may have a name (ignored by the wire format, kept
		// only for readability) before its default/array suffix.
		if p.peek().typ == tokenIdentifier {
			p.next()
		}
		param, ok := p.parseArraySuffix(base)
		if !ok {
			return false
		}
		if p.peek().typ == tokenAssignment {
			p.next()
			if !p.parseDefault(param) {
				return false
			}
		}
		params = append(params, param)

		if p.peek().typ == tokenSeperator {
			p.next()
			continue
		}
		break
	}

	t := p.next() // consume ')'
	if t.typ != tokenRightParen {
		p.errorf("missing ')' after arguments of %s, found '%s'", name, t.String())
		return p.expectEndline()
	}

	field := NewAtomicField(p.dcf, name, params)
	if !p.parseKeywordList(&field.keywords) {
		return false
	}
	if err := host.AddField(field); err != nil {
		p.addErr(err)
		return true
	}
	p.dcf.addField(field)
	return true
}

// parseMolecular parses `name: comp1, comp2, ...;`, with the identifier
// already consumed.
func (p *parser) parseMolecular(name string, host fieldHost) bool {
	p.next() // consume ':'

	var components []Field
	for {
		compTok := p.next()
		if compTok.typ != tokenIdentifier {
			p.errorf("expected a field name in molecular %s, found '%s'", name, compTok.String())
			return p.expectEndline()
		}
		comp, ok := p.lookupField(host, compTok.val)
		if !ok {
			p.errorf("molecular %s references undefined field %s", name, compTok.val)
		} else {
			components = append(components, comp)
		}
		if p.peek().typ != tokenSeperator {
			break
		}
		p.next()
	}

	field := NewMolecularField(p.dcf, name, components)
	if err := host.AddField(field); err != nil {
		p.addErr(err)
		return p.expectEndline()
	}
	p.dcf.addField(field)
	return p.expectEndline()
}

// lookupField finds a previously declared field by name on host, which is
// always a *Struct or *Class in practice.
func (p *parser) lookupField(host fieldHost, name string) (Field, bool) {
	switch h := host.(type) {
	case *Struct:
		return h.FieldByName(name)
	case *Class:
		for _, f := range h.OwnFields() {
			if f.Name() == name {
				return f, true
			}
		}
		return h.FieldByName(name)
	default:
		return nil, false
	}
}

// parseSwitchType parses `switch [name] (discriminantType) { cases }`,
// with the 'switch' keyword already consumed.
func (p *parser) parseSwitchType(isStructField bool) (Parameter, bool) {
	name := ""
	if p.peek().typ == tokenIdentifier {
		name = p.next().val
	}

	if t := p.next(); t.typ != tokenLeftParen {
		p.errorf("expected '(' after switch, found '%s'", t.String())
		return nil, false
	}
	discTok := p.next()
	discriminant, ok := p.resolveTypeToken(discTok, isStructField)
	if !ok {
		return nil, false
	}
	if t := p.next(); t.typ != tokenRightParen {
		p.errorf("expected ')' after switch discriminant type, found '%s'", t.String())
		return nil, false
	}
	if t := p.next(); t.typ != tokenLeftCurly {
		p.errorf("expected '{' to open switch body, found '%s'", t.String())
		return nil, false
	}

	sp := NewSwitchParameter(name, discriminant)

	var pending []interface{}
	isDefault := false
	var fields []Field

	flush := func() {
		if len(pending) == 0 && !isDefault {
			return
		}
		c := &SwitchCase{Values: pending, IsDefault: isDefault, Fields: fields}
		if isDefault {
			sp.Default = c
		} else {
			sp.Cases = append(sp.Cases, c)
		}
		pending = nil
		isDefault = false
		fields = nil
	}

	for p.peek().typ != tokenRightCurly && p.peek().typ != tokenEOF && p.peek().typ != tokenError {
		switch p.peek().typ {
		case tokenCase:
			p.next()
			v, ok := p.parseCaseValue()
			if !ok {
				return nil, false
			}
			if t := p.next(); t.typ != tokenComposition {
				p.errorf("expected ':' after case value, found '%s'", t.String())
				return nil, false
			}
			pending = append(pending, v)
		case tokenDefault:
			p.next()
			if t := p.next(); t.typ != tokenComposition {
				p.errorf("expected ':' after default, found '%s'", t.String())
				return nil, false
			}
			isDefault = true
		case tokenBreak:
			p.next()
			if !p.expectEndline() {
				return nil, false
			}
			flush()
		default:
			member := switchMember{}
			if !p.parseSwitchField(&member, isStructField) {
				return nil, false
			}
			fields = append(fields, member.field)
		}
	}
	flush()

	t := p.next() // consume '}'
	if t.typ != tokenRightCurly {
		p.errorf("missing '}' to close switch body")
		return nil, false
	}
	return sp, true
}

type switchMember struct{ field Field }

// parseSwitchField parses one member declaration inside a switch body,
// reusing the same member grammar a struct uses (switches don't host
// atomic/molecular fields).
func (p *parser) parseSwitchField(out *switchMember, isStructField bool) bool {
	t := p.next()
	base, ok := p.resolveTypeToken(t, isStructField)
	if !ok {
		return p.expectEndline()
	}
	base, ok = p.parseConstraints(base)
	if !ok {
		return p.expectEndline()
	}
	nameTok := p.next()
	if nameTok.typ != tokenIdentifier {
		p.errorf("expected a field name, found '%s'", nameTok.String())
		return p.expectEndline()
	}
	param, ok := p.parseArraySuffix(base)
	if !ok {
		return false
	}
	if p.peek().typ == tokenAssignment {
		p.next()
		if !p.parseDefault(param) {
			return false
		}
	}
	field := NewParameterField(p.dcf, nameTok.val, param, isStructField)
	if !p.expectEndline() {
		return false
	}
	out.field = field
	return true
}

// parseCaseValue parses a literal number/string/identifier used as a case
// label.
func (p *parser) parseCaseValue() (interface{}, bool) {
	t := p.next()
	switch t.typ {
	case tokenNumber:
		n, err := parseNumberLiteral(t.val)
		if err != nil {
			p.errorf("bad case literal '%s': %v", t.val, err)
			return nil, false
		}
		return n, true
	case tokenQuote:
		return strings.Trim(t.val, `"`), true
	default:
		p.errorf("expected a case literal, found '%s'", t.String())
		return nil, false
	}
}

// resolveTypeToken turns a just-consumed type token into a Parameter: a
// builtin primitive, a legacy array, a switch, or a named typedef/struct
// reference.
func (p *parser) resolveTypeToken(t token, isStructField bool) (Parameter, bool) {
	if t.typ == tokenSwitch {
		return p.parseSwitchType(isStructField)
	}
	if param, ok := builtinParameterFromToken(t); ok {
		return param, true
	}
	if t.typ == tokenIdentifier {
		rt, err := p.dcf.ResolveType(t.val)
		if err != nil {
			p.addErr(err)
			return nil, false
		}
		param, err := newParamFromResolved(rt)
		if err != nil {
			p.errorf("%v", err)
			return nil, false
		}
		return param, true
	}
	p.errorf("expected a type, found '%s'", t.String())
	return nil, false
}

// parseConstraints consumes the optional "(range-list)/divisor%modulus"
// clause that may follow a parameter's base type, in that order, per
// spec.md's grammar. Any piece that base's concrete type can't carry (e.g.
// a divisor on a string) is parsed but silently dropped, matching the
// schema language's permissive "constraints are hashed, not enforced"
// stance.
func (p *parser) parseConstraints(base Parameter) (Parameter, bool) {
	if p.peek().typ == tokenLeftParen {
		p.next()
		if !p.applyRangeList(base) {
			return nil, false
		}
	}
	if p.peek().typ == tokenOperator && p.peek().val == "/" {
		p.next()
		if !p.applyDivisor(base) {
			return nil, false
		}
	}
	if p.peek().typ == tokenOperator && p.peek().val == "%" {
		p.next()
		if !p.applyModulus(base) {
			return nil, false
		}
	}
	return base, true
}

// applyRangeList parses a comma-separated "(lo[-hi], ...)" list, with the
// opening '(' already consumed, and stores it on param.
func (p *parser) applyRangeList(param Parameter) bool {
	var iranges []IRange
	var franges []FRange
	for {
		lo, ok := p.parseScalarLiteral()
		if !ok {
			return false
		}
		hi := lo
		if p.peek().typ == tokenOperator && p.peek().val == "-" {
			p.next()
			hi, ok = p.parseScalarLiteral()
			if !ok {
				return false
			}
		}
		if _, isFloat := param.(*FloatParameter); isFloat {
			loF, err1 := toFloat64(lo)
			hiF, err2 := toFloat64(hi)
			if err1 != nil || err2 != nil {
				p.errorf("bad range bound in float range")
				return false
			}
			franges = append(franges, FRange{Min: loF, Max: hiF})
		} else {
			loN, err1 := toInt64(lo)
			hiN, err2 := toInt64(hi)
			if err1 != nil || err2 != nil {
				p.errorf("bad range bound in integer range")
				return false
			}
			iranges = append(iranges, IRange{Min: loN, Max: hiN})
		}
		if p.peek().typ == tokenSeperator {
			p.next()
			continue
		}
		break
	}
	t := p.next()
	if t.typ != tokenRightParen {
		p.errorf("missing ')' after range list, found '%s'", t.String())
		return false
	}
	switch x := param.(type) {
	case *IntParameter:
		x.Ranges = append(x.Ranges, iranges...)
	case *FloatParameter:
		x.Ranges = append(x.Ranges, franges...)
	case *CharParameter:
		x.Ranges = append(x.Ranges, iranges...)
	case *SizedParameter:
		x.LengthRanges = append(x.LengthRanges, iranges...)
	}
	return true
}

// applyDivisor parses a "/divisor" clause, with the '/' already consumed.
// A zero or negative divisor is a ParseError (spec.md §7).
func (p *parser) applyDivisor(param Parameter) bool {
	neg := false
	if p.peek().typ == tokenOperator && p.peek().val == "-" {
		p.next()
		neg = true
	}
	t := p.next()
	if t.typ != tokenNumber {
		p.errorf("expected a divisor value after '/', found '%s'", t.String())
		return false
	}
	n, err := strconv.Atoi(t.val)
	if err != nil {
		p.errorf("bad divisor value %q", t.val)
		return false
	}
	if neg {
		n = -n
	}
	if n <= 0 {
		p.errorf("divisor must be positive, got %d", n)
		return false
	}
	switch x := param.(type) {
	case *IntParameter:
		x.Divisor = uint32(n)
	case *FloatParameter:
		x.Divisor = uint32(n)
	}
	return true
}

// applyModulus parses a "%modulus" clause, with the '%' already consumed.
// A negative modulus is a ParseError (spec.md §7).
func (p *parser) applyModulus(param Parameter) bool {
	neg := false
	if p.peek().typ == tokenOperator && p.peek().val == "-" {
		p.next()
		neg = true
	}
	t := p.next()
	if t.typ != tokenNumber {
		p.errorf("expected a modulus value after '%%', found '%s'", t.String())
		return false
	}
	v, err := parseNumberLiteral(t.val)
	if err != nil {
		p.errorf("bad modulus value %q", t.val)
		return false
	}
	m, err := toFloat64(v)
	if err != nil {
		p.errorf("bad modulus value %q", t.val)
		return false
	}
	if neg {
		m = -m
	}
	if m < 0 {
		p.errorf("modulus must not be negative, got %v", m)
		return false
	}
	switch x := param.(type) {
	case *IntParameter:
		x.Modulus = m
		x.ModulusSet = true
	case *FloatParameter:
		x.Modulus = m
		x.ModulusSet = true
	}
	return true
}

// parseArraySuffix consumes zero or more trailing "[n]"/"[]" array
// dimension markers, wrapping base in an ArrayParameter if any were found.
func (p *parser) parseArraySuffix(base Parameter) (Parameter, bool) {
	var dims []int
	for {
		switch p.peek().typ {
		case tokenVarArray:
			p.next()
			dims = append(dims, -1)
			continue
		case tokenLeftSquare:
			p.next()
			nt := p.next()
			if nt.typ != tokenNumber {
				p.errorf("expected an array size, found '%s'", nt.String())
				return nil, false
			}
			n, err := strconv.Atoi(nt.val)
			if err != nil {
				p.errorf("bad array size %q", nt.val)
				return nil, false
			}
			rt := p.next()
			if rt.typ != tokenRightSquare {
				p.errorf("missing ']' after array size, found '%s'", rt.String())
				return nil, false
			}
			dims = append(dims, n)
			continue
		}
		break
	}
	if len(dims) == 0 {
		return base, true
	}
	return NewArrayParameter(base, dims), true
}

// parseDefault parses the value literal following '=' and stores it as
// param's default, tolerating a best-effort failure by leaving the
// parameter with no default rather than aborting the whole field.
func (p *parser) parseDefault(param Parameter) bool {
	if p.peek().typ == tokenLeftCurly {
		p.next()
		var elems []interface{}
		for p.peek().typ != tokenRightCurly {
			v, ok := p.parseScalarLiteral()
			if !ok {
				return false
			}
			elems = append(elems, v)
			if p.peek().typ == tokenSeperator {
				p.next()
				continue
			}
			break
		}
		t := p.next()
		if t.typ != tokenRightCurly {
			p.errorf("missing '}' after default array literal")
			return false
		}
		if ap, ok := param.(*ArrayParameter); ok {
			ap.SetDefault(elems)
		}
		return true
	}

	v, ok := p.parseScalarLiteral()
	if !ok {
		return false
	}
	switch x := param.(type) {
	case *IntParameter:
		if n, ok := v.(int64); ok {
			x.SetDefault(n)
		}
	case *FloatParameter:
		switch n := v.(type) {
		case float64:
			x.SetDefault(n)
		case int64:
			x.SetDefault(float64(n))
		}
	case *CharParameter:
		if n, ok := v.(int64); ok {
			x.SetDefault(byte(n))
		}
	case *SizedParameter:
		if s, ok := v.(string); ok {
			x.SetDefault([]byte(s))
		}
	}
	return true
}

// parseScalarLiteral parses a single number, bool, or quoted-string
// default/case literal.
func (p *parser) parseScalarLiteral() (interface{}, bool) {
	t := p.next()
	switch t.typ {
	case tokenNumber:
		n, err := parseNumberLiteral(t.val)
		if err != nil {
			p.errorf("bad numeric literal '%s': %v", t.val, err)
			return nil, false
		}
		return n, true
	case tokenBool:
		return t.val == "true", true
	case tokenQuote:
		return strings.Trim(t.val, `"`), true
	case tokenRawchar:
		s := strings.Trim(t.val, `'`)
		if len(s) > 0 {
			return int64(s[0]), true
		}
		return int64(0), true
	default:
		p.errorf("expected a literal value, found '%s'", t.String())
		return nil, false
	}
}

// parseNumberLiteral parses an integer or float literal in the lexer's
// supported bases (decimal, 0x, 0b, leading-0 octal) or with a fractional
// part.
func parseNumberLiteral(s string) (interface{}, error) {
	if strings.Contains(s, ".") {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// parseKeywordList consumes identifiers up to the terminating ';',
// treating each as a field keyword.
func (p *parser) parseKeywordList(kws *keywords) bool {
	for {
		t := p.peek()
		if t.typ == tokenEndline || t.typ == tokenEOF || t.typ == tokenError {
			break
		}
		if t.typ != tokenIdentifier {
			p.errorf("expected a keyword, found '%s'", t.String())
			break
		}
		p.next()
		if !p.dcf.HasKeyword(t.val) {
			p.errorf("undefined keyword '%s'", t.val)
		}
		kws.AddKeyword(t.val)
	}
	return p.expectEndline()
}

// expectEndline consumes up to and including the next ';', reporting an
// error if anything unexpected comes first.
func (p *parser) expectEndline() bool {
	startLine := p.lex.lineNumber()
	clean := true
	t := p.next()
	for t.typ != tokenEndline && t.typ != tokenEOF && t.typ != tokenError {
		t = p.next()
		clean = false
	}

	fail := false
	switch t.typ {
	case tokenEOF:
		fail = true
	case tokenError:
		p.lexErrorf(t)
		fail = true
	}

	if !clean && !fail {
		p.errorf("missing semicolon (;) at end of statement (line %d)", startLine)
	}
	return !fail
}

// expectRightCurly consumes up to and including the next '}', used to
// recover after a declaration-level error.
func (p *parser) expectRightCurly(leftLine int) bool {
	t := p.next()
	for t.typ != tokenRightCurly && t.typ != tokenEOF && t.typ != tokenError {
		t = p.next()
	}

	fail := false
	switch t.typ {
	case tokenEOF:
		fail = true
	case tokenError:
		p.lexErrorf(t)
		fail = true
	}

	if fail {
		p.errorf("missing closing curly brace (}) at end of block starting on line %d", leftLine)
	}
	return !fail
}

// builtinParameterFromToken returns the Parameter a builtin type token
// (including blob32 and the legacy packed-array tokens) always produces.
func builtinParameterFromToken(t token) (Parameter, bool) {
	switch t.typ {
	case tokenInt8:
		return NewIntParameter(TypeInt8), true
	case tokenInt16:
		return NewIntParameter(TypeInt16), true
	case tokenInt32:
		return NewIntParameter(TypeInt32), true
	case tokenInt64:
		return NewIntParameter(TypeInt64), true
	case tokenUint8:
		return NewIntParameter(TypeUint8), true
	case tokenUint16:
		return NewIntParameter(TypeUint16), true
	case tokenUint32:
		return NewIntParameter(TypeUint32), true
	case tokenUint64:
		return NewIntParameter(TypeUint64), true
	case tokenFloat:
		return NewFloatParameter(), true
	case tokenString:
		return NewSizedParameter(TypeString), true
	case tokenBlob:
		return NewSizedParameter(TypeBlob), true
	case tokenBlob32:
		return NewSizedParameter(TypeBlob32), true
	case tokenChar:
		return NewCharParameter(), true
	case tokenInt8Array:
		return NewArrayParameter(NewIntParameter(TypeInt8), []int{-1}), true
	case tokenInt16Array:
		return NewArrayParameter(NewIntParameter(TypeInt16), []int{-1}), true
	case tokenInt32Array:
		return NewArrayParameter(NewIntParameter(TypeInt32), []int{-1}), true
	case tokenUint8Array:
		return NewArrayParameter(NewIntParameter(TypeUint8), []int{-1}), true
	case tokenUint16Array:
		return NewArrayParameter(NewIntParameter(TypeUint16), []int{-1}), true
	case tokenUint32Array:
		return NewArrayParameter(NewIntParameter(TypeUint32), []int{-1}), true
	case tokenUint32Uint8Array:
		return NewArrayParameter(pairParameter{}, []int{-1}), true
	default:
		return nil, false
	}
}

// newParamFromResolved builds the Parameter a typedef/struct name
// ultimately resolves to, applying every range/divisor/array-dimension
// constraint accumulated while walking its typedef chain.
func newParamFromResolved(rt *ResolvedType) (Parameter, error) {
	var base Parameter
	switch {
	case rt.Struct != nil:
		base = NewStructParameter(rt.Struct)
	case rt.Class != nil:
		return nil, runtimeError("a class cannot be used as a parameter type")
	default:
		switch rt.DCType {
		case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUint8, TypeUint16, TypeUint32, TypeUint64:
			ip := NewIntParameter(rt.DCType)
			ip.Divisor = rt.Divisor
			ip.Ranges = rt.Ranges
			ip.ModulusSet = rt.ModulusSet
			ip.Modulus = rt.Modulus
			base = ip
		case TypeFloat64:
			fp := NewFloatParameter()
			fp.Divisor = rt.Divisor
			fp.Ranges = rt.FRanges
			fp.ModulusSet = rt.ModulusSet
			fp.Modulus = rt.Modulus
			base = fp
		case TypeChar:
			cp := NewCharParameter()
			cp.Ranges = rt.Ranges
			base = cp
		case TypeString, TypeBlob, TypeBlob32:
			sp := NewSizedParameter(rt.DCType)
			sp.LengthRanges = rt.Ranges
			base = sp
		case TypeInt8Array:
			base = NewArrayParameter(NewIntParameter(TypeInt8), []int{-1})
		case TypeInt16Array:
			base = NewArrayParameter(NewIntParameter(TypeInt16), []int{-1})
		case TypeInt32Array:
			base = NewArrayParameter(NewIntParameter(TypeInt32), []int{-1})
		case TypeUint8Array:
			base = NewArrayParameter(NewIntParameter(TypeUint8), []int{-1})
		case TypeUint16Array:
			base = NewArrayParameter(NewIntParameter(TypeUint16), []int{-1})
		case TypeUint32Array:
			base = NewArrayParameter(NewIntParameter(TypeUint32), []int{-1})
		case TypeUint32Uint8Array:
			base = NewArrayParameter(pairParameter{}, []int{-1})
		default:
			return nil, runtimeError("resolved type has no representable Parameter")
		}
	}
	if len(rt.ArrayDims) > 0 {
		base = NewArrayParameter(base, rt.ArrayDims)
	}
	return base, nil
}
