package dclass

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	dcf, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.NotNil(t, dcf)
	return dcf
}

func TestParseKeywordAndStruct(t *testing.T) {
	dcf := mustParse(t, `
		keyword monitor;

		struct Point {
			int16 x;
			int16 y;
		};
	`)

	assert.True(t, dcf.HasKeyword("monitor"))
	assert.True(t, dcf.HasKeyword("required")) // historic keyword always legal
	require.Len(t, dcf.Structs, 1)

	s := dcf.Structs[0]
	assert.Equal(t, "Point", s.Name())
	require.Len(t, s.Fields(), 2)
	size, ok := s.FixedByteSize()
	assert.True(t, ok)
	assert.Equal(t, 4, size)
}

func TestParseClassWithInheritance(t *testing.T) {
	dcf := mustParse(t, `
		dclass DistributedObject {
			uint32 doId required broadcast;
		};

		dclass DistributedAvatar : DistributedObject {
			string name required broadcast;
			setPos(int16 x, int16 y) broadcast ownrecv;
		};
	`)

	require.Len(t, dcf.Classes, 2)
	avatar, ok := dcf.ClassByName("DistributedAvatar")
	require.True(t, ok)

	fields := avatar.BuildInheritedFields()
	require.Len(t, fields, 3)
	assert.Equal(t, "doId", fields[0].Name())
	assert.Equal(t, "name", fields[1].Name())
	assert.Equal(t, "setPos", fields[2].Name())
	assert.True(t, fields[2].IsOwnrecv())
}

func TestParseClassFieldShadowing(t *testing.T) {
	dcf := mustParse(t, `
		dclass Base {
			uint16 health required;
		};

		dclass Derived : Base {
			uint16 health required ram;
		};
	`)

	derived, ok := dcf.ClassByName("Derived")
	require.True(t, ok)
	fields := derived.BuildInheritedFields()
	require.Len(t, fields, 1)
	assert.True(t, fields[0].IsRam())
}

func TestParseArraysFixedAndVariable(t *testing.T) {
	dcf := mustParse(t, `
		struct Box {
			uint8 fixed[4];
			uint8 variable[];
		};
	`)

	s := dcf.Structs[0]
	_, ok := s.FixedByteSize()
	assert.False(t, ok, "a struct containing a variable array has no fixed size")

	fixedField := s.fields[0].(*ParameterField)
	arr, ok := fixedField.Param.(*ArrayParameter)
	require.True(t, ok)
	size, ok := arr.FixedByteSize()
	assert.True(t, ok)
	assert.Equal(t, 4, size)

	varField := s.fields[1].(*ParameterField)
	varArr, ok := varField.Param.(*ArrayParameter)
	require.True(t, ok)
	_, ok = varArr.FixedByteSize()
	assert.False(t, ok)
}

func TestParseArrayRoundTrip(t *testing.T) {
	dcf := mustParse(t, `
		struct Box {
			uint8 values[3];
		};
	`)
	s := dcf.Structs[0]

	dg := NewDatagram()
	require.NoError(t, s.PackFields(dg, map[string]interface{}{
		"values": []interface{}{int64(1), int64(2), int64(3)},
	}))

	it := dg.Iterator()
	out, err := s.UnpackFields(it)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, out["values"])
}

func TestParseLegacyArrayType(t *testing.T) {
	dcf := mustParse(t, `
		struct Legacy {
			uint32uint8array pairs;
		};
	`)
	s := dcf.Structs[0]
	f := s.fields[0].(*ParameterField)
	arr, ok := f.Param.(*ArrayParameter)
	require.True(t, ok)
	assert.Equal(t, []int{-1}, arr.Dims)

	dg := NewDatagram()
	require.NoError(t, s.PackFields(dg, map[string]interface{}{
		"pairs": []interface{}{[2]uint64{1, 2}, [2]uint64{3, 4}},
	}))
	out, err := s.UnpackFields(dg.Iterator())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{[2]uint64{1, 2}, [2]uint64{3, 4}}, out["pairs"])
}

func TestParseTypedefChain(t *testing.T) {
	dcf := mustParse(t, `
		typedef uint32 DoId;
		typedef DoId ZoneId;

		struct Location {
			ZoneId zone;
		};
	`)
	require.Len(t, dcf.Typedefs, 2)

	s := dcf.Structs[0]
	f := s.fields[0].(*ParameterField)
	ip, ok := f.Param.(*IntParameter)
	require.True(t, ok)
	assert.Equal(t, TypeUint32, ip.Typ)
}

func TestParseSwitchField(t *testing.T) {
	dcf := mustParse(t, `
		struct Shape {
			switch (uint8) {
				case 0:
					float64 radius;
					break;
				case 1:
					float64 width;
					float64 height;
					break;
				default:
					uint8 raw[];
					break;
			};
		};
	`)
	s := dcf.Structs[0]
	require.Len(t, s.fields, 1)
	sf, ok := s.fields[0].(*ParameterField)
	require.True(t, ok)
	sw, ok := sf.Param.(*SwitchParameter)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	require.NotNil(t, sw.Default)

	dg := NewDatagram()
	require.NoError(t, sw.PackValue(dg, SwitchValue{
		Discriminant: int64(1),
		Fields: map[string]interface{}{
			"width":  float64(2),
			"height": float64(3),
		},
	}))

	v, err := sw.UnpackValue(dg.Iterator())
	require.NoError(t, err)
	sv, ok := v.(SwitchValue)
	require.True(t, ok)
	assert.Equal(t, float64(2), sv.Fields["width"])
	assert.Equal(t, float64(3), sv.Fields["height"])
}

func TestParseMolecularField(t *testing.T) {
	dcf := mustParse(t, `
		dclass DistributedAvatar {
			int16 x required broadcast;
			int16 y required broadcast;
			setXY : x, y;
		};
	`)
	avatar, ok := dcf.ClassByName("DistributedAvatar")
	require.True(t, ok)
	mol, ok := avatar.FieldByName("setXY")
	require.True(t, ok)
	assert.Equal(t, 2, mol.NumArgs())

	dg := NewDatagram()
	require.NoError(t, mol.PackArgs(dg, []interface{}{int64(10), int64(20)}))
	vals, err := mol.UnpackArgs(dg.Iterator())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(10), int64(20)}, vals)
}

func TestParseImportDeclarations(t *testing.T) {
	dcf := mustParse(t, `
		from game.avatar/AI import DistributedAvatarAI
		import game.common
	`)
	require.Len(t, dcf.Imports, 2)
	assert.Equal(t, "game.avatar", dcf.Imports[0].Module)
	assert.Equal(t, "/AI", dcf.Imports[0].Suffix)
	assert.Equal(t, []string{"DistributedAvatarAI"}, dcf.Imports[0].Symbols)
	assert.Equal(t, "game.common", dcf.Imports[1].Module)
}

func TestParseDefaultValues(t *testing.T) {
	dcf := mustParse(t, `
		struct Config {
			uint8 retries = 3;
			string name = "anon";
		};
	`)
	s := dcf.Structs[0]

	retries := s.fields[0].(*ParameterField)
	assert.True(t, retries.HasDefaultValue())

	name := s.fields[1].(*ParameterField)
	assert.True(t, name.HasDefaultValue())
	sp := name.Param.(*SizedParameter)
	assert.Equal(t, []byte("anon"), sp.Default)
}

func TestParseErrorsAccumulate(t *testing.T) {
	_, err := Parse(strings.NewReader(`
		struct Broken {
			nosuchtype value;
		};
		struct AlsoBroken {
			uint8 value;
	`))
	require.Error(t, err)
	perrs, ok := err.(ParseErrors)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(perrs), 2)
}

func TestFileHashStableAndSensitive(t *testing.T) {
	base := `
		dclass DistributedAvatar {
			uint16 health required broadcast;
		};
	`
	renamed := `
		dclass DistributedAvatar {
			uint16 vitality required broadcast;
		};
	`

	h1 := mustParse(t, base).Hash()
	h2 := mustParse(t, base).Hash()
	assert.Equal(t, h1, h2, "hashing the same schema twice must be stable")

	h3 := mustParse(t, renamed).Hash()
	assert.NotEqual(t, h1, h3, "renaming a field must change the schema hash")
}

func TestFileHashSwitchWithDivisor(t *testing.T) {
	dcf := mustParse(t, `
		struct BuffData {
			switch (uint16) {
				case 0:
					break;
				case 1:
					uint8 val1;
					break;
				case 2:
					uint8 val1;
					uint8 val2;
					break;
				case 3:
					uint8 val1;
					break;
				case 4:
					int16/100 val1;
					break;
			};
		};
	`)
	require.Len(t, dcf.Structs, 1)
	s := dcf.Structs[0]
	require.Len(t, s.fields, 1)
	sf, ok := s.fields[0].(*ParameterField)
	require.True(t, ok)
	sw, ok := sf.Param.(*SwitchParameter)
	require.True(t, ok)
	require.Len(t, sw.Cases, 5)
	require.Nil(t, sw.Default)
	assert.Equal(t, int64(4), sw.Cases[4].Values[0])

	assert.Equal(t, uint32(56286), dcf.Hash())
}

func TestParseInlineRangeDivisorModulus(t *testing.T) {
	dcf := mustParse(t, `
		dclass Distributed {
			int16(0-100)/10%5 health required;
		};
	`)
	c, ok := dcf.ClassByName("Distributed")
	require.True(t, ok)
	f, ok := c.FieldByName("health")
	require.True(t, ok)
	pf, ok := f.(*ParameterField)
	require.True(t, ok)
	ip, ok := pf.Param.(*IntParameter)
	require.True(t, ok)
	require.Len(t, ip.Ranges, 1)
	assert.Equal(t, int64(0), ip.Ranges[0].Min)
	assert.Equal(t, int64(100), ip.Ranges[0].Max)
	assert.Equal(t, uint32(10), ip.Divisor)
	require.True(t, ip.ModulusSet)
	assert.Equal(t, float64(5), ip.Modulus)
}

func TestParseZeroDivisorIsParseError(t *testing.T) {
	_, err := Parse(strings.NewReader(`
		dclass Distributed {
			int16/0 health;
		};
	`))
	require.Error(t, err)
}

func TestParseNegativeModulusIsParseError(t *testing.T) {
	_, err := Parse(strings.NewReader(`
		dclass Distributed {
			int16%-5 health;
		};
	`))
	require.Error(t, err)
}
