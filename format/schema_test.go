package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct {
	nameOff   uint32
	parentID  uint32
	propStart uint32
	propCount uint32
	flags     uint32
}

type testProp struct {
	nameOff    uint32
	typeTag    uint32
	structID   uint32
	conversion uint32
}

func encodeStructs(defs ...testStruct) []byte {
	var out []byte
	for _, d := range defs {
		out = binary.LittleEndian.AppendUint32(out, d.nameOff)
		out = binary.LittleEndian.AppendUint32(out, d.parentID)
		out = binary.LittleEndian.AppendUint32(out, d.propStart)
		out = binary.LittleEndian.AppendUint32(out, d.propCount)
		out = binary.LittleEndian.AppendUint32(out, 0) // declared size
		out = binary.LittleEndian.AppendUint32(out, d.flags)
	}
	return out
}

func encodeProps(defs ...testProp) []byte {
	var out []byte
	for _, d := range defs {
		out = binary.LittleEndian.AppendUint32(out, d.nameOff)
		out = binary.LittleEndian.AppendUint32(out, d.typeTag)
		out = binary.LittleEndian.AppendUint32(out, d.structID)
		out = binary.LittleEndian.AppendUint32(out, d.conversion)
	}
	return out
}

func TestDecodeCatalog(t *testing.T) {
	// offsets: Base 0, Ship 5, id 10, name 13, mass 18
	strings, err := DecodeStringTable(encodeStringTable("Base", "Ship", "id", "name", "mass"))
	require.NoError(t, err)

	t.Run("inheritance flattens parent first", func(t *testing.T) {
		structSec := encodeStructs(
			testStruct{nameOff: 0, parentID: NoneID, propStart: 0, propCount: 1, flags: StructFlagAbstract},
			testStruct{nameOff: 5, parentID: 0, propStart: 1, propCount: 2, flags: StructFlagEntity},
		)
		propSec := encodeProps(
			testProp{nameOff: 10, typeTag: uint32(TypeGUID), structID: NoneID},
			testProp{nameOff: 13, typeTag: uint32(TypeString), structID: NoneID},
			testProp{nameOff: 18, typeTag: uint32(TypeFloat32), structID: NoneID, conversion: ConversionMass},
		)

		c, err := DecodeCatalog(structSec, propSec, strings)
		require.NoError(t, err)
		require.Equal(t, 2, c.NumStructs())
		require.Equal(t, 3, c.NumProperties())

		base, ok := c.Struct(0)
		require.True(t, ok)
		require.True(t, base.IsAbstract())
		require.False(t, base.HasParent())

		ship, ok := c.StructByName("Ship")
		require.True(t, ok)
		require.True(t, ship.IsEntity())
		require.Equal(t, uint32(0), ship.ParentID)

		flat, ok := c.Flattened(ship.ID)
		require.True(t, ok)
		require.Equal(t, []uint32{0, 1, 2}, flat)
		require.Equal(t, "id", c.Property(flat[0]).Name)
		require.Equal(t, "name", c.Property(flat[1]).Name)
		require.Equal(t, "mass", c.Property(flat[2]).Name)
		require.Equal(t, uint32(ConversionMass), c.Property(flat[2]).Conversion)
	})

	t.Run("cyclic parent chain", func(t *testing.T) {
		structSec := encodeStructs(
			testStruct{nameOff: 0, parentID: 1},
			testStruct{nameOff: 5, parentID: 0},
		)

		_, err := DecodeCatalog(structSec, nil, strings)
		var cerr *SchemaCycleError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("self parent", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 0, parentID: 0})

		_, err := DecodeCatalog(structSec, nil, strings)
		var cerr *SchemaCycleError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("dangling parent", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 0, parentID: 42})

		_, err := DecodeCatalog(structSec, nil, strings)
		var derr *DanglingStructError
		require.ErrorAs(t, err, &derr)
		require.Equal(t, uint32(42), derr.StructID)
	})

	t.Run("property range outside table", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 0, parentID: NoneID, propStart: 0, propCount: 5})
		propSec := encodeProps(testProp{nameOff: 10, typeTag: uint32(TypeBool), structID: NoneID})

		_, err := DecodeCatalog(structSec, propSec, strings)
		var perr *PropertyRangeError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("property with dangling struct reference", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 0, parentID: NoneID, propStart: 0, propCount: 1})
		propSec := encodeProps(testProp{nameOff: 10, typeTag: uint32(TypeStruct), structID: 7})

		_, err := DecodeCatalog(structSec, propSec, strings)
		var derr *DanglingStructError
		require.ErrorAs(t, err, &derr)
	})

	t.Run("struct-typed property without target", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 0, parentID: NoneID, propStart: 0, propCount: 1})
		propSec := encodeProps(testProp{nameOff: 10, typeTag: uint32(TypeStruct), structID: NoneID})

		_, err := DecodeCatalog(structSec, propSec, strings)
		var derr *DanglingStructError
		require.ErrorAs(t, err, &derr)
	})

	t.Run("bad name offset", func(t *testing.T) {
		structSec := encodeStructs(testStruct{nameOff: 9999, parentID: NoneID})

		_, err := DecodeCatalog(structSec, nil, strings)
		var oerr *StringOffsetError
		require.ErrorAs(t, err, &oerr)
	})
}

func TestConversionName(t *testing.T) {
	require.Equal(t, "none", ConversionName(ConversionNone))
	require.Equal(t, "mass", ConversionName(ConversionMass))
	require.Equal(t, "currency", ConversionName(ConversionCurrency))
	require.Equal(t, "none", ConversionName(200))
}
