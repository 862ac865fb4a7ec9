package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	typ, isArray := ParseDataType(uint32(TypeFloat32))
	require.Equal(t, TypeFloat32, typ)
	require.False(t, isArray)

	typ, isArray = ParseDataType(uint32(TypeString) | ArrayFlag)
	require.Equal(t, TypeString, typ)
	require.True(t, isArray)

	// Legacy alias normalizes to the canonical tag.
	typ, _ = ParseDataType(uint32(typeInt32Alt))
	require.Equal(t, TypeInt32, typ)

	typ, isArray = ParseDataType(0x7F | ArrayFlag)
	require.False(t, typ.Known())
	require.True(t, isArray)
}

func TestFixedSize(t *testing.T) {
	tests := []struct {
		typ  DataType
		size int
	}{
		{TypeBool, 1},
		{TypeInt16, 2},
		{TypeString, 4},
		{TypeLocale, 8},
		{TypeVec3, 12},
		{TypeGUID, 16},
	}
	for _, tt := range tests {
		n, ok := tt.typ.FixedSize()
		require.True(t, ok, tt.typ.String())
		require.Equal(t, tt.size, n)
	}

	_, ok := TypeStruct.FixedSize()
	require.False(t, ok)
}
