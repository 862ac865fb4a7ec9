package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func shipValue() *Value {
	return &Value{
		Kind: KindStruct,
		Fields: map[string]*Value{
			"name":    {Kind: KindString, Str: "Aurora"},
			"class":   {Kind: KindEnum, Str: "starter"},
			"label":   {Kind: KindLocale, Key: "ship_aurora", Str: "RSI Aurora"},
			"mass":    {Kind: KindFloat, F64: 39000},
			"crew":    {Kind: KindUint, U64: 1},
			"cargo":   {Kind: KindInt, I64: -3},
			"flyable": {Kind: KindBool, B: true},
			"pos":     {Kind: KindVec3, Vec: [4]float32{1, 2, 3, 0}},
			"hull":    {Kind: KindReference, Guid: GUID{1}},
			"tags": {Kind: KindArray, Elems: []*Value{
				{Kind: KindString, Str: "small"},
				{Kind: KindString, Str: "rsi"},
			}},
		},
	}
}

func TestValueAccessors(t *testing.T) {
	v := shipValue()

	s, ok := v.GetString("name")
	require.True(t, ok)
	require.Equal(t, "Aurora", s)

	s, ok = v.GetString("class")
	require.True(t, ok)
	require.Equal(t, "starter", s)

	s, ok = v.GetString("label")
	require.True(t, ok)
	require.Equal(t, "RSI Aurora", s)

	f, ok := v.GetFloat("mass")
	require.True(t, ok)
	require.Equal(t, 39000.0, f)

	f, ok = v.GetFloat("crew")
	require.True(t, ok)
	require.Equal(t, 1.0, f)

	i, ok := v.GetInt("cargo")
	require.True(t, ok)
	require.Equal(t, int64(-3), i)

	b, ok := v.GetBool("flyable")
	require.True(t, ok)
	require.True(t, b)

	vec, ok := v.GetVec3("pos")
	require.True(t, ok)
	require.Equal(t, [3]float32{1, 2, 3}, vec)

	ref, ok := v.GetReference("hull")
	require.True(t, ok)
	require.Equal(t, GUID{1}, ref)

	require.True(t, v.Has("tags"))
	require.False(t, v.Has("missing"))

	_, ok = v.GetString("mass")
	require.False(t, ok)
	_, ok = v.GetString("missing")
	require.False(t, ok)

	names := v.PropertyNames()
	require.Len(t, names, 10)
	require.Contains(t, names, "mass")
}

func TestValueAccessorsOnNonStruct(t *testing.T) {
	v := &Value{Kind: KindInt, I64: 1}
	_, ok := v.Get("x")
	require.False(t, ok)
	require.Nil(t, v.PropertyNames())

	var nilv *Value
	_, ok = nilv.Get("x")
	require.False(t, ok)
}

func TestValueEqual(t *testing.T) {
	require.True(t, shipValue().Equal(shipValue()))

	other := shipValue()
	other.Fields["mass"] = &Value{Kind: KindFloat, F64: 1}
	require.False(t, shipValue().Equal(other))

	missing := shipValue()
	delete(missing.Fields, "mass")
	require.False(t, shipValue().Equal(missing))

	var nilv *Value
	require.True(t, nilv.Equal(nil))
	require.False(t, nilv.Equal(shipValue()))
	require.False(t, shipValue().Equal(nil))
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(shipValue())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	require.Equal(t, "Aurora", m["name"])
	require.Equal(t, 39000.0, m["mass"])
	require.Equal(t, true, m["flyable"])
	require.Equal(t, []any{1.0, 2.0, 3.0}, m["pos"])
	require.Equal(t, map[string]any{"key": "ship_aurora", "value": "RSI Aurora"}, m["label"])
	require.Equal(t, map[string]any{"ref": GUID{1}.String()}, m["hull"])
	require.Equal(t, []any{"small", "rsi"}, m["tags"])

	empty := &Value{Kind: KindArray}
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(b))
}
