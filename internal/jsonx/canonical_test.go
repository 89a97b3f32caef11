package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zulu":  1.0,
		"alpha": "a",
		"mike":  map[string]any{"b": 2.0, "a": 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mike":{"a":1,"b":2},"zulu":1}`, string(got))
}

func TestMarshalCanonical_OrderIndependent(t *testing.T) {
	build := func(first bool) map[string]any {
		m := map[string]any{}
		if first {
			m["a"] = 1.5
			m["b"] = []any{"x", "y"}
		} else {
			m["b"] = []any{"x", "y"}
			m["a"] = 1.5
		}
		return m
	}

	b1, err := MarshalCanonical(build(true))
	require.NoError(t, err)
	b2, err := MarshalCanonical(build(false))
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestMarshalCanonical_NoHTMLEscapeNoNewline(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"s": "<a> & </a>"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"<a> & </a>"}`, string(got))
}

func TestMarshalCanonical_NilValues(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"weight": nil})
	require.NoError(t, err)
	assert.Equal(t, `{"weight":null}`, string(got))
}

func TestMarshalCanonical_RejectsStructs(t *testing.T) {
	type s struct{ A int }
	_, err := MarshalCanonical(map[string]any{"v": s{A: 1}})
	assert.Error(t, err)
}
